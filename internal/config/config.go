// Package config reads server settings from the environment
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ClockMode selects who drives the countdown
type ClockMode string

const (
	// ClockServer decrements on the server and ignores client timer reports
	ClockServer ClockMode = "server"
	// ClockClient trusts the side to move to report its own countdown
	ClockClient ClockMode = "client"
)

// Config holds every tunable of the server
type Config struct {
	Port  string
	Debug bool

	LogFormat string

	TimeControlSeconds int64
	Retention          time.Duration
	ClockMode          ClockMode
	TimeUpGrace        int64

	AllowedOrigins []string
	APIKeys        []string

	MessagesDir string
}

// Default returns the configuration used when no variables are set
func Default() Config {
	return Config{
		Port:               "8080",
		LogFormat:          "json",
		TimeControlSeconds: 600,
		Retention:          time.Hour,
		ClockMode:          ClockServer,
		TimeUpGrace:        1,
	}
}

// Load parses configuration values from the current process environment.
// Unset variables keep their defaults; every malformed one is reported.
func Load() (Config, error) {
	cfg := Default()
	invalid := make([]string, 0, 2)

	if v := env("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err != nil || port <= 0 || port > 65535 {
			invalid = append(invalid, "PORT")
		} else {
			cfg.Port = v
		}
	}

	if v := env("DEBUG"); v != "" {
		if debug, err := strconv.ParseBool(v); err != nil {
			invalid = append(invalid, "DEBUG")
		} else {
			cfg.Debug = debug
		}
	}

	if v := strings.ToLower(env("LOG_FORMAT")); v != "" {
		if v != "json" && v != "console" {
			invalid = append(invalid, "LOG_FORMAT")
		} else {
			cfg.LogFormat = v
		}
	}

	if v := env("TIME_CONTROL_SECONDS"); v != "" {
		if secs, err := strconv.ParseInt(v, 10, 64); err != nil || secs <= 0 {
			invalid = append(invalid, "TIME_CONTROL_SECONDS")
		} else {
			cfg.TimeControlSeconds = secs
		}
	}

	if v := env("RETENTION"); v != "" {
		if d, err := time.ParseDuration(v); err != nil || d < 0 {
			invalid = append(invalid, "RETENTION")
		} else {
			cfg.Retention = d
		}
	}

	if v := strings.ToLower(env("CLOCK_MODE")); v != "" {
		switch ClockMode(v) {
		case ClockServer, ClockClient:
			cfg.ClockMode = ClockMode(v)
		default:
			invalid = append(invalid, "CLOCK_MODE")
		}
	}

	if v := env("TIMEUP_GRACE"); v != "" {
		if g, err := strconv.ParseInt(v, 10, 64); err != nil || g < 0 {
			invalid = append(invalid, "TIMEUP_GRACE")
		} else {
			cfg.TimeUpGrace = g
		}
	}

	cfg.AllowedOrigins = list(env("ALLOWED_ORIGINS"))
	cfg.APIKeys = list(env("API_KEYS"))
	cfg.MessagesDir = env("MESSAGES_DIR")

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

// Validate checks values that may have been overridden after Load
func (c Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil || port <= 0 || port > 65535 {
		problems = append(problems, fmt.Sprintf("port %q", c.Port))
	}
	if c.TimeControlSeconds <= 0 {
		problems = append(problems, "time control must be positive")
	}
	if c.ClockMode != ClockServer && c.ClockMode != ClockClient {
		problems = append(problems, fmt.Sprintf("clock mode %q", c.ClockMode))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Addr is the listen address
func (c Config) Addr() string { return ":" + c.Port }

func env(key string) string { return strings.TrimSpace(os.Getenv(key)) }

func list(v string) []string {
	if v == "" {
		return nil
	}

	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
