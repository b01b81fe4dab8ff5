// Package main is the entry point of the application
package main

import (
	"context"
	"flag"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tecu23/chess-arena/internal/auth"
	"github.com/tecu23/chess-arena/internal/config"
	"github.com/tecu23/chess-arena/internal/msgcat"
	"github.com/tecu23/chess-arena/pkg/chess"
	"github.com/tecu23/chess-arena/pkg/events"
	"github.com/tecu23/chess-arena/pkg/manager"
	"github.com/tecu23/chess-arena/pkg/metrics"
	"github.com/tecu23/chess-arena/pkg/repository"
	"github.com/tecu23/chess-arena/pkg/server"
)

// App encapsulates global dependencies
type application struct {
	Auth      *auth.APIKeyAuth
	Logger    *zap.Logger
	Config    config.Config
	Publisher *events.Publisher
	Registry  *repository.InMemoryRegistry
	Hub       *server.Hub
	Server    *http.Server
	Metrics   prometheus.Gatherer

	StartTime time.Time
	stopHub   context.CancelFunc
}

func main() {
	// a missing .env is fine; the environment may be set another way
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err.Error())
	}

	debug := flag.Bool("debug", cfg.Debug, "enable debug logging")
	port := flag.String("port", cfg.Port, "server port")
	flag.Parse()

	cfg.Debug = *debug
	cfg.Port = *port

	// Initialize logger
	logger := initLogger(cfg.Debug, cfg.LogFormat)
	defer logger.Sync()

	if envErr != nil {
		logger.Debug("no .env file loaded", zap.Error(envErr))
	}

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	catalog, err := msgcat.New(cfg.MessagesDir)
	if err != nil {
		logger.Fatal("loading messages", zap.Error(err))
	}
	logger.Debug("messages loaded", zap.Int("keys", len(catalog.Keys())), zap.String("dir", cfg.MessagesDir))

	// Initialize event publisher
	publisher := events.NewPublisher()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m, err := metrics.New(metrics.Options{Registerer: reg})
	if err != nil {
		logger.Fatal("registering metrics", zap.Error(err))
	}
	m.Attach(publisher)
	subscribeLogging(publisher, logger)

	// Initialize registry
	registry := repository.NewInMemoryRegistry(
		chess.NewTimeControl(cfg.TimeControlSeconds),
		logger,
		repository.WithOnDelete(func(id string) {
			publisher.Publish(events.Event{Type: events.EventSessionDeleted, GameID: id})
		}),
	)

	hub := server.NewHub(publisher, logger)

	// Initialize game manager
	gm := manager.NewManager(registry, hub, publisher, catalog, manager.SettingsFrom(cfg), logger)

	ctx, cancel := context.WithCancel(context.Background())

	app := &application{
		Auth:      auth.NewAPIKeyAuth(cfg.APIKeys),
		Logger:    logger,
		Config:    cfg,
		Publisher: publisher,
		Registry:  registry,
		Hub:       hub,
		Metrics:   reg,
		StartTime: time.Now(),
		stopHub:   cancel,
	}

	go app.Hub.Run(ctx, gm)

	logger.Info("configuration loaded",
		zap.String("port", cfg.Port),
		zap.String("clock_mode", string(cfg.ClockMode)),
		zap.Int64("time_control_seconds", cfg.TimeControlSeconds),
		zap.Duration("retention", cfg.Retention),
		zap.Bool("api_keys", app.Auth.Enabled()),
	)

	err = app.serve()
	if err != nil {
		logger.Fatal("error serving", zap.Error(err))
	}
}

func initLogger(debug bool, format string) *zap.Logger {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	switch format {
	case "console":
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	case "json":
		cfg.Encoding = "json"
		cfg.EncoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
	}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build()
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	return logger
}

// subscribeLogging writes game lifecycle events to the log
func subscribeLogging(p *events.Publisher, logger *zap.Logger) {
	log := logger.Named("events")

	p.SubscribeAll(func(e events.Event) {
		switch e.Type {
		case events.EventGameOver, events.EventSessionDeleted, events.EventGameStarted:
			log.Info("game event", zap.String("type", string(e.Type)), zap.String("game_id", e.GameID), zap.Any("payload", e.Payload))
		default:
			log.Debug("event", zap.String("type", string(e.Type)), zap.String("game_id", e.GameID))
		}
	})
}

// Shutdown cleans up resources
func (app *application) Shutdown() {
	// Shut down hub
	if app.stopHub != nil {
		app.stopHub()
		<-app.Hub.Done()
	}

	if app.Registry != nil {
		app.Registry.Shutdown()
	}

	app.Logger.Info("All components shut down successfully")
}
