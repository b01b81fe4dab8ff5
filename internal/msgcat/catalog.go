// Package msgcat holds every user-facing string the server sends. Defaults
// are embedded; a directory of YAML files may override individual keys.
package msgcat

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"text/template"

	yaml "gopkg.in/yaml.v3"
)

//go:embed messages.en.yaml
var defaultFiles embed.FS

// Message keys
const (
	KeyNotFound            = "error.not_found"
	KeySelfJoin            = "error.self_join"
	KeyNotYourTurn         = "error.not_your_turn"
	KeySpectatorNotAllowed = "error.spectator_not_allowed"
	KeyInvalidMove         = "error.invalid_move"
	KeyNotInGame           = "error.not_in_game"
	KeyGameNotActive       = "error.game_not_active"
	KeyAlreadyPlaying      = "error.already_playing"
	KeyNoDrawOffer         = "error.no_draw_offer"
	KeyClockRunning        = "error.clock_running"
	KeyInvalidPayload      = "error.invalid_payload"
	KeyUnknownType         = "error.unknown_type"
	KeyInternal            = "error.internal"

	KeySpectatorFull = "join.spectator_full"
	KeySpectator     = "join.spectator"

	KeyOverCheckmate   = "over.checkmate"
	KeyOverStalemate   = "over.stalemate"
	KeyOverDraw        = "over.draw"
	KeyOverAgreement   = "over.agreement"
	KeyOverResignation = "over.resignation"
	KeyOverTimeout     = "over.timeout"
	KeyOverDisconnect  = "over.disconnect"
)

// Catalog renders message templates by dotted key
type Catalog struct {
	mu     sync.RWMutex
	data   map[string]string
	parsed map[string]*template.Template
}

// New loads the embedded messages and then applies overrides from dir if provided.
func New(overrideDir string) (*Catalog, error) {
	c := &Catalog{
		data:   make(map[string]string),
		parsed: make(map[string]*template.Template),
	}

	if err := c.loadEmbedded(); err != nil {
		return nil, err
	}

	if strings.TrimSpace(overrideDir) != "" {
		if err := c.applyDir(overrideDir); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Default returns the embedded catalog. It panics if the embedded file is broken.
func Default() *Catalog {
	c, err := New("")
	if err != nil {
		panic(fmt.Sprintf("msgcat: embedded messages: %v", err))
	}
	return c
}

func (c *Catalog) loadEmbedded() error {
	raw, err := fs.ReadFile(defaultFiles, "messages.en.yaml")
	if err != nil {
		return fmt.Errorf("read embedded messages: %w", err)
	}

	flat, err := parseYAMLToFlat(raw)
	if err != nil {
		return fmt.Errorf("parse embedded messages: %w", err)
	}

	c.apply(flat)
	return nil
}

func (c *Catalog) applyDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read message dir: %w", err)
	}

	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".yaml" || ext == ".yml" {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	seen := make(map[string]string)
	for _, name := range files {
		b, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}

		flat, err := parseYAMLToFlat(b)
		if err != nil {
			return fmt.Errorf("parse %s: %w", name, err)
		}

		for k := range flat {
			if prev, ok := seen[k]; ok {
				return fmt.Errorf("duplicate override key %q in %s and %s", k, prev, name)
			}
			seen[k] = name
		}

		c.apply(flat)
	}

	return nil
}

func (c *Catalog) apply(flat map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for k, v := range flat {
		c.data[k] = v
		delete(c.parsed, k)
	}
}

func parseYAMLToFlat(b []byte) (map[string]string, error) {
	var m map[string]any
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, err
	}

	flat := make(map[string]string)
	if err := flattenStrings(m, "", flat); err != nil {
		return nil, err
	}

	return flat, nil
}

func flattenStrings(src any, prefix string, out map[string]string) error {
	switch v := src.(type) {
	case map[string]any:
		for k, vv := range v {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			if err := flattenStrings(vv, key, out); err != nil {
				return err
			}
		}
		return nil
	case string:
		if prefix == "" {
			return errors.New("string value without key prefix")
		}
		out[prefix] = v
		return nil
	case nil:
		return nil
	default:
		return fmt.Errorf("unsupported value at %s: %T", prefix, v)
	}
}

// Render executes the template stored under key. Missing keys and missing
// template fields are errors.
func (c *Catalog) Render(key string, data any) (string, error) {
	key = strings.TrimSpace(key)

	t, err := c.template(key)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", err
	}

	return b.String(), nil
}

// Text renders key and falls back to the key itself on failure
func (c *Catalog) Text(key string, data any) string {
	s, err := c.Render(key, data)
	if err != nil {
		return key
	}
	return s
}

func (c *Catalog) template(key string) (*template.Template, error) {
	c.mu.RLock()
	t, ok := c.parsed[key]
	raw, found := c.data[key]
	c.mu.RUnlock()

	if ok {
		return t, nil
	}
	if !found || strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("template not found: %s", key)
	}

	t, err := template.New(key).Option("missingkey=error").Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", key, err)
	}

	c.mu.Lock()
	c.parsed[key] = t
	c.mu.Unlock()

	return t, nil
}

// Keys returns every known key in sorted order
func (c *Catalog) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, 0, len(c.data))
	for k := range c.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}
