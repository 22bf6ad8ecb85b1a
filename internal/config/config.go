// Package config loads runtime settings.
//
// Sources apply in order, later ones winning: built-in defaults, an optional
// YAML file, a .env file (variables already set in the environment are kept)
// and finally KANTIN_* environment variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the complete runtime configuration.
type Config struct {
	// Database is the SQLite path, or ":memory:".
	Database string `yaml:"database"`

	Log LogConfig `yaml:"log"`

	// PickupDelay is added to the order time to get the pickup time.
	PickupDelay time.Duration `yaml:"pickup_delay"`

	HTTP HTTPConfig `yaml:"http"`

	// Seed inserts the catalog into an empty database on startup.
	Seed bool `yaml:"seed"`

	// Catalog is an optional CUE catalog file used instead of the built-in one.
	Catalog string `yaml:"catalog"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// HTTPConfig configures the local API.
type HTTPConfig struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Database:    "kantin.db",
		Log:         LogConfig{Level: "info", Format: "text"},
		PickupDelay: 15 * time.Minute,
		HTTP:        HTTPConfig{Addr: "127.0.0.1:8080"},
		Seed:        true,
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty), envFile (skipped when missing) and the process environment.
func Load(path, envFile string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := decodeYAML(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// decodeYAML decodes strictly: unknown keys are errors. An empty document
// leaves cfg unchanged.
func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// applyEnv overlays KANTIN_* variables.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup("KANTIN_DB"); ok {
		cfg.Database = v
	}
	if v, ok := lookup("KANTIN_LOG_LEVEL"); ok {
		cfg.Log.Level = v
	}
	if v, ok := lookup("KANTIN_LOG_FORMAT"); ok {
		cfg.Log.Format = v
	}
	if v, ok := lookup("KANTIN_HTTP_ADDR"); ok {
		cfg.HTTP.Addr = v
	}
	if v, ok := lookup("KANTIN_CORS_ORIGINS"); ok {
		cfg.HTTP.CORSOrigins = splitList(v)
	}
	if v, ok := lookup("KANTIN_CATALOG"); ok {
		cfg.Catalog = v
	}
	if v, ok := lookup("KANTIN_PICKUP_DELAY"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("KANTIN_PICKUP_DELAY: %w", err)
		}
		cfg.PickupDelay = d
	}
	if v, ok := lookup("KANTIN_SEED"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("KANTIN_SEED: %w", err)
		}
		cfg.Seed = b
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate reports every invalid field.
func (c Config) Validate() error {
	var problems []error
	if c.Database == "" {
		problems = append(problems, errors.New("database path is required"))
	}
	if _, err := c.SlogLevel(); err != nil {
		problems = append(problems, err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		problems = append(problems, fmt.Errorf("log format %q: must be text or json", c.Log.Format))
	}
	if c.PickupDelay <= 0 {
		problems = append(problems, fmt.Errorf("pickup delay must be positive, got %s", c.PickupDelay))
	}
	if c.HTTP.Addr == "" {
		problems = append(problems, errors.New("http address is required"))
	}
	return errors.Join(problems...)
}

// SlogLevel parses Log.Level.
func (c Config) SlogLevel() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level %q: must be debug, info, warn or error", c.Log.Level)
	}
	return l, nil
}

// NewLogger builds the slog logger described by c, writing to w.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	level, _ := c.SlogLevel()
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
