// Package config loads insignia's YAML configuration and opens the edge
// backend it selects.
package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/roach88/insignia/internal/graphstore"
	"github.com/roach88/insignia/internal/store"
	"github.com/roach88/insignia/internal/store/badgerstore"
	"github.com/roach88/insignia/internal/store/dynamostore"
)

// Backend names.
const (
	BackendSQLite   = "sqlite"
	BackendBadger   = "badger"
	BackendDynamoDB = "dynamodb"
)

// Config is the top-level configuration file.
type Config struct {
	Backend           string         `yaml:"backend" validate:"oneof=sqlite badger dynamodb"`
	StrictReads       bool           `yaml:"strict_reads"`
	LookupConcurrency int            `yaml:"lookup_concurrency" validate:"gte=0"`
	SQLite            SQLiteConfig   `yaml:"sqlite"`
	Badger            BadgerConfig   `yaml:"badger"`
	DynamoDB          DynamoDBConfig `yaml:"dynamodb"`
	Viewer            ViewerConfig   `yaml:"viewer"`
	Log               LogConfig      `yaml:"log"`
}

type SQLiteConfig struct {
	Path string `yaml:"path"`
}

type BadgerConfig struct {
	Path       string `yaml:"path"`
	InMemory   bool   `yaml:"in_memory"`
	SyncWrites bool   `yaml:"sync_writes"`
}

type DynamoDBConfig struct {
	Table    string `yaml:"table"`
	Index    string `yaml:"index"`
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint" validate:"omitempty,url"`
}

type ViewerConfig struct {
	Listen string `yaml:"listen" validate:"required,hostname_port"`
}

type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Backend:           BackendSQLite,
		LookupConcurrency: 8,
		SQLite:            SQLiteConfig{Path: "insignia.db"},
		Badger:            BadgerConfig{Path: "insignia.badger", SyncWrites: true},
		DynamoDB: DynamoDBConfig{
			Table:  "insignia-docs",
			Index:  "index-vertex_b_edges",
			Region: "eu-north-1",
		},
		Viewer: ViewerConfig{Listen: ":8080"},
		Log:    LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads a YAML file over the defaults and validates the result.
// Unknown fields are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks field constraints and that the selected backend is fully
// configured.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	switch c.Backend {
	case BackendSQLite:
		if c.SQLite.Path == "" {
			return errors.New("invalid config: sqlite.path is required")
		}
	case BackendBadger:
		if c.Badger.Path == "" && !c.Badger.InMemory {
			return errors.New("invalid config: badger.path is required unless badger.in_memory is set")
		}
	case BackendDynamoDB:
		if c.DynamoDB.Table == "" || c.DynamoDB.Index == "" {
			return errors.New("invalid config: dynamodb.table and dynamodb.index are required")
		}
	}
	return nil
}

// SlogLevel maps Level onto slog; unknown values mean info.
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// NewLogger builds a logger writing to w in the configured format.
func (l LogConfig) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: l.SlogLevel()}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Backend is an edge backend that must be closed after use.
type Backend interface {
	graphstore.Backend
	Close() error
}

// OpenBackend opens the backend selected by cfg.Backend.
func OpenBackend(ctx context.Context, cfg *Config, logger *slog.Logger) (Backend, error) {
	switch cfg.Backend {
	case BackendSQLite:
		st, err := store.Open(cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		return st, nil
	case BackendBadger:
		st, err := badgerstore.Open(badgerstore.Config{
			Path:       cfg.Badger.Path,
			InMemory:   cfg.Badger.InMemory,
			SyncWrites: cfg.Badger.SyncWrites,
			Logger:     logger,
		})
		if err != nil {
			return nil, err
		}
		return st, nil
	case BackendDynamoDB:
		st, err := dynamostore.Connect(ctx, dynamostore.Config{
			Table:    cfg.DynamoDB.Table,
			Index:    cfg.DynamoDB.Index,
			Region:   cfg.DynamoDB.Region,
			Endpoint: cfg.DynamoDB.Endpoint,
		})
		if err != nil {
			return nil, err
		}
		return st, nil
	}
	return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}

// OpenGraph opens the configured backend and wraps it in a graph store.
func OpenGraph(ctx context.Context, cfg *Config, logger *slog.Logger, metrics *graphstore.Metrics) (*graphstore.Store, Backend, error) {
	backend, err := OpenBackend(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	g := graphstore.New(backend, graphstore.Options{
		StrictReads: cfg.StrictReads,
		Logger:      logger,
		Metrics:     metrics,
	})
	return g, backend, nil
}
