package config

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/insignia/internal/graph"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, BackendSQLite, cfg.Backend)
	assert.Equal(t, "insignia-docs", cfg.DynamoDB.Table)
	assert.Equal(t, "index-vertex_b_edges", cfg.DynamoDB.Index)
	assert.Equal(t, ":8080", cfg.Viewer.Listen)
	assert.False(t, cfg.StrictReads)
}

func TestParse_OverlaysDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
backend: badger
strict_reads: true
badger:
  in_memory: true
log:
  level: debug
  format: json
`))
	require.NoError(t, err)
	assert.Equal(t, BackendBadger, cfg.Backend)
	assert.True(t, cfg.StrictReads)
	assert.True(t, cfg.Badger.InMemory)
	assert.Equal(t, "insignia.badger", cfg.Badger.Path, "unset fields keep defaults")
	assert.Equal(t, 8, cfg.LookupConcurrency)
	assert.Equal(t, slog.LevelDebug, cfg.Log.SlogLevel())
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParse_UnknownField(t *testing.T) {
	_, err := Parse([]byte("backnd: sqlite\n"))
	assert.Error(t, err)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown backend", "backend: postgres\n"},
		{"negative concurrency", "lookup_concurrency: -1\n"},
		{"bad log level", "log: {level: loud}\n"},
		{"bad log format", "log: {format: xml}\n"},
		{"bad endpoint", "dynamodb: {endpoint: 'not a url'}\n"},
		{"missing listen", "viewer: {listen: ''}\n"},
		{"sqlite without path", "sqlite: {path: ''}\n"},
		{"badger without path", "backend: badger\nbadger: {path: ''}\n"},
		{"dynamodb without table", "backend: dynamodb\ndynamodb: {table: ''}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "insignia.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend: dynamodb\ndynamodb: {region: us-east-1, endpoint: 'http://localhost:8000'}\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, BackendDynamoDB, cfg.Backend)
	assert.Equal(t, "us-east-1", cfg.DynamoDB.Region)
	assert.Equal(t, "http://localhost:8000", cfg.DynamoDB.Endpoint)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLogConfig_NewLogger(t *testing.T) {
	logger := LogConfig{Level: "warn", Format: "json"}.NewLogger(io.Discard)
	assert.False(t, logger.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, logger.Enabled(context.Background(), slog.LevelWarn))
}

func TestOpenGraph(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	sqliteCfg := Default()
	sqliteCfg.SQLite.Path = filepath.Join(t.TempDir(), "graph.db")

	badgerCfg := Default()
	badgerCfg.Backend = BackendBadger
	badgerCfg.Badger.InMemory = true

	for _, cfg := range []*Config{sqliteCfg, badgerCfg} {
		t.Run(cfg.Backend, func(t *testing.T) {
			g, backend, err := OpenGraph(ctx, cfg, logger, nil)
			require.NoError(t, err)
			defer backend.Close()

			u := graph.UserVertex("u")
			require.NoError(t, g.PutEdge(ctx, graph.NewEdge(u, graph.EdgeUserSelf, u, nil)))
			edges, err := g.Neighborhood(ctx, u.String())
			require.NoError(t, err)
			assert.Len(t, edges, 2)
		})
	}
}

func TestOpenBackend_Unknown(t *testing.T) {
	cfg := Default()
	cfg.Backend = "postgres"

	_, err := OpenBackend(context.Background(), cfg, nil)
	assert.Error(t, err)
}
