// Package badgerstore stores the insignia edge log in an embedded BadgerDB.
//
// Key layout:
//
//	f\x00<source>\x00<edge key>                  -> edge record (JSON)
//	r\x00<destination>\x00<edge key>\x00<source> -> forward key
//
// The forward keyspace is the primary key (source, edge key); the reverse
// keyspace is the secondary index by destination. Both are written in one
// badger transaction, so the index never points at a missing record.
package badgerstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/roach88/insignia/internal/graph"
)

const (
	forwardTag = "f"
	reverseTag = "r"
	sep        = "\x00"
)

// Config holds configuration for a BadgerDB-backed store.
type Config struct {
	// Path is the directory for BadgerDB files. Ignored when InMemory is true.
	Path string

	// InMemory enables in-memory mode (no disk persistence).
	InMemory bool

	// SyncWrites enables synchronous writes for durability.
	SyncWrites bool

	// Logger receives BadgerDB's internal logs. If nil, they are discarded.
	Logger *slog.Logger
}

// Store is a BadgerDB-backed edge store.
type Store struct {
	db *badger.DB
}

// record is the stored form of one edge.
type record struct {
	Source      string          `json:"source"`
	Destination string          `json:"destination"`
	EdgeKey     string          `json:"edge_key"`
	Payload     json.RawMessage `json:"payload,omitempty"`
}

// badgerLogger adapts slog.Logger to BadgerDB's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

// Open opens a BadgerDB edge store, creating the directory if needed.
func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent database")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}

	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// PutEdge upserts an edge keyed by (Source, Key). Last write wins.
func (s *Store) PutEdge(ctx context.Context, edge graph.Edge) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("put edge: %w", err)
	}
	if err := checkKeyParts(edge.Source, edge.Destination, edge.Key); err != nil {
		return fmt.Errorf("put edge: %w", err)
	}

	payload, err := graph.MarshalPayload(edge.Payload)
	if err != nil {
		return fmt.Errorf("put edge: %w", err)
	}
	value, err := json.Marshal(record{
		Source:      edge.Source,
		Destination: edge.Destination,
		EdgeKey:     edge.Key,
		Payload:     payload,
	})
	if err != nil {
		return fmt.Errorf("put edge: %w", err)
	}

	fwd := forwardKey(edge.Source, edge.Key)
	err = s.db.Update(func(txn *badger.Txn) error {
		// A rewrite that changes the destination must drop the stale index entry.
		prev, err := getRecord(txn, fwd)
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
		case err != nil:
			return err
		case prev.Destination != edge.Destination:
			if err := txn.Delete(reverseKey(prev.Destination, prev.EdgeKey, prev.Source)); err != nil {
				return err
			}
		}

		if err := txn.Set(fwd, value); err != nil {
			return err
		}
		return txn.Set(reverseKey(edge.Destination, edge.Key, edge.Source), fwd)
	})
	if err != nil {
		return fmt.Errorf("put edge: %w", err)
	}
	return nil
}

// QueryBySource returns every edge from source whose key starts with keyPrefix.
func (s *Store) QueryBySource(ctx context.Context, source, keyPrefix string) ([]graph.Edge, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("query by source: %w", err)
	}

	prefix := []byte(forwardTag + sep + source + sep + keyPrefix)
	edges := []graph.Edge{}
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			raw, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			edge, err := decodeRecord(raw)
			if err != nil {
				return err
			}
			edges = append(edges, edge)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query by source: %w", err)
	}
	return edges, nil
}

// QueryByDestination returns every edge pointing at destination.
func (s *Store) QueryByDestination(ctx context.Context, destination string) ([]graph.Edge, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("query by destination: %w", err)
	}

	prefix := []byte(reverseTag + sep + destination + sep)
	edges := []graph.Edge{}
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			fwd, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			rec, err := getRecord(txn, fwd)
			if err != nil {
				return fmt.Errorf("resolve index entry %q: %w", bytes.ReplaceAll(fwd, []byte(sep), []byte("/")), err)
			}
			edge, err := rec.edge()
			if err != nil {
				return err
			}
			edges = append(edges, edge)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query by destination: %w", err)
	}
	return edges, nil
}

func forwardKey(source, edgeKey string) []byte {
	return []byte(forwardTag + sep + source + sep + edgeKey)
}

func reverseKey(destination, edgeKey, source string) []byte {
	return []byte(reverseTag + sep + destination + sep + edgeKey + sep + source)
}

// checkKeyParts rejects strings that would corrupt the key layout.
func checkKeyParts(parts ...string) error {
	for _, p := range parts {
		if strings.Contains(p, sep) {
			return fmt.Errorf("%w: key part %q contains NUL", graph.ErrInvalidFormat, p)
		}
	}
	return nil
}

func getRecord(txn *badger.Txn, key []byte) (record, error) {
	item, err := txn.Get(key)
	if err != nil {
		return record{}, err
	}
	raw, err := item.ValueCopy(nil)
	if err != nil {
		return record{}, err
	}
	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return record{}, fmt.Errorf("decode record: %w", err)
	}
	return rec, nil
}

func decodeRecord(raw []byte) (graph.Edge, error) {
	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return graph.Edge{}, fmt.Errorf("decode record: %w", err)
	}
	return rec.edge()
}

func (r record) edge() (graph.Edge, error) {
	payload, err := graph.UnmarshalPayload(r.Payload)
	if err != nil {
		return graph.Edge{}, fmt.Errorf("decode record %q: %w", r.EdgeKey, err)
	}
	return graph.Edge{
		Source:      r.Source,
		Destination: r.Destination,
		Key:         r.EdgeKey,
		Payload:     payload,
	}, nil
}
