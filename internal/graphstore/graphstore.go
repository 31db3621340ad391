// Package graphstore is the graph access layer over an edge backend.
//
// It provides upsert-by-edge-key writes and neighborhood reads that merge two
// independent access paths: the primary key (edges by source) and the
// secondary index (edges by destination).
//
// Read failures are absorbed by default: the failed half of a neighborhood is
// treated as empty and the failure is logged and counted, so callers cannot
// tell "no edges" from "store unreachable". Options.StrictReads surfaces
// ErrStoreUnavailable instead.
package graphstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/insignia/internal/graph"
)

// ErrStoreUnavailable is returned by reads in strict mode when a backend
// query fails.
var ErrStoreUnavailable = errors.New("store unavailable")

// Backend is a key-value store holding edges under a (source, edge key)
// primary key with a secondary index on (destination, edge key).
type Backend interface {
	PutEdge(ctx context.Context, edge graph.Edge) error
	QueryBySource(ctx context.Context, source, keyPrefix string) ([]graph.Edge, error)
	QueryByDestination(ctx context.Context, destination string) ([]graph.Edge, error)
}

// Options configures a Store.
type Options struct {
	// StrictReads surfaces ErrStoreUnavailable instead of degrading a failed
	// query to zero results.
	StrictReads bool

	// Logger receives absorbed failures. Nil means slog.Default().
	Logger *slog.Logger

	// Metrics is optional.
	Metrics *Metrics
}

// Store is the GraphStore: edge writes and neighborhood queries.
type Store struct {
	backend Backend
	strict  bool
	logger  *slog.Logger
	metrics *Metrics
}

// New wraps a backend.
func New(backend Backend, opts Options) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		backend: backend,
		strict:  opts.StrictReads,
		logger:  logger,
		metrics: opts.Metrics,
	}
}

// Query directions, used in logs and metric labels.
const (
	directionForward = "forward"
	directionReverse = "reverse"
)

// PutEdge upserts an edge keyed by (Source, Key), overwriting any existing
// record with the same key. Write errors are always returned.
func (s *Store) PutEdge(ctx context.Context, edge graph.Edge) error {
	s.logger.Debug("put edge", "source", edge.Source, "edge_key", edge.Key, "destination", edge.Destination)

	err := s.backend.PutEdge(ctx, edge)
	s.metrics.observeWrite(err)
	if err != nil {
		return fmt.Errorf("put edge %q: %w", edge.Key, err)
	}
	return nil
}

// Neighborhood returns every edge incident to vertexID: edges found through
// the destination index first, then edges found by source.
//
// The two queries run concurrently. Results are concatenated without
// deduplication, so a self-loop appears once from each side.
func (s *Store) Neighborhood(ctx context.Context, vertexID string) ([]graph.Edge, error) {
	var (
		g        errgroup.Group
		incoming []graph.Edge
		outgoing []graph.Edge
	)

	g.Go(func() error {
		edges, err := s.backend.QueryByDestination(ctx, vertexID)
		incoming, err = s.absorb(directionReverse, vertexID, edges, err)
		return err
	})
	g.Go(func() error {
		edges, err := s.backend.QueryBySource(ctx, vertexID, "")
		outgoing, err = s.absorb(directionForward, vertexID, edges, err)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make([]graph.Edge, 0, len(incoming)+len(outgoing))
	merged = append(merged, incoming...)
	merged = append(merged, outgoing...)
	return merged, nil
}

// NeighborhoodWithPrefix returns the outgoing edges of vertexID whose key
// starts with prefix, e.g. graph.PrefixSession for a session's own events.
func (s *Store) NeighborhoodWithPrefix(ctx context.Context, vertexID, prefix string) ([]graph.Edge, error) {
	edges, err := s.backend.QueryBySource(ctx, vertexID, prefix)
	return s.absorb(directionForward, vertexID, edges, err)
}

// IncomingEdges returns the edges pointing at vertexID.
func (s *Store) IncomingEdges(ctx context.Context, vertexID string) ([]graph.Edge, error) {
	edges, err := s.backend.QueryByDestination(ctx, vertexID)
	return s.absorb(directionReverse, vertexID, edges, err)
}

// absorb applies the read-failure policy to one query result.
func (s *Store) absorb(direction, vertexID string, edges []graph.Edge, err error) ([]graph.Edge, error) {
	s.metrics.observeQuery(direction, err)
	if err == nil {
		if edges == nil {
			edges = []graph.Edge{}
		}
		return edges, nil
	}

	if s.strict {
		return nil, fmt.Errorf("%w: %s query for %q: %v", ErrStoreUnavailable, direction, vertexID, err)
	}

	s.logger.Error("edge query failed, treating as empty",
		"direction", direction,
		"vertex", vertexID,
		"error", err,
	)
	s.metrics.observeDegraded(direction)
	return []graph.Edge{}, nil
}
