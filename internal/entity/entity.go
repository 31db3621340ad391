// Package entity implements the domain operations of the signing service
// (users, sessions and documents) as sequences of edge writes and reads
// against the graph store.
//
// Operations composed of several edges are not atomic: a failure part way
// leaves a partially-built vertex that is visible on the next read.
package entity

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/insignia/internal/graph"
	"github.com/roach88/insignia/internal/session"
)

// Graph is the subset of the graph store the entity operations use.
type Graph interface {
	PutEdge(ctx context.Context, edge graph.Edge) error
	Neighborhood(ctx context.Context, vertexID string) ([]graph.Edge, error)
	NeighborhoodWithPrefix(ctx context.Context, vertexID, prefix string) ([]graph.Edge, error)
	IncomingEdges(ctx context.Context, vertexID string) ([]graph.Edge, error)
}

// Clock supplies event timestamps.
type Clock interface {
	Now() time.Time
}

// IDGenerator mints identifiers for new vertices.
type IDGenerator interface {
	Generate() string
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time {
	return time.Now()
}

// UUIDv7Generator generates time-sortable UUIDv7 identifiers.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Options configures a Service. Zero values select production defaults.
type Options struct {
	Clock  Clock
	IDs    IDGenerator
	Logger *slog.Logger

	// LookupConcurrency caps concurrent profile fetches in
	// LookupUsersByPersonalNumber. Zero or less means unbounded.
	LookupConcurrency int
}

// Service runs entity operations against a Graph.
type Service struct {
	graph             Graph
	clock             Clock
	ids               IDGenerator
	logger            *slog.Logger
	lookupConcurrency int
	sessions          *session.Resolver
}

// NewService creates a Service.
func NewService(g Graph, opts Options) *Service {
	s := &Service{
		graph:             g,
		clock:             opts.Clock,
		ids:               opts.IDs,
		logger:            opts.Logger,
		lookupConcurrency: opts.LookupConcurrency,
	}
	if s.clock == nil {
		s.clock = SystemClock{}
	}
	if s.ids == nil {
		s.ids = UUIDv7Generator{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.sessions = session.NewResolver(s, s.logger)
	return s
}

// now formats the current instant as an RFC 3339 UTC timestamp.
func (s *Service) now() string {
	return s.clock.Now().UTC().Format(time.RFC3339Nano)
}

func (s *Service) mint(kind graph.VertexKind) graph.Vertex {
	return graph.NewVertex(kind, s.ids.Generate())
}

func (s *Service) put(ctx context.Context, src graph.Vertex, t graph.EdgeType, dst graph.Vertex, payload graph.VertexData) error {
	return s.graph.PutEdge(ctx, graph.NewEdge(src, t, dst, payload))
}
