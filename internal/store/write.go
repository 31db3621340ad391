package store

import (
	"context"
	"fmt"

	"github.com/roach88/insignia/internal/graph"
)

// PutEdge upserts an edge keyed by (Source, Key).
//
// No optimistic-concurrency check is made: concurrent writers racing on the
// same key silently overwrite one another and the last write wins.
func (s *Store) PutEdge(ctx context.Context, edge graph.Edge) error {
	payload, err := marshalPayload(edge.Payload)
	if err != nil {
		return fmt.Errorf("put edge: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO edges (source, edge_key, destination, payload)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(source, edge_key) DO UPDATE SET
			destination = excluded.destination,
			payload = excluded.payload
	`,
		edge.Source,
		edge.Key,
		edge.Destination,
		payload,
	)
	if err != nil {
		return fmt.Errorf("put edge: %w", err)
	}

	return nil
}
