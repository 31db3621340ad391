package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/insignia/internal/graph"
)

// QueryBySource returns every edge whose source is the given vertex and whose
// key starts with keyPrefix. An empty prefix selects all outgoing edges.
//
// Returns an empty slice (not nil) if nothing matches.
func (s *Store) QueryBySource(ctx context.Context, source, keyPrefix string) ([]graph.Edge, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT source, destination, edge_key, payload
		FROM edges
		WHERE source = ? AND substr(edge_key, 1, length(?)) = ?
		ORDER BY edge_key COLLATE BINARY ASC
	`, source, keyPrefix, keyPrefix)
	if err != nil {
		return nil, fmt.Errorf("query by source: %w", err)
	}
	defer rows.Close()

	return scanEdges(rows)
}

// QueryByDestination returns every edge pointing at the given vertex,
// using the destination index.
//
// Returns an empty slice (not nil) if nothing matches.
func (s *Store) QueryByDestination(ctx context.Context, destination string) ([]graph.Edge, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT source, destination, edge_key, payload
		FROM edges
		WHERE destination = ?
		ORDER BY edge_key COLLATE BINARY ASC
	`, destination)
	if err != nil {
		return nil, fmt.Errorf("query by destination: %w", err)
	}
	defer rows.Close()

	return scanEdges(rows)
}

// CountEdges returns the number of stored edges.
func (s *Store) CountEdges(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM edges`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count edges: %w", err)
	}
	return count, nil
}

// scanEdges drains rows into edges.
func scanEdges(rows *sql.Rows) ([]graph.Edge, error) {
	edges := []graph.Edge{}
	for rows.Next() {
		var (
			e       graph.Edge
			payload sql.NullString
		)
		if err := rows.Scan(&e.Source, &e.Destination, &e.Key, &payload); err != nil {
			return nil, fmt.Errorf("scan edge: %w", err)
		}
		data, err := unmarshalPayload(payload)
		if err != nil {
			return nil, fmt.Errorf("scan edge %q: %w", e.Key, err)
		}
		e.Payload = data
		edges = append(edges, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate edges: %w", err)
	}

	return edges, nil
}
