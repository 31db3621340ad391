package store

import (
	"database/sql"
	"fmt"

	"github.com/roach88/insignia/internal/graph"
)

// marshalPayload converts a payload to nullable JSON TEXT for storage.
func marshalPayload(data graph.VertexData) (sql.NullString, error) {
	raw, err := graph.MarshalPayload(data)
	if err != nil {
		return sql.NullString{}, err
	}
	if raw == nil {
		return sql.NullString{}, nil
	}
	return sql.NullString{String: string(raw), Valid: true}, nil
}

// unmarshalPayload parses nullable JSON TEXT back to a payload.
func unmarshalPayload(col sql.NullString) (graph.VertexData, error) {
	if !col.Valid {
		return nil, nil
	}
	data, err := graph.UnmarshalPayload([]byte(col.String))
	if err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}
	return data, nil
}
