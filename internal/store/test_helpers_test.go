package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/insignia/internal/graph"
)

// createTestStore creates a new store in a temporary directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestEdge creates an edge between two user vertices.
func createTestEdge(t graph.EdgeType, src, dst string, payload graph.VertexData) graph.Edge {
	return graph.NewEdge(graph.UserVertex(src), t, graph.UserVertex(dst), payload)
}
