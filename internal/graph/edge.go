package graph

// Edge is one stored record: a directed, typed relation between two vertices
// with an optional payload describing the destination.
//
// The primary key is (Source, Key); the secondary index keys the same record
// by (Destination, Key).
type Edge struct {
	Source      string
	Destination string
	Key         string
	Payload     VertexData
}

// NewEdge builds an edge with its canonical key.
func NewEdge(source Vertex, t EdgeType, destination Vertex, payload VertexData) Edge {
	return Edge{
		Source:      source.String(),
		Destination: destination.String(),
		Key:         EdgeKey(t, source, destination),
		Payload:     payload,
	}
}

// Type decodes the edge type from the key.
func (e Edge) Type() (EdgeType, error) {
	return ParseEdgeType(e.Key)
}

// SourceVertex decodes the source vertex.
func (e Edge) SourceVertex() (Vertex, error) {
	return ParseVertex(e.Source)
}

// DestinationVertex decodes the destination vertex.
func (e Edge) DestinationVertex() (Vertex, error) {
	return ParseVertex(e.Destination)
}

// IsSelfLoop reports whether the edge points back at its source.
func (e Edge) IsSelfLoop() bool {
	return e.Source == e.Destination
}
