// Package graph defines the vertex, edge and payload types of the insignia
// document-signing graph, together with the codecs that map them to store keys.
//
// This package contains type definitions and pure codecs only. All other
// internal packages import graph; graph imports nothing internal.
//
// Key encodings:
//   - Vertex:   "<Kind>-<identifier>", identifiers may themselves contain "-"
//   - Edge key: "<tag>|<source vertex>|<destination vertex>"
//
// The codecs in this package are the only place that splits or joins these
// strings. Callers must go through ParseVertex, ParseEdgeType and NewEdge.
package graph
