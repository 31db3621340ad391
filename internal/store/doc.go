// Package store provides SQLite-backed durable storage for the insignia edge log.
//
// The store mirrors the layout of the managed key-value table the graph was
// designed for:
//   - edges: one row per (source, edge_key) primary key, last write wins
//   - idx_edges_destination: secondary access path by (destination, edge_key)
//
// # Critical Patterns
//
// Upsert Semantics
//   - PutEdge never checks for an existing row; a second write to the same
//     (source, edge_key) replaces destination and payload
//   - Callers that need history mint a fresh destination vertex per event
//
// Deterministic Query Results
//   - All queries order by edge_key ASC COLLATE BINARY, matching the range-key
//     ordering of the original table
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//
// Payloads are stored as the tagged-union JSON produced by graph.MarshalPayload.
package store
