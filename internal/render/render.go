// Package render draws the one-hop neighborhood of a vertex as Graphviz DOT
// markup with HTML-like node labels, plus an HTML link list for navigating
// to each vertex shown.
package render

import (
	"context"
	"fmt"
	"html"
	"net/url"
	"sort"
	"strings"

	"github.com/roach88/insignia/internal/graph"
)

// Neighborhood is the graph read the renderer needs.
type Neighborhood interface {
	Neighborhood(ctx context.Context, vertexID string) ([]graph.Edge, error)
}

// View is one rendered neighborhood.
type View struct {
	VertexID string
	// Graph is a DOT digraph.
	Graph string
	// Links is a <ul> with one link per vertex in Vertices.
	Links string
	// Vertices lists every vertex touched, sorted.
	Vertices []string
}

// Renderer renders neighborhoods read from a graph store.
type Renderer struct {
	graph Neighborhood
}

// New creates a Renderer.
func New(g Neighborhood) *Renderer {
	return &Renderer{graph: g}
}

// Render fetches the neighborhood of vertexID and renders it.
func (r *Renderer) Render(ctx context.Context, vertexID string) (View, error) {
	edges, err := r.graph.Neighborhood(ctx, vertexID)
	if err != nil {
		return View{}, fmt.Errorf("render %q: %w", vertexID, err)
	}
	v := Edges(edges)
	v.VertexID = vertexID
	return v, nil
}

// Edges renders a set of edges. Each destination is labelled with the
// payload of its edge; a vertex that only appears without a payload gets
// just its id row.
func Edges(edges []graph.Edge) View {
	payloads := make(map[string]graph.VertexData)
	for _, e := range edges {
		if e.Payload != nil || !has(payloads, e.Destination) {
			payloads[e.Destination] = e.Payload
		}
		if !has(payloads, e.Source) {
			payloads[e.Source] = nil
		}
	}

	ids := make([]string, 0, len(payloads))
	for id := range payloads {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var b strings.Builder
	b.WriteString("digraph {\n")
	b.WriteString("  node [shape=plaintext fontname=\"Sans serif\" fontsize=\"8\"];\n")
	for _, id := range ids {
		fmt.Fprintf(&b, "  %s [ label=<<table border=\"1\" cellborder=\"0\" cellspacing=\"1\" width=\"250\">%s%s</table>> ];\n",
			NodeID(id), formatPayload(payloads[id]), formatRow(html.EscapeString(id)))
	}
	for _, e := range edges {
		fmt.Fprintf(&b, "  %s -> %s;\n", NodeID(e.Source), NodeID(e.Destination))
	}
	b.WriteString("}\n")

	return View{
		Graph:    b.String(),
		Links:    linkList(ids),
		Vertices: ids,
	}
}

func has(m map[string]graph.VertexData, k string) bool {
	_, ok := m[k]
	return ok
}

var nodeIDReplacer = strings.NewReplacer("-", "", ".", "", "+", "", "@", "")

// NodeID returns the DOT node identifier for a vertex string: the id with
// "-", ".", "+" and "@" stripped, as a quoted DOT string.
//
// Stripping is lossy: "Email-a.b@x" and "Email-ab@x" share a node id and
// Graphviz draws them as one node. The link list keeps the full ids.
func NodeID(vertexID string) string {
	id := nodeIDReplacer.Replace(vertexID)
	id = strings.ReplaceAll(id, `\`, `\\`)
	id = strings.ReplaceAll(id, `"`, `\"`)
	return `"` + id + `"`
}

func linkList(ids []string) string {
	var b strings.Builder
	b.WriteString("<ul>")
	for _, id := range ids {
		fmt.Fprintf(&b, `<li><a href="?vertex-id=%s">%s</a></li>`,
			html.EscapeString(url.QueryEscape(id)), html.EscapeString(id))
	}
	b.WriteString("</ul>")
	return b.String()
}

func formatPayload(data graph.VertexData) string {
	switch d := data.(type) {
	case graph.S3Location:
		return formatRow("<b>S3Location</b>") +
			formatAttribute("bucket", d.Bucket) +
			formatAttribute("key", d.Key)
	case graph.PlainText:
		return formatRow("<b>PlainText</b>") + formatRow(html.EscapeString(string(d)))
	case graph.UserProfile:
		return formatRow("<b>UserProfile</b>") +
			formatAttribute("name", d.Name) +
			formatAttribute("given_name", d.GivenName) +
			formatAttribute("surname", d.Surname)
	case graph.SessionState:
		return formatRow("<b>SessionState</b>") +
			formatAttribute("created", d.Created) +
			formatAttribute("login", d.Login) +
			formatAttribute("logout", d.Logout) +
			formatAttribute("auth_data", d.AuthData)
	}
	return ""
}

// formatRow renders one full-width row; label is already escaped.
func formatRow(label string) string {
	return `<tr><td colspan="2" align="left">` + label + `</td></tr>`
}

// formatAttribute renders a key/value row, or just the key when val is empty.
func formatAttribute(key, val string) string {
	if val == "" {
		return `<tr><td align="left">` + key + `</td></tr>`
	}
	return `<tr><td align="left">` + key + `</td><td align="left">` + html.EscapeString(val) + `</td></tr>`
}
