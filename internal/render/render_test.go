package render

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/insignia/internal/graph"
)

type stubNeighborhood struct {
	edges []graph.Edge
	err   error
}

func (s stubNeighborhood) Neighborhood(context.Context, string) ([]graph.Edge, error) {
	return s.edges, s.err
}

var (
	userU1 = graph.UserVertex("u1")
	docD1  = graph.DocumentVertex("d1")
)

func assertGolden(t *testing.T, name string, v View) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name+".dot", []byte(v.Graph))
	g.Assert(t, name+".links", []byte(v.Links))
}

func TestEdges_UserNeighborhood(t *testing.T) {
	profile := graph.UserProfile{Name: "Tolvan Tolvansson", GivenName: "Tolvan", Surname: "Tolvansson"}
	edges := []graph.Edge{
		graph.NewEdge(graph.SessionVertex("s1"), graph.EdgeSessionUser, userU1, nil),
		graph.NewEdge(userU1, graph.EdgeUserSelf, userU1, profile),
		graph.NewEdge(userU1, graph.EdgeDocumentOwner, docD1, nil),
		graph.NewEdge(userU1, graph.EdgeUserPersonalNumber, graph.PersonalNumberVertex("191212121212"), nil),
		graph.NewEdge(userU1, graph.EdgeUserSelf, userU1, profile),
	}

	assertGolden(t, "user_neighborhood", Edges(edges))
}

func TestEdges_DocumentNeighborhood(t *testing.T) {
	edges := []graph.Edge{
		graph.NewEdge(userU1, graph.EdgeDocumentOwner, docD1, nil),
		graph.NewEdge(docD1, graph.EdgeDocumentSelf, docD1, nil),
		graph.NewEdge(docD1, graph.EdgeDocumentS3, graph.DocumentS3Vertex("2021/03/a&b.pdf"),
			graph.S3Location{Bucket: "insignia-uploads", Key: "2021/03/a&b.pdf"}),
		graph.NewEdge(docD1, graph.EdgeDocumentChecksum, graph.ChecksumSha256Vertex("ab12"), nil),
		graph.NewEdge(docD1, graph.EdgeDocumentSignature, graph.UserVertex("u2"), graph.PlainText("<signed>")),
	}

	assertGolden(t, "document_neighborhood", Edges(edges))
}

func TestEdges_SessionNeighborhood(t *testing.T) {
	s1 := graph.SessionVertex("s1")
	edges := []graph.Edge{
		graph.NewEdge(s1, graph.EdgeSessionSelf, s1, graph.SessionState{Created: "2021-03-01T12:00:00Z"}),
		graph.NewEdge(s1, graph.EdgeSessionLogin, graph.SessionLoginVertex("l1"), graph.SessionState{
			Created:  "2021-03-01T12:00:00Z",
			Login:    "2021-03-01T12:00:01Z",
			AuthData: `bankid "proof"`,
		}),
		graph.NewEdge(s1, graph.EdgeSessionUser, userU1, nil),
	}

	assertGolden(t, "session_neighborhood", Edges(edges))
}

var (
	nodeDecl = regexp.MustCompile(`(?m)^  ("[^"]*") \[ label=`)
	edgeDecl = regexp.MustCompile(`(?m)^  "[^"]*" -> "[^"]*";$`)
	linkHref = regexp.MustCompile(`<a href="\?vertex-id=([^"]*)">`)
)

func TestEdges_TwoOutgoingEdges(t *testing.T) {
	a := graph.UserVertex("a")
	edges := []graph.Edge{
		graph.NewEdge(a, graph.EdgeUserEmail, graph.EmailVertex("a@example.se"), nil),
		graph.NewEdge(a, graph.EdgeUserPhone, graph.PhoneVertex("+46701234567"), nil),
	}

	v := Edges(edges)

	nodes := nodeDecl.FindAllStringSubmatch(v.Graph, -1)
	distinct := make(map[string]bool)
	for _, m := range nodes {
		distinct[m[1]] = true
	}
	assert.Len(t, nodes, 3)
	assert.Len(t, distinct, 3)
	assert.Len(t, edgeDecl.FindAllString(v.Graph, -1), 2)

	var linked []string
	for _, m := range linkHref.FindAllStringSubmatch(v.Links, -1) {
		linked = append(linked, m[1])
	}
	assert.Equal(t, []string{"Email-a%40example.se", "Phone-%2B46701234567", "User-a"}, linked)
	assert.Equal(t, []string{"Email-a@example.se", "Phone-+46701234567", "User-a"}, v.Vertices)
}

func TestEdges_PayloadNotReplacedByPlaceholder(t *testing.T) {
	u := graph.UserVertex("u")
	edges := []graph.Edge{
		graph.NewEdge(u, graph.EdgeUserSelf, u, graph.UserProfile{Name: "Kept"}),
		graph.NewEdge(graph.SessionVertex("s"), graph.EdgeSessionUser, u, nil),
	}

	v := Edges(edges)
	assert.Contains(t, v.Graph, "<b>UserProfile</b>")
}

func TestEdges_Empty(t *testing.T) {
	v := Edges(nil)
	assert.Equal(t, "digraph {\n  node [shape=plaintext fontname=\"Sans serif\" fontsize=\"8\"];\n}\n", v.Graph)
	assert.Equal(t, "<ul></ul>", v.Links)
	assert.Empty(t, v.Vertices)
}

func TestNodeID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"User-0190a1b2-c3d4", `"User0190a1b2c3d4"`},
		{"Email-first.last+tag@example.se", `"Emailfirstlasttagexamplese"`},
		{`PlainText-say "hi"`, `"PlainTextsay \"hi\""`},
		{`Phone-a\b`, `"Phonea\\b"`},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NodeID(tt.in))
		})
	}
}

func TestNodeID_StrippedIDsCollide(t *testing.T) {
	dotted := graph.EmailVertex("a.b@x")
	plain := graph.EmailVertex("ab@x")
	assert.Equal(t, NodeID(dotted.String()), NodeID(plain.String()))

	v := Edges([]graph.Edge{
		graph.NewEdge(graph.UserVertex("a"), graph.EdgeUserEmail, dotted, nil),
		graph.NewEdge(graph.UserVertex("b"), graph.EdgeUserEmail, plain, nil),
	})
	assert.Equal(t, []string{"Email-a.b@x", "Email-ab@x", "User-a", "User-b"}, v.Vertices)
	assert.Contains(t, v.Links, "Email-a.b%40x")
	assert.Contains(t, v.Links, "Email-ab%40x")
}

func TestRender(t *testing.T) {
	a := graph.UserVertex("a")
	r := New(stubNeighborhood{edges: []graph.Edge{
		graph.NewEdge(a, graph.EdgeUserEmail, graph.EmailVertex("a@example.se"), nil),
	}})

	v, err := r.Render(context.Background(), a.String())
	require.NoError(t, err)
	assert.Equal(t, a.String(), v.VertexID)
	assert.Contains(t, v.Graph, `"Usera" -> "Emailaexamplese";`)
}

func TestRender_StoreError(t *testing.T) {
	r := New(stubNeighborhood{err: errors.New("store unavailable")})

	_, err := r.Render(context.Background(), "User-a")
	assert.Error(t, err)
}
