package viewer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/insignia/internal/graph"
	"github.com/roach88/insignia/internal/graphstore"
	"github.com/roach88/insignia/internal/render"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubGraph struct {
	edges []graph.Edge
	err   error
}

func (s stubGraph) Neighborhood(context.Context, string) ([]graph.Edge, error) {
	return s.edges, s.err
}

func setupTestRouter(g stubGraph) (*gin.Engine, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	graphstore.NewMetrics(reg)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRouter(render.New(g), reg, logger), reg
}

func get(router *gin.Engine, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func userEdges() []graph.Edge {
	u := graph.UserVertex("u1")
	return []graph.Edge{
		graph.NewEdge(u, graph.EdgeUserSelf, u, graph.UserProfile{Name: "Tolvan <T>"}),
		graph.NewEdge(u, graph.EdgeDocumentOwner, graph.DocumentVertex("d1"), nil),
	}
}

func TestHandlePage_Form(t *testing.T) {
	router, _ := setupTestRouter(stubGraph{})

	w := get(router, "/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `name="vertex-id"`)
	assert.NotContains(t, w.Body.String(), `id="dot"`)
}

func TestHandlePage_Vertex(t *testing.T) {
	router, _ := setupTestRouter(stubGraph{edges: userEdges()})

	w := get(router, "/?vertex-id=User-u1")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `<li><a href="?vertex-id=Document-d1">Document-d1</a></li>`)
	assert.Contains(t, body, "&#34;Useru1&#34; -&gt; &#34;Documentd1&#34;;", "DOT source is escaped into the page")
	assert.NotContains(t, body, "<T>")
}

func TestHandlePage_InvalidVertex(t *testing.T) {
	router, _ := setupTestRouter(stubGraph{})

	w := get(router, "/?vertex-id=Nothing-1")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `class="error"`)
}

func TestHandleVertex(t *testing.T) {
	router, _ := setupTestRouter(stubGraph{edges: userEdges()})

	w := get(router, "/api/vertex?vertex-id=User-u1")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		VertexID string   `json:"vertex_id"`
		Graph    string   `json:"graph"`
		Vertices []string `json:"vertices"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "User-u1", resp.VertexID)
	assert.Equal(t, []string{"Document-d1", "User-u1"}, resp.Vertices)
	assert.Contains(t, resp.Graph, "digraph {")
}

func TestHandleVertex_Errors(t *testing.T) {
	tests := []struct {
		name   string
		graph  stubGraph
		target string
		status int
		code   string
	}{
		{"missing id", stubGraph{}, "/api/vertex", http.StatusBadRequest, "INVALID_REQUEST"},
		{"malformed id", stubGraph{}, "/api/vertex?vertex-id=nodash", http.StatusBadRequest, "INVALID_VERTEX"},
		{
			"store unavailable",
			stubGraph{err: fmt.Errorf("%w: reverse query", graphstore.ErrStoreUnavailable)},
			"/api/vertex?vertex-id=User-u1",
			http.StatusServiceUnavailable,
			"STORE_UNAVAILABLE",
		},
		{"other failure", stubGraph{err: errors.New("boom")}, "/api/vertex?vertex-id=User-u1", http.StatusInternalServerError, "RENDER_FAILED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := setupTestRouter(tt.graph)

			w := get(router, tt.target)
			assert.Equal(t, tt.status, w.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.Code)
		})
	}
}

func TestHealthz(t *testing.T) {
	router, _ := setupTestRouter(stubGraph{})

	w := get(router, "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestMetrics(t *testing.T) {
	router, reg := setupTestRouter(stubGraph{})
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "insignia_test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	w := get(router, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "insignia_test_total 1")
}
