// Package viewer serves the neighborhood renderer over HTTP.
//
// Routes:
//
//	GET /?vertex-id=<id>        HTML page with the DOT graph and link list
//	GET /api/vertex?vertex-id=  the same view as JSON
//	GET /healthz                liveness
//	GET /metrics                Prometheus exposition
package viewer

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/roach88/insignia/internal/graph"
	"github.com/roach88/insignia/internal/graphstore"
	"github.com/roach88/insignia/internal/render"
)

// Renderer renders the neighborhood of a vertex.
type Renderer interface {
	Render(ctx context.Context, vertexID string) (render.View, error)
}

// VertexRequest is the query string of the page and API routes.
type VertexRequest struct {
	VertexID string `form:"vertex-id"`
}

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Handlers holds the viewer's dependencies.
type Handlers struct {
	renderer Renderer
	logger   *slog.Logger
}

// NewRouter builds the gin engine. gatherer backs /metrics; nil means the
// default Prometheus registry.
func NewRouter(renderer Renderer, gatherer prometheus.Gatherer, logger *slog.Logger) *gin.Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	h := &Handlers{renderer: renderer, logger: logger}

	router := gin.New()
	router.Use(gin.Recovery())
	router.SetHTMLTemplate(pageTemplate)

	router.GET("/", h.HandlePage)
	router.GET("/api/vertex", h.HandleVertex)
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	return router
}

type pageData struct {
	VertexID string
	Graph    string
	Links    template.HTML
	Error    string
}

// HandlePage renders the viewer page. Without a vertex-id it shows only the
// lookup form.
func (h *Handlers) HandlePage(c *gin.Context) {
	var req VertexRequest
	if err := c.ShouldBindQuery(&req); err != nil || req.VertexID == "" {
		c.HTML(http.StatusOK, "page", pageData{})
		return
	}

	view, status, err := h.render(c, req.VertexID)
	if err != nil {
		c.HTML(status, "page", pageData{VertexID: req.VertexID, Error: err.Error()})
		return
	}
	c.HTML(http.StatusOK, "page", pageData{
		VertexID: view.VertexID,
		Graph:    view.Graph,
		// The renderer escapes every id it writes into the list.
		Links: template.HTML(view.Links),
	})
}

// HandleVertex returns the rendered view as JSON.
func (h *Handlers) HandleVertex(c *gin.Context) {
	var req VertexRequest
	if err := c.ShouldBindQuery(&req); err != nil || req.VertexID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "vertex-id is required",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	view, status, err := h.render(c, req.VertexID)
	if err != nil {
		code := "RENDER_FAILED"
		switch status {
		case http.StatusBadRequest:
			code = "INVALID_VERTEX"
		case http.StatusServiceUnavailable:
			code = "STORE_UNAVAILABLE"
		}
		c.JSON(status, ErrorResponse{Error: err.Error(), Code: code})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"vertex_id": view.VertexID,
		"graph":     view.Graph,
		"links":     view.Links,
		"vertices":  view.Vertices,
	})
}

func (h *Handlers) render(c *gin.Context, vertexID string) (render.View, int, error) {
	logger := h.logger.With("handler", c.FullPath(), "vertex", vertexID)

	if _, err := graph.ParseVertex(vertexID); err != nil {
		logger.Warn("invalid vertex id", "error", err)
		return render.View{}, http.StatusBadRequest, err
	}

	view, err := h.renderer.Render(c.Request.Context(), vertexID)
	if err != nil {
		logger.Error("render failed", "error", err)
		if errors.Is(err, graphstore.ErrStoreUnavailable) {
			return render.View{}, http.StatusServiceUnavailable, err
		}
		return render.View{}, http.StatusInternalServerError, err
	}
	return view, http.StatusOK, nil
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>insignia{{if .VertexID}} - {{.VertexID}}{{end}}</title>
<script src="https://unpkg.com/viz.js@2.1.2/viz.js"></script>
<script src="https://unpkg.com/viz.js@2.1.2/full.render.js"></script>
</head>
<body>
<form method="get" action="/">
<input type="text" name="vertex-id" value="{{.VertexID}}" size="60">
<input type="submit" value="Show">
</form>
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
{{if .Graph}}
<div id="graph"></div>
<pre id="dot" hidden>{{.Graph}}</pre>
{{.Links}}
<script>
new Viz().renderSVGElement(document.getElementById("dot").textContent)
  .then(function (svg) { document.getElementById("graph").appendChild(svg); });
</script>
{{end}}
</body>
</html>
`))
