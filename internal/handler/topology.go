package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/meshscope/backend-go/internal/analysis"
	"github.com/meshscope/backend-go/internal/diagram"
	"github.com/meshscope/backend-go/internal/domain"
	"github.com/meshscope/backend-go/internal/health"
	"github.com/meshscope/backend-go/internal/topology"
)

// TopologyHandler handles service, connection and diagram endpoints
type TopologyHandler struct {
	builder    *topology.Builder
	classifier *health.Classifier
	analyzer   *analysis.Analyzer
	renderer   *diagram.Renderer
}

// NewTopologyHandler creates a new TopologyHandler
func NewTopologyHandler(
	builder *topology.Builder,
	classifier *health.Classifier,
	analyzer *analysis.Analyzer,
	renderer *diagram.Renderer,
) *TopologyHandler {
	return &TopologyHandler{builder: builder, classifier: classifier, analyzer: analyzer, renderer: renderer}
}

// ListServices returns every service with its rolled-up health
func (h *TopologyHandler) ListServices(c *gin.Context) {
	c.JSON(http.StatusOK, h.builder.ListServices(c.Request.Context()))
}

// GetService returns one service with its incoming and outgoing connections
func (h *TopologyHandler) GetService(c *gin.Context) {
	details, err := h.builder.ServiceDetails(c.Request.Context(), c.Param("name"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

// GetServiceMetrics returns the simulated metrics of one service
func (h *TopologyHandler) GetServiceMetrics(c *gin.Context) {
	m, err := h.builder.Metrics(c.Request.Context(), c.Param("name"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// ListConnections returns the inferred connection graph
func (h *TopologyHandler) ListConnections(c *gin.Context) {
	c.JSON(http.StatusOK, h.builder.ListConnections(c.Request.Context()))
}

// GetDiagram renders the topology as flowchart text.
// Query: health (default true), metrics (default false).
func (h *TopologyHandler) GetDiagram(c *gin.Context) {
	includeHealth, err := strconv.ParseBool(c.DefaultQuery("health", "true"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "health must be a boolean"})
		return
	}
	includeMetrics, err := strconv.ParseBool(c.DefaultQuery("metrics", "false"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "metrics must be a boolean"})
		return
	}

	ctx := c.Request.Context()
	services, conns := h.servicesAndConnections(ctx)

	c.JSON(http.StatusOK, gin.H{
		"diagram": h.renderer.Render(services, conns, diagram.Options{
			IncludeHealth:  includeHealth,
			IncludeMetrics: includeMetrics,
		}),
	})
}

// Bundle is the aggregate snapshot served by GetBundle
type Bundle struct {
	Services    []domain.Service       `json:"services"`
	Health      domain.HealthSummary   `json:"health"`
	Connections []domain.Connection    `json:"connections"`
	Analysis    *analysis.MeshAnalysis `json:"analysis"`
}

// GetBundle returns services, health summary, connections and mesh
// analysis in one response
func (h *TopologyHandler) GetBundle(c *gin.Context) {
	var b Bundle
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		b.Services = h.builder.ListServices(ctx)
		return nil
	})
	g.Go(func() error {
		b.Health = h.classifier.Summary(ctx)
		return nil
	})
	g.Go(func() error {
		b.Connections = h.builder.ListConnections(ctx)
		return nil
	})
	g.Go(func() error {
		b.Analysis = h.analyzer.AnalyzeServiceMesh(ctx)
		return nil
	})
	_ = g.Wait()

	c.JSON(http.StatusOK, b)
}

func (h *TopologyHandler) servicesAndConnections(ctx context.Context) ([]domain.Service, []domain.Connection) {
	var (
		services []domain.Service
		conns    []domain.Connection
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		services = h.builder.ListServices(gctx)
		return nil
	})
	g.Go(func() error {
		conns = h.builder.ListConnections(gctx)
		return nil
	})
	_ = g.Wait()
	return services, conns
}
