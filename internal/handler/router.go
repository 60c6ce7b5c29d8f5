package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/meshscope/backend-go/internal/observability"
)

// SetupRouter configures all API routes
func SetupRouter(
	topology *TopologyHandler,
	health *HealthHandler,
	analysis *AnalysisHandler,
	metrics *observability.Metrics,
	logger *zap.Logger,
	corsOrigin string,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggingMiddleware(logger))
	r.Use(CORSMiddleware(corsOrigin))
	r.Use(PrometheusMiddleware(metrics))

	// Liveness
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// Prometheus metrics
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	servicesGroup := api.Group("/services")
	{
		servicesGroup.GET("", topology.ListServices)
		servicesGroup.GET("/:name", topology.GetService)
		servicesGroup.GET("/:name/metrics", topology.GetServiceMetrics)
	}

	api.GET("/connections", topology.ListConnections)

	healthGroup := api.Group("/health")
	{
		healthGroup.GET("/summary", health.GetSummary)
		healthGroup.GET("/patterns", health.GetPatterns)
		healthGroup.GET("/checks/diagnose", health.DiagnoseChecks)
	}

	analysisGroup := api.Group("/analysis")
	{
		analysisGroup.GET("/services/:name", analysis.AnalyzeService)
		analysisGroup.GET("/mesh", analysis.AnalyzeMesh)
	}

	topoGroup := api.Group("/topology")
	{
		topoGroup.GET("/diagram", topology.GetDiagram)
		topoGroup.GET("/bundle", topology.GetBundle)
	}

	return r
}
