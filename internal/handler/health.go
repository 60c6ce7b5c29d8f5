package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meshscope/backend-go/internal/health"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	classifier *health.Classifier
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(classifier *health.Classifier) *HealthHandler {
	return &HealthHandler{classifier: classifier}
}

// GetSummary returns check counts by status
func (h *HealthHandler) GetSummary(c *gin.Context) {
	c.JSON(http.StatusOK, h.classifier.Summary(c.Request.Context()))
}

// GetPatterns returns failing checks grouped by failure signature
func (h *HealthHandler) GetPatterns(c *gin.Context) {
	c.JSON(http.StatusOK, h.classifier.ClassifyAll(c.Request.Context()))
}

// DiagnoseChecks returns a diagnosis for every failing check
func (h *HealthHandler) DiagnoseChecks(c *gin.Context) {
	c.JSON(http.StatusOK, h.classifier.DiagnoseFailing(c.Request.Context()))
}
