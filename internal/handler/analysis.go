package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meshscope/backend-go/internal/analysis"
)

// AnalysisHandler handles issue analysis endpoints
type AnalysisHandler struct {
	analyzer *analysis.Analyzer
}

// NewAnalysisHandler creates a new AnalysisHandler
func NewAnalysisHandler(analyzer *analysis.Analyzer) *AnalysisHandler {
	return &AnalysisHandler{analyzer: analyzer}
}

// AnalyzeService reports issues for one service
func (h *AnalysisHandler) AnalyzeService(c *gin.Context) {
	res, err := h.analyzer.AnalyzeService(c.Request.Context(), c.Param("name"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// AnalyzeMesh reports mesh-wide structure and issues
func (h *AnalysisHandler) AnalyzeMesh(c *gin.Context) {
	c.JSON(http.StatusOK, h.analyzer.AnalyzeServiceMesh(c.Request.Context()))
}
