package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meshscope/backend-go/internal/domain"
)

// writeError maps domain errors to HTTP status codes
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrServiceNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrMetricsUnavailable), errors.Is(err, domain.ErrBackendUnavailable):
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"detail": err.Error()})
}
