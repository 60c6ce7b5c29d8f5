package health

import (
	"github.com/meshscope/backend-go/internal/domain"
	"github.com/meshscope/backend-go/internal/registry"
)

// FromRecord converts a raw registry check into a domain check
func FromRecord(r registry.CheckRecord) domain.HealthCheck {
	return domain.HealthCheck{
		ID:          r.ID,
		Name:        r.Name,
		Status:      domain.ParseHealthStatus(r.Status),
		Output:      r.Output,
		ServiceID:   r.ServiceID,
		ServiceName: r.ServiceName,
	}
}

// FromRecords converts a slice of raw registry checks
func FromRecords(records []registry.CheckRecord) []domain.HealthCheck {
	checks := make([]domain.HealthCheck, 0, len(records))
	for _, r := range records {
		checks = append(checks, FromRecord(r))
	}
	return checks
}
