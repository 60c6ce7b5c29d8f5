package health

import "github.com/meshscope/backend-go/internal/domain"

// Rollup returns the worst status: critical beats warning beats passing.
// Unknown statuses never escalate the result.
func Rollup(statuses ...domain.HealthStatus) domain.HealthStatus {
	result := domain.HealthPassing
	for _, s := range statuses {
		switch s {
		case domain.HealthCritical:
			return domain.HealthCritical
		case domain.HealthWarning:
			result = domain.HealthWarning
		}
	}
	return result
}

// RollupChecks applies Rollup to the statuses of checks
func RollupChecks(checks []domain.HealthCheck) domain.HealthStatus {
	statuses := make([]domain.HealthStatus, 0, len(checks))
	for _, c := range checks {
		statuses = append(statuses, c.Status)
	}
	return Rollup(statuses...)
}

// Failing filters checks down to warning and critical ones
func Failing(checks []domain.HealthCheck) []domain.HealthCheck {
	var out []domain.HealthCheck
	for _, c := range checks {
		if c.Status.IsFailing() {
			out = append(out, c)
		}
	}
	return out
}
