package domain

// HealthStatus describes the state of a health check or a rolled-up service
type HealthStatus string

const (
	HealthPassing  HealthStatus = "passing"
	HealthWarning  HealthStatus = "warning"
	HealthCritical HealthStatus = "critical"
	HealthUnknown  HealthStatus = "unknown"
)

// IsFailing reports whether the status counts as a failing check
func (s HealthStatus) IsFailing() bool {
	return s == HealthWarning || s == HealthCritical
}

// ParseHealthStatus maps registry status strings onto HealthStatus.
// Anything unrecognised becomes HealthUnknown.
func ParseHealthStatus(s string) HealthStatus {
	switch HealthStatus(s) {
	case HealthPassing, HealthWarning, HealthCritical:
		return HealthStatus(s)
	default:
		return HealthUnknown
	}
}

// HealthCheck is a single probe result reported by the registry
type HealthCheck struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Status      HealthStatus `json:"status"`
	Output      string       `json:"output"`
	ServiceID   string       `json:"service_id,omitempty"`
	ServiceName string       `json:"service_name,omitempty"`
}

// ServiceHealth is the worst-case rollup of a service's checks
type ServiceHealth struct {
	Status HealthStatus  `json:"status"`
	Checks []HealthCheck `json:"checks"`
}

// ServiceCheckCount pairs a service name with its number of failing checks
type ServiceCheckCount struct {
	Service string `json:"service"`
	Count   int    `json:"count"`
}

// HealthSummary aggregates check counts across the registry
type HealthSummary struct {
	Total                  int                 `json:"total"`
	Passing                int                 `json:"passing"`
	Warning                int                 `json:"warning"`
	Critical               int                 `json:"critical"`
	Unknown                int                 `json:"unknown"`
	OverallStatus          HealthStatus        `json:"overall_status"`
	FailingChecksByService []ServiceCheckCount `json:"failing_checks_by_service"`
}

// PatternReport describes one failure signature found in check output
type PatternReport struct {
	Type             string   `json:"type"`
	Count            int      `json:"count"`
	AffectedServices []string `json:"affected_services"`
}

// Severity is the urgency bucket derived from a check status
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)
