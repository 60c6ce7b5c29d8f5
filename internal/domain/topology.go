package domain

// ConnectionStatus describes the state of an edge between two services
type ConnectionStatus string

const (
	ConnHealthy  ConnectionStatus = "healthy"
	ConnWarning  ConnectionStatus = "warning"
	ConnDegraded ConnectionStatus = "degraded"
	ConnFailing  ConnectionStatus = "failing"
	ConnBlocked  ConnectionStatus = "blocked"
	ConnAllowed  ConnectionStatus = "allowed"
	ConnInferred ConnectionStatus = "inferred"
)

// IsFailing reports whether the connection should be treated as broken
func (s ConnectionStatus) IsFailing() bool {
	return s == ConnDegraded || s == ConnFailing || s == ConnBlocked
}

// Service is a registered service instance enriched with its health
type Service struct {
	ID      string            `json:"id"`
	Name    string            `json:"name"`
	Address string            `json:"address"`
	Port    int               `json:"port"`
	Node    string            `json:"node"`
	Tags    []string          `json:"tags"`
	Meta    map[string]string `json:"meta,omitempty"`
	Health  ServiceHealth     `json:"health"`
}

// Connection is a directed edge between two service names.
// It is recomputed on every request and never stored.
type Connection struct {
	Source          string           `json:"source"`
	Destination     string           `json:"destination"`
	Status          ConnectionStatus `json:"status"`
	Protocol        string           `json:"protocol"`
	UsesServiceMesh bool             `json:"uses_service_mesh"`
	Latency         *int             `json:"latency,omitempty"`
	ErrorRate       *float64         `json:"error_rate,omitempty"`
	RequestVolume   *int             `json:"request_volume,omitempty"`
	ErrorMessage    string           `json:"error_message,omitempty"`
}

// ServiceDetails is a service together with the edges touching it
type ServiceDetails struct {
	Service                Service      `json:"service"`
	Incoming               []Connection `json:"incoming"`
	Outgoing               []Connection `json:"outgoing"`
	HasFailingConnections  bool         `json:"has_failing_connections"`
	HasFailingHealthChecks bool         `json:"has_failing_health_checks"`
	IncomingCount          int          `json:"incoming_count"`
	OutgoingCount          int          `json:"outgoing_count"`
	FailingCheckCount      int          `json:"failing_check_count"`
}

// NamingRule infers an edge when the source name contains Source and the
// target name contains Target
type NamingRule struct {
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
}
