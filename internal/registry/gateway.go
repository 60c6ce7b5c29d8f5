package registry

import "context"

// ServiceRecord is a raw service instance as listed by the registry
type ServiceRecord struct {
	// ID is unique across the registry; Consul qualifies it as "node/serviceID"
	ID      string            `json:"id" yaml:"id"`
	Name    string            `json:"name" yaml:"name"`
	Address string            `json:"address" yaml:"address"`
	Port    int               `json:"port" yaml:"port"`
	Node    string            `json:"node" yaml:"node"`
	Tags    []string          `json:"tags" yaml:"tags"`
	Meta    map[string]string `json:"meta" yaml:"meta"`
}

// CheckRecord is a raw health check result
type CheckRecord struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Status      string `json:"status" yaml:"status"`
	Output      string `json:"output" yaml:"output"`
	ServiceID   string `json:"service_id" yaml:"service_id"`
	ServiceName string `json:"service_name" yaml:"service_name"`
}

// Intention actions
const (
	ActionAllow = "allow"
	ActionDeny  = "deny"
)

// IntentionRecord is a mesh authorization policy between two services
type IntentionRecord struct {
	Source      string `json:"source" yaml:"source"`
	Destination string `json:"destination" yaml:"destination"`
	Action      string `json:"action" yaml:"action"`
}

// Gateway is the raw read surface of a service registry.
// Implementations return errors as-is; Reader applies the degrade policy.
type Gateway interface {
	ListServices(ctx context.Context) ([]ServiceRecord, error)
	HealthChecksFor(ctx context.Context, serviceID string) ([]CheckRecord, error)
	AllHealthChecks(ctx context.Context) ([]CheckRecord, error)
	ListIntentions(ctx context.Context) ([]IntentionRecord, error)
}
