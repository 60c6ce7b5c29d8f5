package domain

// ServiceMetrics is a simulated resource and traffic profile for a service.
// Values are derived from the service name, not collected from telemetry.
type ServiceMetrics struct {
	Service      string              `json:"service"`
	Simulated    bool                `json:"simulated"`
	CPU          CPUMetrics          `json:"cpu"`
	Memory       MemoryMetrics       `json:"memory"`
	Network      NetworkMetrics      `json:"network"`
	Requests     RequestMetrics      `json:"requests"`
	ResponseTime ResponseTimeMetrics `json:"response_time"`
}

type CPUMetrics struct {
	Usage float64 `json:"usage"`
	Cores int     `json:"cores"`
}

type MemoryMetrics struct {
	UsedMB  float64 `json:"used_mb"`
	TotalMB float64 `json:"total_mb"`
}

// UsageRatio returns used/total memory, or 0 when total is unknown
func (m MemoryMetrics) UsageRatio() float64 {
	if m.TotalMB <= 0 {
		return 0
	}
	return m.UsedMB / m.TotalMB
}

type NetworkMetrics struct {
	BytesIn           int64 `json:"bytes_in"`
	BytesOut          int64 `json:"bytes_out"`
	ActiveConnections int   `json:"active_connections"`
}

type RequestMetrics struct {
	RatePerSecond float64 `json:"rate_per_second"`
	ErrorRate     float64 `json:"error_rate"`
}

// ResponseTimeMetrics holds latency percentiles in milliseconds
type ResponseTimeMetrics struct {
	P50 float64 `json:"p50"`
	P90 float64 `json:"p90"`
	P99 float64 `json:"p99"`
}
