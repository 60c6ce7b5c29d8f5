package analysis

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/meshscope/backend-go/internal/domain"
	"github.com/meshscope/backend-go/internal/health"
	"github.com/meshscope/backend-go/internal/topology"
)

// ServiceAnalysis is the outcome of AnalyzeService
type ServiceAnalysis struct {
	Service         string                 `json:"service"`
	Details         *domain.ServiceDetails `json:"details"`
	Metrics         *domain.ServiceMetrics `json:"metrics,omitempty"`
	Issues          []string               `json:"issues"`
	Recommendations []string               `json:"recommendations"`
}

// httpErrorOutput matches "HTTP <method> <url>: <4xx|5xx>"; ports in the URL
// are not followed by whitespace and never match
var httpErrorOutput = regexp.MustCompile(`(?i)\bhttp\s+[a-z]+\s+\S+?:\s+[45]\d{2}\b`)

// checkHints is matched against the lower-cased output of failing checks
var checkHints = []struct {
	match          func(output string) bool
	recommendation string
}{
	{
		match:          func(o string) bool { return strings.Contains(o, "timeout") },
		recommendation: "Check service response times",
	},
	{
		match: func(o string) bool {
			return strings.Contains(o, "connection refused") || strings.Contains(o, "connect")
		},
		recommendation: "Verify service is listening on the correct port",
	},
	{
		match:          func(o string) bool { return strings.Contains(o, "disk") || strings.Contains(o, "storage") },
		recommendation: "Free up disk space",
	},
	{
		match:          httpErrorOutput.MatchString,
		recommendation: "Check application logs for errors",
	},
}

// Metric thresholds above which a service is flagged
const (
	errorRateThreshold   = 0.05
	cpuUsageThreshold    = 0.8
	memoryUsageThreshold = 0.9
	p99LatencyThreshold  = 500.0
)

// AnalyzeService reports the issues of the named service. It fails only
// when no service has that name.
func (a *Analyzer) AnalyzeService(ctx context.Context, name string) (*ServiceAnalysis, error) {
	start := time.Now()

	var svc *domain.Service
	services := a.topology.ListServices(ctx)
	for i := range services {
		if services[i].Name == name {
			svc = &services[i]
			break
		}
	}
	if svc == nil {
		return nil, fmt.Errorf("analyze %s: %w", name, domain.ErrServiceNotFound)
	}

	details := topology.Details(*svc, a.topology.ListConnections(ctx))

	var f findings
	checkFindings(&f, svc.Health.Checks)
	connectionFindings(&f, details.Incoming, "incoming", "from", func(c domain.Connection) string { return c.Source })
	connectionFindings(&f, details.Outgoing, "outgoing", "to", func(c domain.Connection) string { return c.Destination })
	meshFindings(&f, details)

	metrics, err := a.topology.Metrics(ctx, name)
	if err != nil {
		a.logger.Debug("skipping metrics analysis", zap.String("service", name), zap.Error(err))
	} else {
		metricFindings(&f, metrics)
	}

	issues, recommendations, detected := f.result()
	a.metrics.RecordAnalysis(operationService, detected, time.Since(start))

	return &ServiceAnalysis{
		Service:         name,
		Details:         details,
		Metrics:         metrics,
		Issues:          issues,
		Recommendations: recommendations,
	}, nil
}

func checkFindings(f *findings, checks []domain.HealthCheck) {
	for _, check := range health.Failing(checks) {
		f.add(fmt.Sprintf("Health check '%s' is %s", check.Name, check.Status), "")

		output := strings.ToLower(check.Output)
		for _, hint := range checkHints {
			if hint.match(output) {
				f.recommend(hint.recommendation)
			}
		}
	}
}

func connectionFindings(f *findings, conns []domain.Connection, direction, preposition string, peer func(domain.Connection) string) {
	var failing int
	var peers []string
	seen := map[string]bool{}
	for _, c := range conns {
		if !c.Status.IsFailing() {
			continue
		}
		failing++
		if p := peer(c); !seen[p] {
			seen[p] = true
			peers = append(peers, p)
		}
	}
	if failing == 0 {
		return
	}

	f.add(
		fmt.Sprintf("%d failing %s connection(s)", failing, direction),
		fmt.Sprintf("Check connectivity %s %s", preposition, strings.Join(peers, ", ")),
	)
}

func meshFindings(f *findings, details *domain.ServiceDetails) {
	var blocked int
	for _, conns := range [][]domain.Connection{details.Incoming, details.Outgoing} {
		for _, c := range conns {
			if c.UsesServiceMesh && c.Status == domain.ConnBlocked {
				blocked++
			}
		}
	}
	if blocked == 0 {
		return
	}

	f.add(
		fmt.Sprintf("%d connection(s) blocked by service mesh intentions", blocked),
		"Review service mesh intentions for unintended deny rules",
	)
}

func metricFindings(f *findings, m *domain.ServiceMetrics) {
	if m.Requests.ErrorRate > errorRateThreshold {
		f.add(
			fmt.Sprintf("High error rate: %.1f%%", m.Requests.ErrorRate*100),
			"Investigate application errors and recent deployments",
		)
	}
	if m.CPU.Usage > cpuUsageThreshold {
		f.add(
			fmt.Sprintf("High CPU usage: %.0f%%", m.CPU.Usage*100),
			"Consider scaling the service or optimizing CPU-heavy code paths",
		)
	}
	if ratio := m.Memory.UsageRatio(); ratio > memoryUsageThreshold {
		f.add(
			fmt.Sprintf("High memory usage: %.0f%%", ratio*100),
			"Check for memory leaks or increase memory limits",
		)
	}
	if m.ResponseTime.P99 > p99LatencyThreshold {
		f.add(
			fmt.Sprintf("High p99 latency: %.0fms", m.ResponseTime.P99),
			"Profile slow requests and review downstream dependencies",
		)
	}
}
