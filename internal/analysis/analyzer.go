// Package analysis turns topology and health data into issue and
// recommendation lists for a single service or the whole mesh.
package analysis

import (
	"context"

	"go.uber.org/zap"

	"github.com/meshscope/backend-go/internal/domain"
	"github.com/meshscope/backend-go/internal/observability"
)

// Topology is the view of the service graph the analyzer needs
type Topology interface {
	ListServices(ctx context.Context) []domain.Service
	ListConnections(ctx context.Context) []domain.Connection
	Metrics(ctx context.Context, name string) (*domain.ServiceMetrics, error)
}

// HealthSource provides the registry-wide health summary
type HealthSource interface {
	Summary(ctx context.Context) domain.HealthSummary
}

const (
	noIssues           = "No issues detected"
	keepMonitoring     = "Continue monitoring service health"
	operationService   = "service"
	operationMesh      = "mesh"
	failingPairListMax = 3
)

// Analyzer combines topology and health into findings
type Analyzer struct {
	topology Topology
	health   HealthSource
	logger   *zap.Logger
	metrics  *observability.Metrics
}

// NewAnalyzer creates an Analyzer. metrics may be nil.
func NewAnalyzer(topology Topology, health HealthSource, logger *zap.Logger, metrics *observability.Metrics) *Analyzer {
	return &Analyzer{
		topology: topology,
		health:   health,
		logger:   logger.Named("analysis"),
		metrics:  metrics,
	}
}

// findings accumulates issues as-is and recommendations without repeats
type findings struct {
	issues          []string
	recommendations []string
	seen            map[string]bool
}

func (f *findings) add(issue, recommendation string) {
	if issue != "" {
		f.issues = append(f.issues, issue)
	}
	f.recommend(recommendation)
}

func (f *findings) recommend(recommendation string) {
	if recommendation == "" {
		return
	}
	if f.seen == nil {
		f.seen = make(map[string]bool)
	}
	if f.seen[recommendation] {
		return
	}
	f.seen[recommendation] = true
	f.recommendations = append(f.recommendations, recommendation)
}

// result returns the collected lists, or the no-issues sentinel when
// nothing was found. detected is the number of real issues.
func (f *findings) result() (issues, recommendations []string, detected int) {
	if len(f.issues) == 0 {
		return []string{noIssues}, []string{keepMonitoring}, 0
	}
	if f.recommendations == nil {
		f.recommendations = []string{}
	}
	return f.issues, f.recommendations, len(f.issues)
}
