package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshscope/backend-go/internal/domain"
)

func summaryWith(status domain.HealthStatus, critical, warning int) domain.HealthSummary {
	return domain.HealthSummary{
		Total:                  critical + warning,
		Critical:               critical,
		Warning:                warning,
		OverallStatus:          status,
		FailingChecksByService: []domain.ServiceCheckCount{},
	}
}

func TestAnalyzeMeshNoConnections(t *testing.T) {
	services := []domain.Service{
		svc("api", domain.HealthPassing),
		svc("db", domain.HealthPassing),
		svc("api", domain.HealthPassing),
	}

	tests := []struct {
		name         string
		summary      domain.HealthSummary
		wantSentinel bool
	}{
		{"passing", summaryWith(domain.HealthPassing, 0, 0), true},
		{"warning", summaryWith(domain.HealthWarning, 0, 1), false},
		{"critical", summaryWith(domain.HealthCritical, 2, 0), false},
		{"unknown", summaryWith(domain.HealthUnknown, 0, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			topo := &fakeTopology{services: services}
			m := newTestAnalyzer(t, topo, fakeHealth{summary: tt.summary}).AnalyzeServiceMesh(context.Background())

			assert.Equal(t, []string{"api", "db"}, m.IsolatedServices)
			assert.Empty(t, m.MostConnected)
			assert.Equal(t, 3, m.ServiceCount)
			assert.Equal(t, 0, m.ConnectionCount)
			if tt.wantSentinel {
				assert.Equal(t, []string{noIssues}, m.Issues)
				assert.Equal(t, []string{keepMonitoring}, m.Recommendations)
			} else {
				assert.NotContains(t, m.Issues, noIssues)
				assert.NotContains(t, m.Recommendations, keepMonitoring)
			}
		})
	}
}

func TestAnalyzeMeshUnknownHealth(t *testing.T) {
	topo := &fakeTopology{services: []domain.Service{svc("api", domain.HealthUnknown)}}

	m := newTestAnalyzer(t, topo, fakeHealth{summary: summaryWith(domain.HealthUnknown, 0, 0)}).
		AnalyzeServiceMesh(context.Background())

	assert.Equal(t, []string{"Health data unavailable"}, m.Issues)
	assert.Contains(t, m.Summary, "overall health is unknown")
}

func TestAnalyzeMeshIsolation(t *testing.T) {
	topo := &fakeTopology{
		services: []domain.Service{svc("a", domain.HealthPassing), svc("b", domain.HealthPassing), svc("c", domain.HealthPassing)},
		conns:    []domain.Connection{conn("a", "b", domain.ConnHealthy)},
	}

	m := newTestAnalyzer(t, topo, fakeHealth{summary: summaryWith(domain.HealthPassing, 0, 0)}).
		AnalyzeServiceMesh(context.Background())

	assert.Equal(t, []string{"c"}, m.IsolatedServices)
	assert.Equal(t, []string{noIssues}, m.Issues)
}

func TestAnalyzeMeshMostConnected(t *testing.T) {
	topo := &fakeTopology{
		services: []domain.Service{
			svc("leaf", domain.HealthPassing),
			svc("hub1", domain.HealthPassing),
			svc("hub2", domain.HealthPassing),
			svc("a", domain.HealthPassing),
			svc("b", domain.HealthPassing),
		},
		conns: []domain.Connection{
			conn("hub1", "a", domain.ConnHealthy),
			conn("hub1", "b", domain.ConnHealthy),
			conn("hub1", "b", domain.ConnHealthy),
			conn("leaf", "hub1", domain.ConnHealthy),
			conn("hub2", "a", domain.ConnHealthy),
			conn("hub2", "b", domain.ConnHealthy),
			conn("hub2", "leaf", domain.ConnHealthy),
		},
	}

	m := newTestAnalyzer(t, topo, fakeHealth{summary: summaryWith(domain.HealthPassing, 0, 0)}).
		AnalyzeServiceMesh(context.Background())

	// hub1: out {a,b} + in from leaf = 3; hub2: out {a,b,leaf} = 3;
	// a and b: in from hub1 and hub2 = 2; leaf: out {hub1} + in from hub2 = 2
	assert.Equal(t, []ServiceDegree{
		{Service: "hub1", Degree: 3},
		{Service: "hub2", Degree: 3},
	}, m.MostConnected)
	assert.Empty(t, m.IsolatedServices)
}

func TestAnalyzeMeshMostConnectedCapsAtThree(t *testing.T) {
	var services []domain.Service
	var conns []domain.Connection
	for _, hub := range []string{"h1", "h2", "h3", "h4"} {
		services = append(services, svc(hub, domain.HealthPassing))
		for _, leaf := range []string{"x", "y", "z"} {
			conns = append(conns, conn(hub, leaf, domain.ConnHealthy))
		}
	}

	m := newTestAnalyzer(t, &fakeTopology{services: services, conns: conns},
		fakeHealth{summary: summaryWith(domain.HealthPassing, 0, 0)}).AnalyzeServiceMesh(context.Background())

	require.Len(t, m.MostConnected, 3)
	assert.Equal(t, []ServiceDegree{
		{Service: "h1", Degree: 3},
		{Service: "h2", Degree: 3},
		{Service: "h3", Degree: 3},
	}, m.MostConnected)
}

func TestAnalyzeMeshFailingConnections(t *testing.T) {
	tests := []struct {
		name  string
		conns []domain.Connection
		issue string
	}{
		{
			name: "three pairs listed in full",
			conns: []domain.Connection{
				conn("a", "b", domain.ConnDegraded),
				conn("a", "b", domain.ConnFailing),
				conn("b", "c", domain.ConnBlocked),
				conn("c", "d", domain.ConnFailing),
				conn("d", "a", domain.ConnWarning),
			},
			issue: "3 failing connection(s): a→b, b→c, c→d",
		},
		{
			name: "more than three pairs truncated",
			conns: []domain.Connection{
				conn("a", "b", domain.ConnDegraded),
				conn("b", "c", domain.ConnDegraded),
				conn("c", "d", domain.ConnDegraded),
				conn("d", "e", domain.ConnDegraded),
				conn("e", "a", domain.ConnDegraded),
			},
			issue: "5 failing connection(s): a→b, b→c, c→d and others",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			topo := &fakeTopology{services: []domain.Service{svc("a", domain.HealthPassing)}, conns: tt.conns}
			m := newTestAnalyzer(t, topo, fakeHealth{summary: summaryWith(domain.HealthCritical, 1, 0)}).
				AnalyzeServiceMesh(context.Background())

			require.NotEmpty(t, m.Issues)
			assert.Equal(t, tt.issue, m.Issues[0])
			assert.Equal(t, "1 critical health check(s)", m.Issues[1])
			assertNoDuplicates(t, m.Recommendations)
		})
	}
}
