package analysis

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/meshscope/backend-go/internal/domain"
)

// ServiceDegree is a service with its connection count
type ServiceDegree struct {
	Service string `json:"service"`
	Degree  int    `json:"degree"`
}

// MeshAnalysis is the outcome of AnalyzeServiceMesh
type MeshAnalysis struct {
	Summary            string               `json:"summary"`
	ServiceCount       int                  `json:"service_count"`
	ConnectionCount    int                  `json:"connection_count"`
	Health             domain.HealthSummary `json:"health"`
	IsolatedServices   []string             `json:"isolated_services"`
	MostConnected      []ServiceDegree      `json:"most_connected"`
	FailingConnections []string             `json:"failing_connections"`
	Issues             []string             `json:"issues"`
	Recommendations    []string             `json:"recommendations"`
}

const (
	mostConnectedLimit     = 3
	mostConnectedMinDegree = 2
)

// AnalyzeServiceMesh reports mesh-wide structure and issues. Services,
// connections and the health summary are read concurrently and may
// reflect slightly different registry states.
func (a *Analyzer) AnalyzeServiceMesh(ctx context.Context) *MeshAnalysis {
	start := time.Now()

	var (
		services []domain.Service
		conns    []domain.Connection
		summary  domain.HealthSummary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		services = a.topology.ListServices(gctx)
		return nil
	})
	g.Go(func() error {
		conns = a.topology.ListConnections(gctx)
		return nil
	})
	g.Go(func() error {
		summary = a.health.Summary(gctx)
		return nil
	})
	_ = g.Wait()

	names := serviceNames(services)
	graph := newAdjacency(names, conns)

	m := &MeshAnalysis{
		Summary: fmt.Sprintf("Service mesh has %d services and %d connections; overall health is %s",
			len(services), len(conns), summary.OverallStatus),
		ServiceCount:       len(services),
		ConnectionCount:    len(conns),
		Health:             summary,
		IsolatedServices:   graph.isolated(names),
		MostConnected:      graph.mostConnected(),
		FailingConnections: failingPairs(conns),
	}

	var f findings
	if n := len(m.FailingConnections); n > 0 {
		listed := m.FailingConnections
		suffix := ""
		if n > failingPairListMax {
			listed = listed[:failingPairListMax]
			suffix = " and others"
		}
		f.add(
			fmt.Sprintf("%d failing connection(s): %s%s", n, strings.Join(listed, ", "), suffix),
			"Investigate failing connections between services",
		)
	}

	if summary.OverallStatus == domain.HealthUnknown {
		f.add("Health data unavailable", "Verify connectivity to the service registry")
	} else {
		if summary.Critical > 0 {
			f.add(
				fmt.Sprintf("%d critical health check(s)", summary.Critical),
				"Address critical health checks immediately",
			)
		}
		if summary.Warning > 0 {
			f.add(
				fmt.Sprintf("%d health check(s) in warning state", summary.Warning),
				"Review warning health checks before they escalate",
			)
		}
	}

	var detected int
	m.Issues, m.Recommendations, detected = f.result()
	a.metrics.RecordAnalysis(operationMesh, detected, time.Since(start))
	return m
}

// serviceNames returns distinct service names in discovery order
func serviceNames(services []domain.Service) []string {
	seen := map[string]bool{}
	names := make([]string, 0, len(services))
	for _, s := range services {
		if !seen[s.Name] {
			seen[s.Name] = true
			names = append(names, s.Name)
		}
	}
	return names
}

// adjacency maps each node to its outgoing destination set. order holds
// nodes in discovery order: known services first, then connection
// sources the registry did not list.
type adjacency struct {
	order []string
	out   map[string]map[string]bool
}

func newAdjacency(names []string, conns []domain.Connection) *adjacency {
	a := &adjacency{out: make(map[string]map[string]bool)}
	for _, n := range names {
		a.node(n)
	}
	for _, c := range conns {
		a.node(c.Source)[c.Destination] = true
	}
	return a
}

func (a *adjacency) node(name string) map[string]bool {
	set, ok := a.out[name]
	if !ok {
		set = make(map[string]bool)
		a.out[name] = set
		a.order = append(a.order, name)
	}
	return set
}

// inbound counts the other nodes whose outgoing set contains name
func (a *adjacency) inbound(name string) int {
	n := 0
	for _, other := range a.order {
		if other != name && a.out[other][name] {
			n++
		}
	}
	return n
}

func (a *adjacency) isolated(names []string) []string {
	out := []string{}
	for _, n := range names {
		if len(a.out[n]) == 0 && a.inbound(n) == 0 {
			out = append(out, n)
		}
	}
	return out
}

func (a *adjacency) mostConnected() []ServiceDegree {
	degrees := make([]ServiceDegree, 0, len(a.order))
	for _, n := range a.order {
		degrees = append(degrees, ServiceDegree{Service: n, Degree: len(a.out[n]) + a.inbound(n)})
	}
	sort.SliceStable(degrees, func(i, j int) bool {
		return degrees[i].Degree > degrees[j].Degree
	})

	top := []ServiceDegree{}
	for _, d := range degrees {
		if len(top) == mostConnectedLimit || d.Degree <= mostConnectedMinDegree {
			break
		}
		top = append(top, d)
	}
	return top
}

// failingPairs lists distinct "source→destination" pairs of failing
// connections in first-seen order
func failingPairs(conns []domain.Connection) []string {
	seen := map[string]bool{}
	pairs := []string{}
	for _, c := range conns {
		if !c.Status.IsFailing() {
			continue
		}
		p := c.Source + "→" + c.Destination
		if !seen[p] {
			seen[p] = true
			pairs = append(pairs, p)
		}
	}
	return pairs
}
