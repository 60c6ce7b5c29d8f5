// Package diagram renders services and connections as flowchart text.
package diagram

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/meshscope/backend-go/internal/domain"
	"github.com/meshscope/backend-go/internal/health"
)

const defaultTitle = "Service Mesh"

var nonAlphaNum = regexp.MustCompile(`[^A-Za-z0-9]`)

// SanitizeID replaces every character outside [A-Za-z0-9] with '_'
func SanitizeID(s string) string {
	if s == "" {
		return "unnamed"
	}
	return nonAlphaNum.ReplaceAllString(s, "_")
}

// quote wraps a label in double quotes using the flowchart entity for
// embedded quotes
func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, "#quot;") + `"`
}

// Options controls optional decorations
type Options struct {
	IncludeHealth  bool
	IncludeMetrics bool
}

type classDef struct {
	name  string
	style string
}

type legendEntry struct {
	label string
	class string
}

// Renderer owns its class table, so instances never share styling state
type Renderer struct {
	title     string
	nodeClass map[domain.HealthStatus]string
	edgeClass map[domain.ConnectionStatus]string
	legend    []legendEntry
	classDefs []classDef
}

// Option configures a Renderer
type Option func(*Renderer)

// WithTitle sets the label of the service subgraph
func WithTitle(title string) Option {
	return func(r *Renderer) { r.title = title }
}

// NewRenderer creates a Renderer with the fixed class table
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		title: defaultTitle,
		nodeClass: map[domain.HealthStatus]string{
			domain.HealthPassing:  "passing",
			domain.HealthWarning:  "warning",
			domain.HealthCritical: "critical",
		},
		edgeClass: map[domain.ConnectionStatus]string{
			domain.ConnDegraded: "failingConn",
			domain.ConnFailing:  "failingConn",
			domain.ConnBlocked:  "failingConn",
			domain.ConnWarning:  "warningConn",
		},
		legend: []legendEntry{
			{label: "Passing", class: "passing"},
			{label: "Warning", class: "warning"},
			{label: "Critical", class: "critical"},
		},
		classDefs: []classDef{
			{name: "passing", style: "fill:#d4edda,stroke:#28a745,color:#155724"},
			{name: "warning", style: "fill:#fff3cd,stroke:#ffc107,color:#856404"},
			{name: "critical", style: "fill:#f8d7da,stroke:#dc3545,color:#721c24"},
			{name: "failingConn", style: "stroke:#dc3545,stroke-width:2px"},
			{name: "warningConn", style: "stroke:#ffc107,stroke-width:2px,stroke-dasharray:5 5"},
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type node struct {
	id       string
	name     string
	statuses []domain.HealthStatus
}

// Render produces the flowchart for services and connections. Instances
// sharing a name become one node whose health is their rollup.
func (r *Renderer) Render(services []domain.Service, conns []domain.Connection, opts Options) string {
	nodes, ids := assignIDs(services)

	var b strings.Builder
	b.WriteString("flowchart TD\n")

	fmt.Fprintf(&b, "  subgraph %s\n", quote(r.title))
	for _, n := range nodes {
		fmt.Fprintf(&b, "    %s[%s]", n.id, quote(n.name))
		if opts.IncludeHealth {
			if class, ok := r.nodeClass[nodeStatus(n.statuses)]; ok {
				fmt.Fprintf(&b, ":::%s", class)
			}
		}
		b.WriteString("\n")
	}
	b.WriteString("  end\n")

	endpoint := func(name string) string {
		if id, ok := ids[name]; ok {
			return id
		}
		return SanitizeID(name)
	}

	for _, c := range conns {
		fmt.Fprintf(&b, "  %s -->", endpoint(c.Source))
		if opts.IncludeMetrics && c.Latency != nil {
			fmt.Fprintf(&b, " |%s|", quote(fmt.Sprintf("%dms", *c.Latency)))
		}
		fmt.Fprintf(&b, " %s", endpoint(c.Destination))
		if class, ok := r.edgeClass[c.Status]; ok {
			fmt.Fprintf(&b, ":::%s", class)
		}
		b.WriteString("\n")
	}

	b.WriteString("  subgraph \"Legend\"\n")
	for _, e := range r.legend {
		fmt.Fprintf(&b, "    legend_%s[%s]:::%s\n", e.class, quote(e.label), e.class)
	}
	b.WriteString("  end\n")

	for _, cd := range r.classDefs {
		fmt.Fprintf(&b, "  classDef %s %s\n", cd.name, cd.style)
	}

	return b.String()
}

// assignIDs gives each distinct service name a node id. Names that
// sanitize to an id already taken get a _2, _3, ... suffix in first-seen
// order.
func assignIDs(services []domain.Service) ([]*node, map[string]string) {
	var nodes []*node
	byName := make(map[string]*node)
	ids := make(map[string]string)
	used := make(map[string]bool)

	for _, s := range services {
		n, ok := byName[s.Name]
		if !ok {
			base := SanitizeID(s.Name)
			id := base
			for i := 2; used[id]; i++ {
				id = fmt.Sprintf("%s_%d", base, i)
			}
			used[id] = true

			n = &node{id: id, name: s.Name}
			byName[s.Name] = n
			ids[s.Name] = id
			nodes = append(nodes, n)
		}
		n.statuses = append(n.statuses, s.Health.Status)
	}
	return nodes, ids
}

// nodeStatus rolls up instance health; a node whose instances are all
// unknown stays unknown
func nodeStatus(statuses []domain.HealthStatus) domain.HealthStatus {
	for _, s := range statuses {
		if s != domain.HealthUnknown {
			return health.Rollup(statuses...)
		}
	}
	return domain.HealthUnknown
}
