// Package topology turns raw registry records into services with rolled-up
// health and infers the connections between them.
package topology

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/meshscope/backend-go/internal/domain"
	"github.com/meshscope/backend-go/internal/health"
	"github.com/meshscope/backend-go/internal/observability"
	"github.com/meshscope/backend-go/internal/registry"
)

const (
	defaultConcurrency = 8

	metaUpstreamServices = "upstream_services"
	metaProtocol         = "protocol"

	intentionWildcard = "*"

	protocolTCP  = "tcp"
	protocolHTTP = "http"

	tierIntentions = "intentions"
	tierMetadata   = "metadata"
	tierNaming     = "naming"
)

// Option configures a Builder
type Option func(*Builder)

// WithNamingRules replaces the naming heuristic table. An empty table
// disables the heuristic.
func WithNamingRules(rules []domain.NamingRule) Option {
	return func(b *Builder) {
		b.rules = append([]domain.NamingRule{}, rules...)
	}
}

// WithConcurrency bounds the number of per-service health reads in flight
func WithConcurrency(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// Builder assembles the service topology from the registry
type Builder struct {
	reader      *registry.Reader
	logger      *zap.Logger
	metrics     *observability.Metrics
	rules       []domain.NamingRule
	concurrency int
}

// NewBuilder creates a Builder. metrics may be nil.
func NewBuilder(reader *registry.Reader, logger *zap.Logger, metrics *observability.Metrics, opts ...Option) *Builder {
	b := &Builder{
		reader:      reader,
		logger:      logger.Named("topology"),
		metrics:     metrics,
		rules:       DefaultNamingRules(),
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// ListServices returns every registered service with its health. Services
// keep registry order. A service whose checks cannot be read is reported
// with status unknown and no checks.
func (b *Builder) ListServices(ctx context.Context) []domain.Service {
	records := b.reader.Services(ctx).Value
	services := make([]domain.Service, len(records))

	var g errgroup.Group
	g.SetLimit(b.concurrency)
	for i, rec := range records {
		g.Go(func() error {
			services[i] = toService(rec, b.reader.ChecksFor(ctx, rec.ID))
			return nil
		})
	}
	_ = g.Wait()

	return services
}

func toService(rec registry.ServiceRecord, checks registry.Result[[]registry.CheckRecord]) domain.Service {
	svc := domain.Service{
		ID:      rec.ID,
		Name:    rec.Name,
		Address: rec.Address,
		Port:    rec.Port,
		Node:    rec.Node,
		Tags:    rec.Tags,
		Meta:    rec.Meta,
	}
	if svc.Tags == nil {
		svc.Tags = []string{}
	}

	if !checks.OK() {
		svc.Health = domain.ServiceHealth{Status: domain.HealthUnknown, Checks: []domain.HealthCheck{}}
		return svc
	}
	hc := health.FromRecords(checks.Value)
	svc.Health = domain.ServiceHealth{Status: health.RollupChecks(hc), Checks: hc}
	return svc
}

// ListConnections infers the connection graph. Mesh intentions are
// authoritative; only when there are none do the metadata and naming
// heuristics run. Every edge except blocked ones is then scored.
func (b *Builder) ListConnections(ctx context.Context) []domain.Connection {
	conns := b.fromIntentions(ctx)
	b.metrics.RecordInferred(tierIntentions, len(conns))

	if len(conns) == 0 {
		records := b.reader.Services(ctx).Value

		declared := fromMetadata(records)
		b.metrics.RecordInferred(tierMetadata, len(declared))

		named := fromNamingRules(records, b.rules)
		b.metrics.RecordInferred(tierNaming, len(named))

		conns = append(declared, named...)
		b.logger.Debug("inferred connections from heuristics",
			zap.Int("metadata", len(declared)),
			zap.Int("naming", len(named)),
		)
	}

	for i := range conns {
		ScoreConnection(&conns[i])
	}
	return conns
}

// fromIntentions turns intentions into edges. Intentions arrive highest
// precedence first, so the first intention naming a pair decides it. A "*"
// source or destination is expanded to every registered service name; if
// services cannot be read, wildcard intentions are dropped.
func (b *Builder) fromIntentions(ctx context.Context) []domain.Connection {
	res := b.reader.Intentions(ctx)

	var names []string
	for _, in := range res.Value {
		if in.Source == intentionWildcard || in.Destination == intentionWildcard {
			names = serviceNames(b.reader.Services(ctx).Value)
			break
		}
	}

	conns := make([]domain.Connection, 0, len(res.Value))
	seen := make(map[[2]string]bool)
	for _, in := range res.Value {
		status := domain.ConnAllowed
		if strings.EqualFold(in.Action, registry.ActionDeny) {
			status = domain.ConnBlocked
		}
		for _, src := range expandWildcard(in.Source, names) {
			for _, dst := range expandWildcard(in.Destination, names) {
				key := [2]string{src, dst}
				if src == dst || seen[key] {
					continue
				}
				seen[key] = true
				conns = append(conns, domain.Connection{
					Source:          src,
					Destination:     dst,
					Status:          status,
					Protocol:        protocolTCP,
					UsesServiceMesh: true,
				})
			}
		}
	}
	return conns
}

func expandWildcard(name string, names []string) []string {
	if name == intentionWildcard {
		return names
	}
	return []string{name}
}

// serviceNames returns distinct service names in registry order
func serviceNames(records []registry.ServiceRecord) []string {
	seen := make(map[string]bool, len(records))
	var names []string
	for _, r := range records {
		if !seen[r.Name] {
			seen[r.Name] = true
			names = append(names, r.Name)
		}
	}
	return names
}

func fromMetadata(records []registry.ServiceRecord) []domain.Connection {
	var conns []domain.Connection
	for _, src := range records {
		declared, ok := src.Meta[metaUpstreamServices]
		if !ok {
			continue
		}
		protocol := src.Meta[metaProtocol]
		if protocol == "" {
			protocol = protocolHTTP
		}

		for _, name := range strings.Split(declared, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			for _, dst := range records {
				if dst.Name != name {
					continue
				}
				conns = append(conns, domain.Connection{
					Source:      src.Name,
					Destination: dst.Name,
					Status:      domain.ConnInferred,
					Protocol:    protocol,
				})
			}
		}
	}
	return conns
}

func fromNamingRules(records []registry.ServiceRecord, rules []domain.NamingRule) []domain.Connection {
	if len(rules) == 0 {
		return nil
	}

	var conns []domain.Connection
	for i, src := range records {
		for j, dst := range records {
			if i == j {
				continue
			}
			for range matchRules(rules, src.Name, dst.Name) {
				conns = append(conns, domain.Connection{
					Source:      src.Name,
					Destination: dst.Name,
					Status:      domain.ConnInferred,
					Protocol:    protocolHTTP,
				})
			}
		}
	}
	return conns
}

// Metrics returns the simulated metrics of the named service
func (b *Builder) Metrics(ctx context.Context, name string) (*domain.ServiceMetrics, error) {
	res := b.reader.Services(ctx)
	if !res.OK() {
		return nil, fmt.Errorf("metrics for %s: %w: %w", name, domain.ErrMetricsUnavailable, res.Err)
	}
	for _, rec := range res.Value {
		if rec.Name == name {
			m := SimulateServiceMetrics(name)
			return &m, nil
		}
	}
	return nil, fmt.Errorf("metrics for %s: %w", name, domain.ErrServiceNotFound)
}

// ServiceDetails returns the first service instance named name together
// with the connections touching that name
func (b *Builder) ServiceDetails(ctx context.Context, name string) (*domain.ServiceDetails, error) {
	services := b.ListServices(ctx)

	var svc *domain.Service
	for i := range services {
		if services[i].Name == name {
			svc = &services[i]
			break
		}
	}
	if svc == nil {
		return nil, fmt.Errorf("service %s: %w", name, domain.ErrServiceNotFound)
	}

	return Details(*svc, b.ListConnections(ctx)), nil
}

// Details builds the derived view of svc over conns
func Details(svc domain.Service, conns []domain.Connection) *domain.ServiceDetails {
	d := &domain.ServiceDetails{
		Service:  svc,
		Incoming: []domain.Connection{},
		Outgoing: []domain.Connection{},
	}

	for _, c := range conns {
		if c.Destination == svc.Name {
			d.Incoming = append(d.Incoming, c)
			d.HasFailingConnections = d.HasFailingConnections || c.Status.IsFailing()
		}
		if c.Source == svc.Name {
			d.Outgoing = append(d.Outgoing, c)
			d.HasFailingConnections = d.HasFailingConnections || c.Status.IsFailing()
		}
	}

	d.FailingCheckCount = len(health.Failing(svc.Health.Checks))
	d.HasFailingHealthChecks = d.FailingCheckCount > 0
	d.IncomingCount = len(d.Incoming)
	d.OutgoingCount = len(d.Outgoing)
	return d
}
