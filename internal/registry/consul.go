package registry

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/consul/api"
)

// ConsulConfig holds connection settings for a Consul agent
type ConsulConfig struct {
	Address    string
	Token      string
	Datacenter string
}

// ConsulGateway reads services, checks and intentions from the Consul HTTP API
type ConsulGateway struct {
	client *api.Client
}

// NewConsulGateway creates a gateway on top of the official Consul client.
// Unset fields fall back to the client's CONSUL_* environment defaults.
func NewConsulGateway(cfg ConsulConfig) (*ConsulGateway, error) {
	c := api.DefaultConfig()
	if cfg.Address != "" {
		c.Address = cfg.Address
	}
	if cfg.Token != "" {
		c.Token = cfg.Token
	}
	if cfg.Datacenter != "" {
		c.Datacenter = cfg.Datacenter
	}

	client, err := api.NewClient(c)
	if err != nil {
		return nil, fmt.Errorf("consul client: %w", err)
	}
	return &ConsulGateway{client: client}, nil
}

func queryOptions(ctx context.Context) *api.QueryOptions {
	return (&api.QueryOptions{}).WithContext(ctx)
}

// ListServices expands every catalog service name into its instances
func (g *ConsulGateway) ListServices(ctx context.Context) ([]ServiceRecord, error) {
	catalog, _, err := g.client.Catalog().Services(queryOptions(ctx))
	if err != nil {
		return nil, fmt.Errorf("catalog services: %w", err)
	}

	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)

	var records []ServiceRecord
	for _, name := range names {
		entries, _, err := g.client.Catalog().Service(name, "", queryOptions(ctx))
		if err != nil {
			return nil, fmt.Errorf("catalog service %s: %w", name, err)
		}
		for _, e := range entries {
			addr := e.ServiceAddress
			if addr == "" {
				addr = e.Address
			}
			records = append(records, ServiceRecord{
				ID:      instanceID(e.Node, e.ServiceID),
				Name:    e.ServiceName,
				Address: addr,
				Port:    e.ServicePort,
				Node:    e.Node,
				Tags:    e.ServiceTags,
				Meta:    e.ServiceMeta,
			})
		}
	}
	return records, nil
}

// instanceID qualifies a service ID with its node; Consul only keeps
// service IDs unique per agent
func instanceID(node, serviceID string) string {
	if serviceID == "" {
		return ""
	}
	return node + "/" + serviceID
}

// HealthChecksFor returns the checks registered against one service
// instance. id is "node/serviceID"; a bare service ID matches
// that ID on every node.
func (g *ConsulGateway) HealthChecksFor(ctx context.Context, id string) ([]CheckRecord, error) {
	q := queryOptions(ctx)
	if node, serviceID, ok := strings.Cut(id, "/"); ok {
		q.Filter = fmt.Sprintf("ServiceID == %q and Node == %q", serviceID, node)
	} else {
		q.Filter = fmt.Sprintf("ServiceID == %q", id)
	}

	checks, _, err := g.client.Health().State(api.HealthAny, q)
	if err != nil {
		return nil, fmt.Errorf("health checks for %s: %w", id, err)
	}
	return checkRecords(checks), nil
}

// AllHealthChecks returns every node and service check in the datacenter
func (g *ConsulGateway) AllHealthChecks(ctx context.Context) ([]CheckRecord, error) {
	checks, _, err := g.client.Health().State(api.HealthAny, queryOptions(ctx))
	if err != nil {
		return nil, fmt.Errorf("health state: %w", err)
	}
	return checkRecords(checks), nil
}

// ListIntentions returns service mesh intentions. L7 intentions without a
// top-level action are reported as allow.
func (g *ConsulGateway) ListIntentions(ctx context.Context) ([]IntentionRecord, error) {
	intentions, _, err := g.client.Connect().Intentions(queryOptions(ctx))
	if err != nil {
		return nil, fmt.Errorf("connect intentions: %w", err)
	}

	records := make([]IntentionRecord, 0, len(intentions))
	for _, in := range intentions {
		action := ActionAllow
		if in.Action == api.IntentionActionDeny {
			action = ActionDeny
		}
		records = append(records, IntentionRecord{
			Source:      in.SourceName,
			Destination: in.DestinationName,
			Action:      action,
		})
	}
	return records, nil
}

func checkRecords(checks api.HealthChecks) []CheckRecord {
	records := make([]CheckRecord, 0, len(checks))
	for _, c := range checks {
		records = append(records, CheckRecord{
			ID:          c.CheckID,
			Name:        c.Name,
			Status:      c.Status,
			Output:      c.Output,
			ServiceID:   instanceID(c.Node, c.ServiceID),
			ServiceName: c.ServiceName,
		})
	}
	return records
}
