// Package registrytest provides an in-memory registry.Gateway for tests.
package registrytest

import (
	"context"
	"sync/atomic"

	"github.com/meshscope/backend-go/internal/registry"
)

// Gateway serves fixed records. Fields must not be mutated while calls are
// in flight; the *Err fields make the matching calls fail.
type Gateway struct {
	Services   []registry.ServiceRecord
	Checks     []registry.CheckRecord
	Intentions []registry.IntentionRecord

	ServicesErr   error
	ChecksErr     error
	IntentionsErr error

	// CheckErrFor fails HealthChecksFor for the listed service IDs only
	CheckErrFor map[string]error

	ServiceCalls   atomic.Int32
	IntentionCalls atomic.Int32
}

func (g *Gateway) ListServices(ctx context.Context) ([]registry.ServiceRecord, error) {
	g.ServiceCalls.Add(1)
	if g.ServicesErr != nil {
		return nil, g.ServicesErr
	}
	return g.Services, nil
}

func (g *Gateway) HealthChecksFor(ctx context.Context, serviceID string) ([]registry.CheckRecord, error) {
	if g.ChecksErr != nil {
		return nil, g.ChecksErr
	}
	if err := g.CheckErrFor[serviceID]; err != nil {
		return nil, err
	}
	var out []registry.CheckRecord
	for _, c := range g.Checks {
		if c.ServiceID == serviceID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (g *Gateway) AllHealthChecks(ctx context.Context) ([]registry.CheckRecord, error) {
	if g.ChecksErr != nil {
		return nil, g.ChecksErr
	}
	return g.Checks, nil
}

func (g *Gateway) ListIntentions(ctx context.Context) ([]registry.IntentionRecord, error) {
	g.IntentionCalls.Add(1)
	if g.IntentionsErr != nil {
		return nil, g.IntentionsErr
	}
	return g.Intentions, nil
}

// Service builds a minimal service record
func Service(id, name string, meta map[string]string) registry.ServiceRecord {
	return registry.ServiceRecord{ID: id, Name: name, Address: "10.0.0.1", Port: 8080, Node: "node-1", Meta: meta}
}

// Check builds a check bound to a service
func Check(id, serviceID, serviceName, status, output string) registry.CheckRecord {
	return registry.CheckRecord{
		ID:          id,
		Name:        id,
		Status:      status,
		Output:      output,
		ServiceID:   serviceID,
		ServiceName: serviceName,
	}
}
