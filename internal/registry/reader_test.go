package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/meshscope/backend-go/internal/domain"
	"github.com/meshscope/backend-go/internal/observability"
)

// stubGateway implements Gateway for testing
type stubGateway struct {
	services      []ServiceRecord
	checks        []CheckRecord
	intentions    []IntentionRecord
	servicesErr   error
	checksErr     error
	intentionsErr error
}

func (g *stubGateway) ListServices(ctx context.Context) ([]ServiceRecord, error) {
	return g.services, g.servicesErr
}

func (g *stubGateway) HealthChecksFor(ctx context.Context, serviceID string) ([]CheckRecord, error) {
	if g.checksErr != nil {
		return nil, g.checksErr
	}
	var out []CheckRecord
	for _, c := range g.checks {
		if c.ServiceID == serviceID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (g *stubGateway) AllHealthChecks(ctx context.Context) ([]CheckRecord, error) {
	return g.checks, g.checksErr
}

func (g *stubGateway) ListIntentions(ctx context.Context) ([]IntentionRecord, error) {
	return g.intentions, g.intentionsErr
}

func TestReaderSuccess(t *testing.T) {
	gw := &stubGateway{
		services: []ServiceRecord{{ID: "web-1", Name: "web"}},
		checks:   []CheckRecord{{ID: "c1", Status: "passing", ServiceID: "web-1"}},
	}
	r := NewReader(gw, zaptest.NewLogger(t), nil)

	services := r.Services(context.Background())
	require.True(t, services.OK())
	assert.Len(t, services.Value, 1)

	checks := r.ChecksFor(context.Background(), "web-1")
	require.True(t, checks.OK())
	assert.Len(t, checks.Value, 1)
}

func TestReaderDegradesToEmpty(t *testing.T) {
	gw := &stubGateway{
		servicesErr:   errors.New("connection refused"),
		checksErr:     errors.New("connection refused"),
		intentionsErr: errors.New("403 permission denied"),
	}
	r := NewReader(gw, zaptest.NewLogger(t), nil)
	ctx := context.Background()

	services := r.Services(ctx)
	assert.False(t, services.OK())
	assert.NotNil(t, services.Value)
	assert.Empty(t, services.Value)
	assert.True(t, errors.Is(services.Err, domain.ErrBackendUnavailable))
	assert.Contains(t, services.Err.Error(), "list_services")

	assert.Empty(t, r.AllChecks(ctx).Value)
	assert.Empty(t, r.ChecksFor(ctx, "web-1").Value)

	intentions := r.Intentions(ctx)
	assert.False(t, intentions.OK())
	assert.Empty(t, intentions.Value)
}

func TestReaderNilBecomesEmpty(t *testing.T) {
	r := NewReader(&stubGateway{}, zaptest.NewLogger(t), nil)

	res := r.Intentions(context.Background())
	assert.True(t, res.OK())
	assert.NotNil(t, res.Value)
	assert.Empty(t, res.Value)
}

func TestReaderUnsupportedIntentions(t *testing.T) {
	r := NewReader(&stubGateway{intentionsErr: domain.ErrIntentionsUnsupported}, zaptest.NewLogger(t), nil)

	res := r.Intentions(context.Background())
	assert.False(t, res.OK())
	assert.True(t, errors.Is(res.Err, domain.ErrIntentionsUnsupported))
}

func TestReaderRecordsMetrics(t *testing.T) {
	m := observability.NewMetricsWith(prometheus.NewRegistry())
	gw := &stubGateway{servicesErr: errors.New("timeout")}
	r := NewReader(gw, zaptest.NewLogger(t), m)

	r.Services(context.Background())
	r.AllChecks(context.Background())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.GatewayCallsTotal.WithLabelValues("list_services", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GatewayCallsTotal.WithLabelValues("all_health_checks", "success")))
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open("zookeeper", Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnknownBackend))
}

func TestOpenFileBackendRequiresPath(t *testing.T) {
	_, err := Open(BackendFile, Options{})
	assert.Error(t, err)

	gw, err := Open(BackendFile, Options{File: "registry.yaml"})
	require.NoError(t, err)
	assert.IsType(t, &FileGateway{}, gw)
}

func TestReaderRateLimit(t *testing.T) {
	gw := &stubGateway{services: []ServiceRecord{{ID: "api-1", Name: "api"}}}
	r := NewReader(gw, zaptest.NewLogger(t), nil, WithRateLimit(1000, 5))

	res := r.Services(context.Background())
	require.True(t, res.OK())
	assert.Len(t, res.Value, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res = r.Services(ctx)
	assert.False(t, res.OK())
	assert.Empty(t, res.Value)
	assert.ErrorIs(t, res.Err, domain.ErrBackendUnavailable)
	assert.ErrorIs(t, res.Err, context.Canceled)
}
