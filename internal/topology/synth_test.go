package topology

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshscope/backend-go/internal/domain"
)

func TestScoreConnectionDeterministic(t *testing.T) {
	a := domain.Connection{Source: "api", Destination: "db", Status: domain.ConnInferred}
	b := domain.Connection{Source: "api", Destination: "db", Status: domain.ConnInferred}

	ScoreConnection(&a)
	ScoreConnection(&b)

	require.NotNil(t, a.Latency)
	assert.Equal(t, *a.Latency, *b.Latency)
	assert.Equal(t, *a.ErrorRate, *b.ErrorRate)
	assert.Equal(t, *a.RequestVolume, *b.RequestVolume)
	assert.Equal(t, a.Status, b.Status)
	assert.Equal(t, a.ErrorMessage, b.ErrorMessage)
}

func TestScoreConnectionDirectional(t *testing.T) {
	seen := map[int]bool{}
	for i := range 20 {
		c := domain.Connection{Source: fmt.Sprintf("svc-%d", i), Destination: "db", Status: domain.ConnInferred}
		ScoreConnection(&c)
		seen[*c.Latency] = true
	}
	assert.Greater(t, len(seen), 1, "different pairs should not all share one latency")
}

func TestScoreConnectionRangesAndEscalation(t *testing.T) {
	for i := range 200 {
		c := domain.Connection{
			Source:      fmt.Sprintf("src-%d", i),
			Destination: fmt.Sprintf("dst-%d", i%7),
			Status:      domain.ConnAllowed,
		}
		ScoreConnection(&c)

		require.NotNil(t, c.Latency)
		assert.GreaterOrEqual(t, *c.Latency, 50)
		assert.Less(t, *c.Latency, 500)
		assert.GreaterOrEqual(t, *c.ErrorRate, 0.0)
		assert.Less(t, *c.ErrorRate, 0.1)
		assert.GreaterOrEqual(t, *c.RequestVolume, 10)
		assert.Less(t, *c.RequestVolume, 1000)

		switch {
		case *c.ErrorRate > 0.05:
			assert.Equal(t, domain.ConnDegraded, c.Status)
			assert.Contains(t, errorMessages, c.ErrorMessage)
		case *c.ErrorRate > 0:
			assert.Equal(t, domain.ConnWarning, c.Status)
			assert.Empty(t, c.ErrorMessage)
		}
	}
}

func TestScoreConnectionSkipsBlocked(t *testing.T) {
	c := domain.Connection{Source: "api", Destination: "db", Status: domain.ConnBlocked}

	ScoreConnection(&c)

	assert.Equal(t, domain.ConnBlocked, c.Status)
	assert.Nil(t, c.Latency)
	assert.Nil(t, c.ErrorRate)
	assert.Nil(t, c.RequestVolume)
}

func TestSimulateServiceMetrics(t *testing.T) {
	a := SimulateServiceMetrics("payments")
	b := SimulateServiceMetrics("payments")
	assert.Equal(t, a, b)

	for i := range 100 {
		m := SimulateServiceMetrics(fmt.Sprintf("svc-%d", i))

		assert.True(t, m.Simulated)
		assert.GreaterOrEqual(t, m.CPU.Usage, 0.0)
		assert.Less(t, m.CPU.Usage, 0.8)
		assert.GreaterOrEqual(t, m.CPU.Cores, 1)
		assert.LessOrEqual(t, m.CPU.Cores, 4)
		assert.GreaterOrEqual(t, m.Memory.UsedMB, 100.0)
		assert.Less(t, m.Memory.UsedMB, 1000.0)
		assert.Equal(t, 1024.0, m.Memory.TotalMB)
		assert.GreaterOrEqual(t, m.Network.BytesIn, int64(1000))
		assert.Less(t, m.Network.BytesOut, int64(1_000_000))
		assert.GreaterOrEqual(t, m.Network.ActiveConnections, 1)
		assert.Less(t, m.Requests.ErrorRate, 0.1)
		assert.GreaterOrEqual(t, m.ResponseTime.P50, 20.0)
		assert.Less(t, m.ResponseTime.P50, 120.0)
		assert.GreaterOrEqual(t, m.ResponseTime.P90, 100.0)
		assert.Less(t, m.ResponseTime.P90, 300.0)
		assert.GreaterOrEqual(t, m.ResponseTime.P99, 200.0)
		assert.Less(t, m.ResponseTime.P99, 700.0)
	}
}
