package topology

import (
	"math/rand/v2"

	"github.com/cespare/xxhash/v2"

	"github.com/meshscope/backend-go/internal/domain"
)

// errorMessages is the fixed set of failure reasons attached to degraded edges
var errorMessages = []string{
	"Connection timeout",
	"Connection refused",
	"Service unavailable",
	"Internal server error",
	"Gateway timeout",
	"Too many requests",
}

const memoryTotalMB = 1024

// stream returns a generator whose sequence depends only on key
func stream(key string) *rand.Rand {
	h := xxhash.Sum64String(key)
	return rand.New(rand.NewPCG(h, h^0x9e3779b97f4a7c15))
}

// between draws an int in [lo, hi)
func between(r *rand.Rand, lo, hi int) int {
	return lo + r.IntN(hi-lo)
}

// betweenFloat draws a float in [lo, hi)
func betweenFloat(r *rand.Rand, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}

// ScoreConnection attaches pseudo-metrics to c and re-derives its status.
// Blocked connections are left untouched.
func ScoreConnection(c *domain.Connection) {
	if c.Status == domain.ConnBlocked {
		return
	}

	r := stream(c.Source + "-" + c.Destination)
	latency := between(r, 50, 500)
	errorRate := betweenFloat(r, 0, 0.1)
	volume := between(r, 10, 1000)

	c.Latency = &latency
	c.ErrorRate = &errorRate
	c.RequestVolume = &volume

	switch {
	case errorRate > 0.05:
		c.Status = domain.ConnDegraded
		c.ErrorMessage = errorMessages[r.IntN(len(errorMessages))]
	case errorRate > 0:
		c.Status = domain.ConnWarning
	case c.Status == domain.ConnInferred:
		c.Status = domain.ConnHealthy
	}
}

// SimulateServiceMetrics derives a resource and traffic profile from the
// service name. The same name always yields the same profile.
func SimulateServiceMetrics(name string) domain.ServiceMetrics {
	r := stream(name)

	m := domain.ServiceMetrics{Service: name, Simulated: true}
	m.CPU.Usage = betweenFloat(r, 0, 0.8)
	m.CPU.Cores = between(r, 1, 5)
	m.Memory.UsedMB = betweenFloat(r, 100, 1000)
	m.Memory.TotalMB = memoryTotalMB
	m.Network.BytesIn = int64(between(r, 1000, 1_000_000))
	m.Network.BytesOut = int64(between(r, 1000, 1_000_000))
	m.Network.ActiveConnections = between(r, 1, 100)
	m.Requests.RatePerSecond = betweenFloat(r, 1, 100)
	m.Requests.ErrorRate = betweenFloat(r, 0, 0.1)
	m.ResponseTime.P50 = betweenFloat(r, 20, 120)
	m.ResponseTime.P90 = betweenFloat(r, 100, 300)
	m.ResponseTime.P99 = betweenFloat(r, 200, 700)
	return m
}
