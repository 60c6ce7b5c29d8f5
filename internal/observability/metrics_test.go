package observability

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNewMetricsFields(t *testing.T) {
	m := NewMetricsWith(prometheus.NewRegistry())

	assert.NotNil(t, m.GatewayCallsTotal)
	assert.NotNil(t, m.GatewayCallDuration)
	assert.NotNil(t, m.ConnectionsInferred)
	assert.NotNil(t, m.AnalysisDurationSeconds)
	assert.NotNil(t, m.IssuesDetectedTotal)
	assert.NotNil(t, m.HTTPRequestsTotal)
	assert.NotNil(t, m.HTTPRequestDuration)
}

func TestRecordGatewayCall(t *testing.T) {
	m := NewMetricsWith(prometheus.NewRegistry())

	m.RecordGatewayCall("list_services", nil, 10*time.Millisecond)
	m.RecordGatewayCall("list_services", errors.New("boom"), time.Millisecond)
	m.RecordGatewayCall("list_services", errors.New("boom"), time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.GatewayCallsTotal.WithLabelValues("list_services", "success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.GatewayCallsTotal.WithLabelValues("list_services", "error")))
}

func TestRecordInferred(t *testing.T) {
	m := NewMetricsWith(prometheus.NewRegistry())

	m.RecordInferred("metadata", 2)
	m.RecordInferred("metadata", 0)
	m.RecordInferred("naming", 3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ConnectionsInferred.WithLabelValues("metadata")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ConnectionsInferred.WithLabelValues("naming")))
}

func TestRecordAnalysis(t *testing.T) {
	m := NewMetricsWith(prometheus.NewRegistry())

	m.RecordAnalysis("service", 4, 5*time.Millisecond)
	assert.Equal(t, 4.0, testutil.ToFloat64(m.IssuesDetectedTotal.WithLabelValues("service")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	// Should not panic
	m.RecordGatewayCall("x", nil, time.Second)
	m.RecordInferred("x", 1)
	m.RecordAnalysis("x", 1, time.Second)
}
