package prometheus

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/chemidr/internal/infrastructure/monitoring/logging"
)

func newTestCollector(t *testing.T) MetricsCollector {
	t.Helper()
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "test", Subsystem: "unit"}, logging.NewNopLogger())
	require.NoError(t, err)
	return c
}

func scrapeMetrics(t *testing.T, collector MetricsCollector) string {
	t.Helper()
	w := httptest.NewRecorder()
	collector.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestNewMetricsCollector_EmptyNamespace(t *testing.T) {
	_, err := NewMetricsCollector(CollectorConfig{}, nil)
	assert.Error(t, err)
}

func TestRegisterCounter_ScrapedAndIdempotent(t *testing.T) {
	c := newTestCollector(t)

	first := c.RegisterCounter("lookups_total", "lookups", "endpoint")
	second := c.RegisterCounter("lookups_total", "lookups", "endpoint")
	first.WithLabelValues("name").Inc()
	second.WithLabelValues("name").Add(2)

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `test_unit_lookups_total{endpoint="name"} 3`)
}

func TestRegister_TypeMismatchFallsBackToNoop(t *testing.T) {
	c := newTestCollector(t)
	c.RegisterCounter("dual", "first as counter")

	g := c.RegisterGauge("dual", "then as gauge")
	assert.NotPanics(t, func() { g.WithLabelValues().Set(4) })
}

func TestAppMetrics_RemoteInstruments(t *testing.T) {
	c := newTestCollector(t)
	m := NewAppMetrics(c)

	m.ObserveRemoteRequest("name", 200, 120*time.Millisecond)
	m.IncRemoteRetry("name", 429)
	m.IncRemoteRetry("name", 429)
	m.IncRemoteRetryExhausted("inchikey")
	m.CacheResult("resolution", true)
	m.CacheResult("resolution", false)

	reg := c.Registry()
	n, err := testutil.GatherAndCount(reg, "test_unit_remote_retries_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `test_unit_remote_retries_total{endpoint="name",status_code="429"} 2`)
	assert.Contains(t, out, `test_unit_remote_retry_exhausted_total{endpoint="inchikey"} 1`)
	assert.Contains(t, out, `test_unit_cache_hits_total{cache="resolution"} 1`)
	assert.Contains(t, out, `test_unit_cache_misses_total{cache="resolution"} 1`)
	assert.Contains(t, out, `test_unit_remote_request_duration_seconds_count{endpoint="name"} 1`)
}

func TestTimer_ObserveDuration(t *testing.T) {
	c := newTestCollector(t)
	h := c.RegisterHistogram("op_seconds", "op", nil)
	timer := NewTimer(h.WithLabelValues())
	assert.GreaterOrEqual(t, timer.ObserveDuration(), time.Duration(0))

	assert.Contains(t, scrapeMetrics(t, c), "test_unit_op_seconds_count 1")
}

//Personal.AI order the ending
