package prometheus

import (
	"strconv"
	"time"
)

// AppMetrics holds every chemidr instrument.
type AppMetrics struct {
	// HTTP surface
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec

	// Remote lookups (PubChem PUG-REST, Entrez)
	RemoteRequestsTotal    CounterVec
	RemoteRequestDuration  HistogramVec
	RemoteRetriesTotal     CounterVec
	RemoteRetryExhausted   CounterVec
	RemoteFallbackAttempts CounterVec

	// Resolution
	ResolutionsTotal   CounterVec
	ResolutionDuration HistogramVec
	BatchCoverage      GaugeVec

	// Synonym index and caches
	SynonymIndexEntries GaugeVec
	CacheHitsTotal      CounterVec
	CacheMissesTotal    CounterVec

	// Job queue
	JobsProcessedTotal CounterVec
}

// Default Buckets
var (
	DefaultHTTPDurationBuckets   = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30}
	DefaultRemoteDurationBuckets = []float64{.05, .1, .25, .5, 1, 2, 5, 10, 30}
)

// NewAppMetrics registers all instruments on collector.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")

	m.RemoteRequestsTotal = collector.RegisterCounter("remote_requests_total", "Upstream requests by endpoint and status", "endpoint", "status_code")
	m.RemoteRequestDuration = collector.RegisterHistogram("remote_request_duration_seconds", "Upstream request latency", DefaultRemoteDurationBuckets, "endpoint")
	m.RemoteRetriesTotal = collector.RegisterCounter("remote_retries_total", "Retries on transient upstream statuses", "endpoint", "status_code")
	m.RemoteRetryExhausted = collector.RegisterCounter("remote_retry_exhausted_total", "Lookups that hit the retry cap", "endpoint")
	m.RemoteFallbackAttempts = collector.RegisterCounter("remote_fallback_attempts_total", "Space-stripped fallback lookups", "outcome")

	m.ResolutionsTotal = collector.RegisterCounter("resolutions_total", "Resolved inputs by outcome", "outcome")
	m.ResolutionDuration = collector.RegisterHistogram("resolution_duration_seconds", "Per-input resolution latency", DefaultRemoteDurationBuckets)
	m.BatchCoverage = collector.RegisterGauge("batch_coverage_ratio", "Unique composite coverage of the last batch", "source")

	m.SynonymIndexEntries = collector.RegisterGauge("synonym_index_entries", "Entries per synonym table", "table")
	m.CacheHitsTotal = collector.RegisterCounter("cache_hits_total", "Cache hits", "cache")
	m.CacheMissesTotal = collector.RegisterCounter("cache_misses_total", "Cache misses", "cache")

	m.JobsProcessedTotal = collector.RegisterCounter("jobs_processed_total", "Queued resolution jobs by status", "status")

	return m
}

// ObserveRemoteRequest records one upstream attempt.
func (m *AppMetrics) ObserveRemoteRequest(endpoint string, status int, elapsed time.Duration) {
	m.RemoteRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	m.RemoteRequestDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// IncRemoteRetry records a retry caused by status.
func (m *AppMetrics) IncRemoteRetry(endpoint string, status int) {
	m.RemoteRetriesTotal.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
}

// IncRemoteRetryExhausted records a lookup abandoned at the retry cap.
func (m *AppMetrics) IncRemoteRetryExhausted(endpoint string) {
	m.RemoteRetryExhausted.WithLabelValues(endpoint).Inc()
}

// ObserveHTTPRequest records one served API request.
func (m *AppMetrics) ObserveHTTPRequest(method, path string, status int, elapsed time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// CacheResult records a hit or miss on the named cache.
func (m *AppMetrics) CacheResult(cache string, hit bool) {
	if hit {
		m.CacheHitsTotal.WithLabelValues(cache).Inc()
		return
	}
	m.CacheMissesTotal.WithLabelValues(cache).Inc()
}

// IncRemoteFallback records a space-stripped retry and whether it resolved.
func (m *AppMetrics) IncRemoteFallback(outcome string) {
	m.RemoteFallbackAttempts.WithLabelValues(outcome).Inc()
}

// ObserveResolution records one resolved input.
func (m *AppMetrics) ObserveResolution(outcome string, elapsed time.Duration) {
	m.ResolutionsTotal.WithLabelValues(outcome).Inc()
	m.ResolutionDuration.WithLabelValues().Observe(elapsed.Seconds())
}

// SetBatchCoverage publishes the coverage ratio of the most recent batch.
func (m *AppMetrics) SetBatchCoverage(source string, ratio float64) {
	m.BatchCoverage.WithLabelValues(source).Set(ratio)
}

// SetSynonymEntries publishes the size of one synonym table.
func (m *AppMetrics) SetSynonymEntries(table string, n int) {
	m.SynonymIndexEntries.WithLabelValues(table).Set(float64(n))
}

// IncJob records a processed queue job by status.
func (m *AppMetrics) IncJob(status string) {
	m.JobsProcessedTotal.WithLabelValues(status).Inc()
}

//Personal.AI order the ending
