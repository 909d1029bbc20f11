// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Scan metrics
	ScansTotal      prometheus.Counter
	ScanOutcomes    *prometheus.CounterVec
	ThreatsDetected prometheus.Counter
	GatedVerdicts   prometheus.Counter
	SafetyNetHits   prometheus.Counter

	// Cache metrics
	CacheHits      prometheus.Counter
	CacheMisses    prometheus.Counter
	CacheCoalesced prometheus.Counter
	CacheSize      prometheus.Gauge
	CacheEvictions prometheus.Counter

	// Collaborator metrics
	CollaboratorLatency *prometheus.HistogramVec
	CollaboratorErrors  *prometheus.CounterVec

	// Pipeline metrics
	ClassificationDuration prometheus.Histogram
	SanctionsHits          prometheus.Counter

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Stream metrics
	StreamClients  prometheus.Gauge
	VerdictsPushed prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "chainguard"
	}

	return &Metrics{
		// Scan metrics
		ScansTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "total",
			Help:      "Total number of addresses classified",
		}),
		ScanOutcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "outcomes_total",
			Help:      "Classification outcomes by status",
		}, []string{"status"}),
		ThreatsDetected: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "threats_detected_total",
			Help:      "Total number of red verdicts",
		}),
		GatedVerdicts: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "gated_verdicts_total",
			Help:      "Total number of verdicts downgraded by tier gating",
		}),
		SafetyNetHits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "safety_net_total",
			Help:      "Total number of classifications rescued by the safety net",
		}),

		// Cache metrics
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Total number of cache hits",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Total number of cache misses",
		}),
		CacheCoalesced: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "coalesced_total",
			Help:      "Total number of requests coalesced into an in-flight classification",
		}),
		CacheSize: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "size",
			Help:      "Current number of cached verdicts",
		}),
		CacheEvictions: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "evictions_total",
			Help:      "Total number of entries evicted for capacity",
		}),

		// Collaborator metrics
		CollaboratorLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "collaborator",
			Name:      "latency_seconds",
			Help:      "Remote collaborator call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"collaborator"}),
		CollaboratorErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "collaborator",
			Name:      "errors_total",
			Help:      "Remote collaborator failures by collaborator",
		}, []string{"collaborator"}),

		// Pipeline metrics
		ClassificationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "duration_seconds",
			Help:      "End-to-end classification duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		SanctionsHits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "sanctions_hits_total",
			Help:      "Total number of sanctions registry hits",
		}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "query_errors_total",
			Help:      "Database query errors by operation",
		}, []string{"database", "operation"}),

		// Stream metrics
		StreamClients: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "clients",
			Help:      "Currently connected verdict stream clients",
		}),
		VerdictsPushed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "verdicts_pushed_total",
			Help:      "Total number of verdicts pushed to stream clients",
		}),
	}
}

// Handler returns the HTTP handler for the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordScan records one completed classification.
func RecordScan(status string, gated bool, durationSeconds float64) {
	DefaultMetrics.ScansTotal.Inc()
	DefaultMetrics.ScanOutcomes.WithLabelValues(status).Inc()
	DefaultMetrics.ClassificationDuration.Observe(durationSeconds)
	if status == "red" {
		DefaultMetrics.ThreatsDetected.Inc()
	}
	if gated {
		DefaultMetrics.GatedVerdicts.Inc()
	}
}

// RecordSanctionsHit increments the sanctions hit counter.
func RecordSanctionsHit() {
	DefaultMetrics.SanctionsHits.Inc()
}

// RecordSafetyNet increments the safety net counter.
func RecordSafetyNet() {
	DefaultMetrics.SafetyNetHits.Inc()
}

// RecordCacheHit increments the cache hit counter.
func RecordCacheHit() {
	DefaultMetrics.CacheHits.Inc()
}

// RecordCacheMiss increments the cache miss counter.
func RecordCacheMiss() {
	DefaultMetrics.CacheMisses.Inc()
}

// RecordCacheCoalesced increments the coalesced request counter.
func RecordCacheCoalesced() {
	DefaultMetrics.CacheCoalesced.Inc()
}

// UpdateCacheSize updates the cache size gauge.
func UpdateCacheSize(size int) {
	DefaultMetrics.CacheSize.Set(float64(size))
}

// RecordCacheEviction increments the eviction counter.
func RecordCacheEviction() {
	DefaultMetrics.CacheEvictions.Inc()
}

// RecordCollaboratorCall records a remote collaborator call.
func RecordCollaboratorCall(name string, seconds float64, err error) {
	DefaultMetrics.CollaboratorLatency.WithLabelValues(name).Observe(seconds)
	if err != nil {
		DefaultMetrics.CollaboratorErrors.WithLabelValues(name).Inc()
	}
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

// RecordStreamClient adjusts the connected client gauge.
func RecordStreamClient(delta int) {
	DefaultMetrics.StreamClients.Add(float64(delta))
}

// RecordVerdictPushed increments the pushed verdict counter.
func RecordVerdictPushed() {
	DefaultMetrics.VerdictsPushed.Inc()
}
