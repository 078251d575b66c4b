package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	eventsIngested *prometheus.CounterVec
	errorsTotal    *prometheus.CounterVec
	lastOrderValue *prometheus.GaugeVec
	latency        *prometheus.HistogramVec
	calculations   *prometheus.HistogramVec
	calcPoints     *prometheus.HistogramVec
	cacheHits      *prometheus.CounterVec
	cacheMisses    *prometheus.CounterVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		eventsIngested: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "voltmetrics_events_ingested_total",
				Help: "Total number of sale events sent to a backend",
			},
			[]string{"backend", "warehouse"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "voltmetrics_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastOrderValue: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "voltmetrics_last_order_value",
				Help: "Last recorded order value per warehouse",
			},
			[]string{"warehouse"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "voltmetrics_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		calculations: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "voltmetrics_calculation_duration_seconds",
				Help:    "Duration of engine calculations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		calcPoints: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "voltmetrics_calculation_data_points",
				Help:    "Sample sizes fed into engine calculations",
				Buckets: prometheus.ExponentialBuckets(1, 4, 8),
			},
			[]string{"operation"},
		),
		cacheHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "voltmetrics_result_cache_hits_total",
				Help: "Result cache hits per operation",
			},
			[]string{"operation"},
		),
		cacheMisses: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "voltmetrics_result_cache_misses_total",
				Help: "Result cache misses per operation",
			},
			[]string{"operation"},
		),
	}
}

// RecordEventIngested records a sale event routed to a backend.
func (r *Recorder) RecordEventIngested(backend, warehouse string) {
	r.eventsIngested.WithLabelValues(backend, warehouse).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastOrderValue records the most recent order value per warehouse.
func (r *Recorder) RecordLastOrderValue(warehouse string, value float64) {
	r.lastOrderValue.WithLabelValues(warehouse).Set(value)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// RecordCalculation records an engine calculation with its sample size.
func (r *Recorder) RecordCalculation(op string, dataPoints int, seconds float64) {
	r.calculations.WithLabelValues(op).Observe(seconds)
	r.calcPoints.WithLabelValues(op).Observe(float64(dataPoints))
}

// RecordCacheHit records a result cache hit.
func (r *Recorder) RecordCacheHit(op string) {
	r.cacheHits.WithLabelValues(op).Inc()
}

// RecordCacheMiss records a result cache miss.
func (r *Recorder) RecordCacheMiss(op string) {
	r.cacheMisses.WithLabelValues(op).Inc()
}
