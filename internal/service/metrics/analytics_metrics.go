package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Per-endpoint instrumentation for the analytics API, separate from the
// engine-level recorder in pkg/metrics.
var (
	AnalyticsLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "voltmetrics",
			Subsystem: "analytics",
			Name:      "latency_seconds",
			Help:      "Latency of analytics endpoints",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	AnalyticsErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "voltmetrics",
			Subsystem: "analytics",
			Name:      "errors_total",
			Help:      "Errors by analytics endpoint",
		},
		[]string{"endpoint"},
	)

	registerOnce sync.Once
)

// Register installs the collectors on the default registry. Safe to call
// from every handler constructor.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(AnalyticsLatency, AnalyticsErrors)
	})
}
