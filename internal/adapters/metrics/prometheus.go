package metrics

import (
	"strconv"
	"time"

	"listings-parser/internal/core/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// PrometheusMetrics реализует SearchMetricsPort.
type PrometheusMetrics struct {
	registry *prometheus.Registry

	searches *prometheus.CounterVec
	failures *prometheus.CounterVec
	listings prometheus.Histogram
	duration prometheus.Histogram
}

// NewPrometheusMetrics регистрирует метрики поиска, а также метрики Go runtime
// и процесса, в отдельном реестре.
func NewPrometheusMetrics() *PrometheusMetrics {
	m := &PrometheusMetrics{
		registry: prometheus.NewRegistry(),
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "listings",
			Name:      "searches_total",
			Help:      "Listing searches by extraction path and outcome.",
		}, []string{"path", "success"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "listings",
			Name:      "search_failures_total",
			Help:      "Failed listing searches by reason.",
		}, []string{"reason"}),
		listings: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "listings",
			Name:      "listings_per_search",
			Help:      "Number of listings returned per search.",
			Buckets:   []float64{0, 1, 3, 5, 10, 15},
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "listings",
			Name:      "search_duration_seconds",
			Help:      "End-to-end search duration.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	m.registry.MustRegister(
		m.searches, m.failures, m.listings, m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveSearch реализует SearchMetricsPort.
func (m *PrometheusMetrics) ObserveSearch(path domain.ExtractionPath, success bool, count int, took time.Duration) {
	m.searches.WithLabelValues(string(path), strconv.FormatBool(success)).Inc()
	m.listings.Observe(float64(count))
	m.duration.Observe(took.Seconds())
}

// ObserveFailure реализует SearchMetricsPort.
func (m *PrometheusMetrics) ObserveFailure(reason domain.FailureReason) {
	m.failures.WithLabelValues(string(reason)).Inc()
}

// Gatherer отдает реестр для эндпоинта /metrics.
func (m *PrometheusMetrics) Gatherer() prometheus.Gatherer {
	return m.registry
}
