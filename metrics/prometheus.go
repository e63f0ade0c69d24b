// Package metrics exports search metrics to Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/hupe1980/nnsearch"
)

// Namespace prefixes every metric name.
const Namespace = "nnsearch"

var _ nnsearch.MetricsCollector = (*PrometheusCollector)(nil)

// PrometheusCollector implements nnsearch.MetricsCollector.
type PrometheusCollector struct {
	searchLatency *prometheus.HistogramVec
	searches      *prometheus.CounterVec
	results       *prometheus.HistogramVec
	requestedK    prometheus.Histogram

	batchLatency *prometheus.HistogramVec
	batchQueries *prometheus.CounterVec
}

// NewPrometheusCollector registers the search metrics on reg.
// It panics if a metric with the same name is already registered on reg.
// A nil reg selects prometheus.DefaultRegisterer.
func NewPrometheusCollector(reg prometheus.Registerer) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &PrometheusCollector{
		searchLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "search_latency_seconds",
			Help:      "Latency of single queries",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}, []string{"kind", "status"}),
		searches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "searches_total",
			Help:      "Total queries executed",
		}, []string{"kind", "status"}),
		results: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "search_results",
			Help:      "Number of real neighbors returned per query",
			Buckets:   []float64{0, 1, 5, 10, 50, 100, 500, 1000},
		}, []string{"kind"}),
		requestedK: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "knn_requested_k",
			Help:      "k requested by knn queries",
			Buckets:   []float64{1, 5, 10, 50, 100, 500, 1000},
		}),
		batchLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "batch_latency_seconds",
			Help:      "Latency of batches",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		batchQueries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "batch_queries_total",
			Help:      "Total queries submitted in batches",
		}, []string{"kind", "status"}),
	}
}

// RecordSearch implements nnsearch.MetricsCollector.
func (c *PrometheusCollector) RecordSearch(kind nnsearch.QueryKind, k, results int, d time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	c.searchLatency.WithLabelValues(kind.String(), status).Observe(d.Seconds())
	c.searches.WithLabelValues(kind.String(), status).Inc()

	if err != nil {
		return
	}
	c.results.WithLabelValues(kind.String()).Observe(float64(results))
	if kind == nnsearch.QueryKNN {
		c.requestedK.Observe(float64(k))
	}
}

// RecordBatch implements nnsearch.MetricsCollector.
func (c *PrometheusCollector) RecordBatch(kind nnsearch.QueryKind, count, failed int, d time.Duration) {
	c.batchLatency.WithLabelValues(kind.String()).Observe(d.Seconds())
	c.batchQueries.WithLabelValues(kind.String(), "success").Add(float64(count - failed))
	c.batchQueries.WithLabelValues(kind.String(), "error").Add(float64(failed))
}
