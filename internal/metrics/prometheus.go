package metrics

import "github.com/prometheus/client_golang/prometheus"

type Prometheus struct {
	Embeddings *prometheus.HistogramVec
	Cache      *prometheus.CounterVec
	Images     *prometheus.CounterVec
}

func NewPrometheusMetrics() Prometheus {
	return Prometheus{
		Embeddings: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "embed",
				Name:      "duration_seconds",
				Help:      "time spent computing an embedding",
				Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
			}, []string{"method"}),
		Cache: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "embed",
				Name:      "cache",
				Help:      "embedding cache lookups",
			}, []string{"method", "result"}),
		Images: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "embed",
				Name:      "images",
				Help:      "materialized sample images",
			}, []string{"action"}),
	}
}
