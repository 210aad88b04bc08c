package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var Observer = &Metrics{
	prometheus: NewPrometheusMetrics(),
}

func init() {
	prometheus.MustRegister(
		Observer.prometheus.Embeddings,
		Observer.prometheus.Cache,
		Observer.prometheus.Images,
	)
}

type Metrics struct {
	prometheus Prometheus
}

// Embedding records the duration of an embedding computation.
func (m *Metrics) Embedding(method string, d time.Duration) {
	m.prometheus.Embeddings.WithLabelValues(method).Observe(d.Seconds())
}

// Cache records an embedding cache lookup.
func (m *Metrics) Cache(method string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.prometheus.Cache.WithLabelValues(method, result).Inc()
}

// Images records the outcome of an image materialization.
func (m *Metrics) Images(written, skipped int) {
	m.prometheus.Images.WithLabelValues("written").Add(float64(written))
	m.prometheus.Images.WithLabelValues("skipped").Add(float64(skipped))
}

// Handler exposes the registered metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
