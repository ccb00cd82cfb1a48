// Package metrics counts what an extraction run does.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the run's collectors, all on a private registry.
type Metrics struct {
	PagesTotal      prometheus.Counter
	EntitiesTotal   *prometheus.CounterVec
	PageErrorsTotal *prometheus.CounterVec
	BatchDuration   prometheus.Histogram

	reg *prometheus.Registry
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		PagesTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "wikikb_pages_total",
			Help: "The total number of pages read from the dump",
		}),
		EntitiesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "wikikb_entities_total",
			Help: "The total number of entities written",
		}, []string{"kind"}),
		PageErrorsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "wikikb_page_errors_total",
			Help: "The total number of pages that failed",
		}, []string{"reason"}), // "error" or "panic"
		BatchDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "wikikb_batch_duration_seconds",
			Help:    "Time to extract and store one batch",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
		reg: reg,
	}
}

func (m *Metrics) IncPages() {
	m.PagesTotal.Inc()
}

func (m *Metrics) IncEntities(kind string) {
	m.EntitiesTotal.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncPageErrors(reason string) {
	m.PageErrorsTotal.WithLabelValues(reason).Inc()
}

// Registry is where the collectors live.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.reg
}

// Handler serves the collectors in the exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
