package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the search counters exposed on /metrics.
type Metrics struct {
	registry *prometheus.Registry

	SearchesStarted   prometheus.Counter
	SearchesCompleted *prometheus.CounterVec
	SeedsEvaluated    prometheus.Counter
	SeedsFound        prometheus.Counter
	ActiveSearches    prometheus.Gauge
}

// NewMetrics builds a registry with the service collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		SearchesStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "seedmaker_searches_started_total",
			Help: "Searches accepted, sync and async.",
		}),
		SearchesCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "seedmaker_searches_completed_total",
			Help: "Searches finished, by terminal status.",
		}, []string{"status"}),
		SeedsEvaluated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "seedmaker_seeds_evaluated_total",
			Help: "Candidate seeds evaluated across all searches.",
		}),
		SeedsFound: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "seedmaker_seeds_found_total",
			Help: "Matching seeds collected across all searches.",
		}),
		ActiveSearches: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "seedmaker_active_searches",
			Help: "Searches currently scanning.",
		}),
	}
	m.registry.MustRegister(
		m.SearchesStarted, m.SearchesCompleted, m.SeedsEvaluated,
		m.SeedsFound, m.ActiveSearches,
		collectors.NewGoCollector(),
	)
	return m
}

// Handler serves the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
