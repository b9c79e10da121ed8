// Package metrics holds the prometheus collectors for the recipe service.
// All methods are safe to call on a nil *Metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics handles Prometheus metrics collection
type Metrics struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	generationTotal    *prometheus.CounterVec
	generationDuration prometheus.Histogram
	recipesSavedTotal  prometheus.Counter
	recipesListedTotal prometheus.Counter
	rateLimitedTotal   prometheus.Counter
}

// New registers the collectors on reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status_code"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		generationTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recipe_generation_requests_total",
				Help: "Recipe generation attempts by outcome",
			},
			[]string{"outcome"},
		),
		generationDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "recipe_generation_upstream_duration_seconds",
				Help:    "Latency of the recipe generation webhook",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
			},
		),
		recipesSavedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "recipes_saved_total",
				Help: "Total number of recipes saved",
			},
		),
		recipesListedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "recipes_listed_total",
				Help: "Total number of saved-recipe listings served",
			},
		),
		rateLimitedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "recipe_generation_rate_limited_total",
				Help: "Generation requests rejected by the rate limiter",
			},
		),
	}
}

// RecordRequest records one completed HTTP request
func (m *Metrics) RecordRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordGeneration records one generation attempt. duration is zero when the
// webhook was never called.
func (m *Metrics) RecordGeneration(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.generationTotal.WithLabelValues(outcome).Inc()
	if duration > 0 {
		m.generationDuration.Observe(duration.Seconds())
	}
}

func (m *Metrics) RecipeSaved() {
	if m == nil {
		return
	}
	m.recipesSavedTotal.Inc()
}

func (m *Metrics) RecipesListed() {
	if m == nil {
		return
	}
	m.recipesListedTotal.Inc()
}

func (m *Metrics) RateLimited() {
	if m == nil {
		return
	}
	m.rateLimitedTotal.Inc()
}
