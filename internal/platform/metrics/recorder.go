// Package metrics はPrometheusによるメトリクス記録を提供します。
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	quoteusecase "watchlist_backend/internal/feature/quotes/usecase"
	watchlistusecase "watchlist_backend/internal/feature/watchlist/usecase"
)

const namespace = "watchlist"

// Recorder records provider, cache and migration metrics.
type Recorder struct {
	gatherer         prometheus.Gatherer
	providerAttempts *prometheus.CounterVec
	providerLatency  *prometheus.HistogramVec
	cacheLookups     *prometheus.CounterVec
	migrations       *prometheus.CounterVec
}

var (
	_ quoteusecase.Metrics              = (*Recorder)(nil)
	_ watchlistusecase.MigrationMetrics = (*Recorder)(nil)
)

// New registers the collectors on reg. A nil reg uses a fresh registry.
func New(reg *prometheus.Registry) *Recorder {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)
	return &Recorder{
		gatherer: reg,
		providerAttempts: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "provider_attempts_total",
				Help:      "Quote provider attempts by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),
		providerLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "provider_request_duration_seconds",
				Help:      "Duration of quote provider requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"provider"},
		),
		cacheLookups: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_lookups_total",
				Help:      "Quote cache lookups by result",
			},
			[]string{"result"},
		),
		migrations: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "migrations_total",
				Help:      "Session to user watchlist migrations by outcome",
			},
			[]string{"outcome"},
		),
	}
}

// ObserveProviderAttempt records one provider call.
func (r *Recorder) ObserveProviderAttempt(provider, outcome string, elapsed time.Duration) {
	r.providerAttempts.WithLabelValues(provider, outcome).Inc()
	r.providerLatency.WithLabelValues(provider).Observe(elapsed.Seconds())
}

// ObserveCacheLookup records a cache hit, stale entry, miss or error.
func (r *Recorder) ObserveCacheLookup(result string) {
	r.cacheLookups.WithLabelValues(result).Inc()
}

// ObserveMigration records a migration outcome.
func (r *Recorder) ObserveMigration(outcome string) {
	r.migrations.WithLabelValues(outcome).Inc()
}

// Handler serves the recorder's registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}
