package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain/repository.Metrics using Prometheus.
type Recorder struct {
	cycleDuration prometheus.Histogram
	stageCount    *prometheus.CounterVec
	alertsTotal   *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	cacheHits     *prometheus.CounterVec
	cacheMisses   *prometheus.CounterVec
	rateLimited   *prometheus.CounterVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		cycleDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "polywatch_cycle_duration_seconds",
				Help:    "Duration of one poll cycle",
				Buckets: prometheus.DefBuckets,
			},
		),
		stageCount: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "polywatch_trades_total",
				Help: "Trades surviving each filter stage",
			},
			[]string{"stage"},
		),
		alertsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "polywatch_alerts_total",
				Help: "Alerts dispatched by severity",
			},
			[]string{"severity"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "polywatch_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		cacheHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "polywatch_cache_hits_total",
				Help: "Cache hits by cache name",
			},
			[]string{"cache"},
		),
		cacheMisses: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "polywatch_cache_misses_total",
				Help: "Cache misses by cache name",
			},
			[]string{"cache"},
		),
		rateLimited: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "polywatch_rate_limited_total",
				Help: "Throttling responses per upstream endpoint",
			},
			[]string{"endpoint"},
		),
	}
}

// RecordCycle records the duration of one completed poll cycle.
func (r *Recorder) RecordCycle(seconds float64) {
	r.cycleDuration.Observe(seconds)
}

// RecordStage records how many trades survived a filter stage.
func (r *Recorder) RecordStage(stage string, count int) {
	r.stageCount.WithLabelValues(stage).Add(float64(count))
}

// RecordAlert records one dispatched alert.
func (r *Recorder) RecordAlert(severity string) {
	r.alertsTotal.WithLabelValues(severity).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordCacheHit records a cache hit.
func (r *Recorder) RecordCacheHit(cache string) {
	r.cacheHits.WithLabelValues(cache).Inc()
}

// RecordCacheMiss records a cache miss.
func (r *Recorder) RecordCacheMiss(cache string) {
	r.cacheMisses.WithLabelValues(cache).Inc()
}

// RecordRateLimited records a 429 from an upstream endpoint.
func (r *Recorder) RecordRateLimited(endpoint string) {
	r.rateLimited.WithLabelValues(endpoint).Inc()
}
