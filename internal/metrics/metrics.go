// Package metrics exposes Prometheus instrumentation for the aggregation
// pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder is the interface the aggregator reports through. A nil-safe no-op
// implementation exists for tests.
type Recorder interface {
	RecordFetchSuccess(source string, articles int)
	RecordFetchFailure(source string)
	RecordFetchLatency(source string, d time.Duration)
	RecordCacheHit()
	RecordCacheMiss()
}

// Collector implements Recorder on Prometheus metrics.
type Collector struct {
	fetchSuccess *prometheus.CounterVec
	fetchFailure *prometheus.CounterVec
	articles     *prometheus.CounterVec
	fetchLatency *prometheus.HistogramVec
	cacheHits    prometheus.Counter
	cacheMisses  prometheus.Counter
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		fetchSuccess: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newsdesk_provider_fetch_success_total",
			Help: "Successful provider fetches.",
		}, []string{"source"}),
		fetchFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newsdesk_provider_fetch_failure_total",
			Help: "Failed provider fetches.",
		}, []string{"source"}),
		articles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newsdesk_articles_fetched_total",
			Help: "Articles returned by providers after adaptation.",
		}, []string{"source"}),
		fetchLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "newsdesk_provider_fetch_latency_seconds",
			Help:    "Provider fetch latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"source"}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "newsdesk_result_cache_hits_total",
			Help: "Aggregation results served from cache.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "newsdesk_result_cache_misses_total",
			Help: "Aggregation results that required provider fetches.",
		}),
	}

	reg.MustRegister(
		c.fetchSuccess,
		c.fetchFailure,
		c.articles,
		c.fetchLatency,
		c.cacheHits,
		c.cacheMisses,
	)

	return c
}

func (c *Collector) RecordFetchSuccess(source string, articles int) {
	c.fetchSuccess.WithLabelValues(source).Inc()
	c.articles.WithLabelValues(source).Add(float64(articles))
}

func (c *Collector) RecordFetchFailure(source string) {
	c.fetchFailure.WithLabelValues(source).Inc()
}

func (c *Collector) RecordFetchLatency(source string, d time.Duration) {
	c.fetchLatency.WithLabelValues(source).Observe(d.Seconds())
}

func (c *Collector) RecordCacheHit() {
	c.cacheHits.Inc()
}

func (c *Collector) RecordCacheMiss() {
	c.cacheMisses.Inc()
}

// Noop is a Recorder that discards everything.
type Noop struct{}

func (Noop) RecordFetchSuccess(string, int)           {}
func (Noop) RecordFetchFailure(string)                {}
func (Noop) RecordFetchLatency(string, time.Duration) {}
func (Noop) RecordCacheHit()                          {}
func (Noop) RecordCacheMiss()                         {}

var (
	_ Recorder = (*Collector)(nil)
	_ Recorder = Noop{}
)
