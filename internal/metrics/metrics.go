// Package metrics registers the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "statshub",
		Name:      "http_requests_total",
		Help:      "HTTP requests by route pattern, method and status.",
	}, []string{"route", "method", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "statshub",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route pattern.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	Recomputations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "statshub",
		Name:      "rank_recomputations_total",
		Help:      "Rank recomputations by outcome.",
	}, []string{"outcome"})

	RecomputeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "statshub",
		Name:      "rank_recompute_duration_seconds",
		Help:      "Time to sort and persist a league's ranks.",
		Buckets:   prometheus.DefBuckets,
	})

	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "statshub",
		Name:      "cache_lookups_total",
		Help:      "Cache lookups by cache name and result.",
	}, []string{"cache", "result"})

	SummaryRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "statshub",
		Name:      "summary_requests_total",
		Help:      "Performance summary generator calls by outcome.",
	}, []string{"outcome"})

	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "statshub",
		Name:      "events_published_total",
		Help:      "Domain events by type and outcome.",
	}, []string{"type", "outcome"})
)

func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func CacheResult(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}
