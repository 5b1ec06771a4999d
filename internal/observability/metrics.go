package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MatchesTotal     = promauto.NewCounter(prometheus.CounterOpts{Namespace: "provider_matching", Name: "matches_total", Help: "Matching calls that returned at least one match"})
	MatchLatency     = promauto.NewHistogram(prometheus.HistogramOpts{Namespace: "provider_matching", Name: "match_latency_seconds", Help: "End-to-end matching call latency"})
	CandidatesScored = promauto.NewCounter(prometheus.CounterOpts{Namespace: "provider_matching", Name: "candidates_scored_total", Help: "Candidate providers scored"})
	LocationPings    = promauto.NewCounter(prometheus.CounterOpts{Namespace: "provider_matching", Name: "location_pings_total", Help: "Provider location pings accepted"})

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "provider_matching", Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "provider_matching",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
