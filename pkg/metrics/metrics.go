package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UpstreamRequests counts outbound calls by upstream and outcome (ok|error|open).
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinevibe_upstream_requests_total",
			Help: "Outbound requests to metadata and LLM providers",
		},
		[]string{"upstream", "outcome"},
	)

	UpstreamRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinevibe_upstream_retries_total",
			Help: "Retried outbound attempts",
		},
		[]string{"upstream"},
	)

	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cinevibe_upstream_request_duration_seconds",
			Help:    "Outbound request latency including retries",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"upstream"},
	)

	// TrendingCache counts cache reads by result (hit|miss|stale|refresh_failed).
	TrendingCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinevibe_trending_cache_total",
			Help: "Trending cache lookups",
		},
		[]string{"result"},
	)

	RecommendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cinevibe_recommend_duration_seconds",
			Help:    "End to end recommendation latency",
			Buckets: []float64{0.5, 1, 2, 4, 8, 15, 30, 60},
		},
	)

	// RecommendMovies counts returned movies by source (enriched|supplemented).
	RecommendMovies = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinevibe_recommend_movies_total",
			Help: "Movies returned by the recommendation pipeline",
		},
		[]string{"source"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinevibe_http_requests_total",
			Help: "Inbound API requests",
		},
		[]string{"method", "route", "status"},
	)

	LLMTokens = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinevibe_llm_tokens_total",
			Help: "Tokens reported by the LLM provider",
		},
		[]string{"kind"},
	)
)

// ObserveTokens records a usage report.
func ObserveTokens(u TokenUsage) {
	if u.IsZero() {
		return
	}
	LLMTokens.WithLabelValues("prompt").Add(float64(u.PromptTokens))
	LLMTokens.WithLabelValues("completion").Add(float64(u.CompletionTokens))
}
