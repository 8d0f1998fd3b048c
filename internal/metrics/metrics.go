package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "textify_http_requests_total",
		Help: "HTTP requests by method, route and status code.",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "textify_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	// TranslationRequestsTotal counts answered translations by where the answer came from ("cache", "api").
	TranslationRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "textify_translation_requests_total",
		Help: "Translations served, by source.",
	}, []string{"source"})

	// TranslationErrorsTotal counts upstream failures by kind ("timeout", "status", "decode", "empty", "breaker", "api").
	TranslationErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "textify_translation_errors_total",
		Help: "Upstream translation failures, by kind.",
	}, []string{"kind"})

	TranslationAPILatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "textify_translation_api_latency_seconds",
		Help:    "Latency of upstream translation calls.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	})

	TranslationCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "textify_translation_cache_hits_total",
		Help: "Translation cache hits.",
	})

	TranslationCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "textify_translation_cache_misses_total",
		Help: "Translation cache misses.",
	})

	TranslationCacheEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "textify_translation_cache_evictions_total",
		Help: "Entries evicted from the translation cache.",
	})

	TranslationCacheSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "textify_translation_cache_entries",
		Help: "Entries currently held by the translation cache.",
	})

	// UpstreamBreakerState is 0 closed, 1 half-open, 2 open.
	UpstreamBreakerState = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "textify_upstream_breaker_state",
		Help: "Circuit breaker state for the translation upstream (0 closed, 1 half-open, 2 open).",
	})

	// AuthEventsTotal counts auth outcomes ("register", "register_conflict", "login", "login_failed", "token_rejected").
	AuthEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "textify_auth_events_total",
		Help: "Authentication events, by outcome.",
	}, []string{"event"})

	UsersTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "textify_users",
		Help: "Registered users.",
	})

	HistoryRecordsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "textify_history_records",
		Help: "Saved translation records across all users.",
	})
)
