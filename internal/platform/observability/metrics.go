package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PlatformFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trendpulse_platform_fetches_total",
		Help: "The total number of platform fetch attempts",
	}, []string{"platform", "status"})

	PlatformFetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "trendpulse_platform_fetch_duration_seconds",
		Help:    "Duration of platform fetch requests",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
	}, []string{"platform"})

	ItemsFetched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trendpulse_items_fetched_total",
		Help: "The total number of trend items fetched per platform",
	}, []string{"platform"})

	BreakerOpens = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trendpulse_breaker_opens_total",
		Help: "Total number of times a platform circuit breaker opened",
	}, []string{"platform"})

	CyclesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trendpulse_aggregation_cycles_total",
		Help: "The total number of aggregation cycles",
	}, []string{"status"})

	CycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "trendpulse_aggregation_cycle_duration_seconds",
		Help:    "Duration of a full aggregation cycle",
		Buckets: []float64{1, 2, 5, 10, 20, 30, 60, 120, 300},
	})

	ItemsScored = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "trendpulse_items_scored",
		Help:    "Distribution of batch sizes entering the scoring engine",
		Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
	})

	TrendingScore = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "trendpulse_trending_score",
		Help:    "Distribution of final trending scores by platform",
		Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
	}, []string{"platform"})

	SnapshotsSaved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trendpulse_snapshots_saved_total",
		Help: "The total number of snapshot persistence attempts",
	}, []string{"status"})

	SummaryRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trendpulse_summary_requests_total",
		Help: "The total number of narrative summary requests",
	}, []string{"model", "status"})

	SummaryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "trendpulse_summary_duration_seconds",
		Help:    "Duration of narrative summary generation",
		Buckets: prometheus.DefBuckets,
	}, []string{"model"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trendpulse_http_requests_total",
		Help: "The total number of API requests",
	}, []string{"path", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "trendpulse_http_request_duration_seconds",
		Help:    "Duration of API requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"path"})

	DigestsPosted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trendpulse_digest_posts_total",
		Help: "The total number of digest posts",
	}, []string{"status"})

	EnrichmentFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trendpulse_enrichment_fetches_total",
		Help: "The total number of article context fetch attempts",
	}, []string{"status"})
)
