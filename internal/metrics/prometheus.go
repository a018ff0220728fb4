package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SweepDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "respondr_sweep_duration_seconds",
			Help:    "Duration of one scheduled sweep",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300},
		},
		[]string{"job"},
	)

	SweepRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "respondr_sweep_runs_total",
			Help: "Scheduled sweep executions",
		},
		[]string{"job", "status"},
	)

	EmergencyChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "respondr_emergency_checks_total",
			Help: "Emergency trigger evaluations by outcome",
		},
		[]string{"outcome"},
	)

	AlertsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "respondr_alerts_created_total",
			Help: "Alert rows created",
		},
		[]string{"source"},
	)

	QueueJobsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "respondr_queue_jobs_processed_total",
			Help: "Emergency check queue jobs by terminal status",
		},
		[]string{"status"},
	)

	LLMTokensUsed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "respondr_llm_tokens_used_total",
			Help: "Model provider tokens used",
		},
		[]string{"model", "type"},
	)

	LLMRateLimited = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "respondr_llm_rate_limited_total",
			Help: "Rate-limit responses from the model provider",
		},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "respondr_cache_hits_total",
			Help: "Identity cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "respondr_cache_misses_total",
			Help: "Identity cache misses",
		},
		[]string{"cache_type"},
	)

	VideoCallsStarted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "respondr_video_calls_started_total",
			Help: "Video call rooms created",
		},
	)
)

func Init() {
	prometheus.MustRegister(SweepDuration)
	prometheus.MustRegister(SweepRuns)
	prometheus.MustRegister(EmergencyChecks)
	prometheus.MustRegister(AlertsCreated)
	prometheus.MustRegister(QueueJobsProcessed)
	prometheus.MustRegister(LLMTokensUsed)
	prometheus.MustRegister(LLMRateLimited)
	prometheus.MustRegister(CacheHits)
	prometheus.MustRegister(CacheMisses)
	prometheus.MustRegister(VideoCallsStarted)
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
