package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// 1) Request volume
	GenerationRequestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "generation_requests_total",
		Help: "Total number of quiz generation requests received.",
	})

	// 2) Concurrency (in flight)
	ActiveRequests = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "active_requests",
		Help: "Current number of in-flight generation requests.",
	})

	// 3) Request latency (handler duration)
	RequestDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "request_duration_seconds",
		Help:    "End-to-end handler duration for generation requests.",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 20, 40, 60, 75},
	})

	// 4) Provider call latency
	ProviderDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "provider_duration_seconds",
		Help:    "Duration of calls to the text generation provider.",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
	})

	// 5) Output volume
	QuestionsGeneratedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "questions_generated_total",
		Help: "Total number of quiz questions requested across successful generations.",
	})

	// 6) Rate limiting drops
	RateLimitDroppedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rate_limit_dropped_total",
		Help: "Requests rejected by the per-user rate limiter.",
	})

	// 7) Premium gate rejections
	PremiumRejectionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "premium_rejections_total",
		Help: "Requests rejected for requiring a premium subscription.",
	})

	// 8) DB write latency
	DBWriteDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "db_write_duration_seconds",
		Help:    "Duration of INSERT into the generations table.",
		Buckets: []float64{0.005, 0.01, 0.02, 0.05, 0.1, 0.25, 0.5},
	})
)

func MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(
		GenerationRequestsTotal,
		ActiveRequests,
		RequestDurationSeconds,
		ProviderDurationSeconds,
		QuestionsGeneratedTotal,
		RateLimitDroppedTotal,
		PremiumRejectionsTotal,
		DBWriteDurationSeconds,
	)
}
