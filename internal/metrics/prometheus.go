package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	AnswersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "educhat_answers_total",
			Help: "Total chat turns answered, by source type",
		},
		[]string{"source_type"},
	)

	AnswerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "educhat_answer_duration_seconds",
			Help:    "End-to-end chat turn duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"source_type"},
	)

	RetrievedDocs = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "educhat_retrieved_docs",
			Help:    "Number of documents retrieved per grounded answer",
			Buckets: []float64{0, 1, 2, 3, 5, 10, 20, 50},
		},
	)

	FallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "educhat_fallbacks_total",
			Help: "Grounded-to-general fallbacks, by reason",
		},
		[]string{"reason"},
	)

	RateLimitRejections = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "educhat_ratelimit_rejections_total",
			Help: "Requests rejected by the rate limiter",
		},
	)

	BadRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "educhat_bad_requests_total",
			Help: "Rejected chat requests, by reason",
		},
		[]string{"reason"},
	)
)

func Init() {
	prometheus.MustRegister(AnswersTotal)
	prometheus.MustRegister(AnswerDuration)
	prometheus.MustRegister(RetrievedDocs)
	prometheus.MustRegister(FallbacksTotal)
	prometheus.MustRegister(RateLimitRejections)
	prometheus.MustRegister(BadRequests)
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
