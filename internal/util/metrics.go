package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QuestionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "insight_questions_total",
		Help: "Total number of questions answered, by matched intent",
	}, []string{"intent", "source"})

	EmptyPeriodAnswersTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "insight_empty_period_answers_total",
		Help: "Total number of questions asked over a period without records",
	})

	AnswerLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "insight_answer_latency_seconds",
		Help:    "Latency of computing an answer",
		Buckets: prometheus.DefBuckets,
	}, []string{"intent"})

	DashboardLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "insight_dashboard_latency_seconds",
		Help:    "Latency of computing a dashboard page",
		Buckets: prometheus.DefBuckets,
	}, []string{"page"})

	RecordStoreRecords = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "record_store_records",
		Help: "Number of order records held in memory",
	})

	RecordStoreLoadLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "record_store_load_latency_seconds",
		Help:    "Latency of loading the order dataset",
		Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
	})

	RecordStoreLoadFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "record_store_load_failed_total",
		Help: "Total number of failed dataset loads",
	})

	PeriodSelectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "period_selections_total",
		Help: "Total number of analysis period changes",
	}, []string{"mode"})

	EventPublishFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "event_publish_failed_total",
		Help: "Total number of events that could not be published",
	}, []string{"event_type"})

	EventsProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "events_processed_total",
		Help: "Total number of consumed events, by outcome",
	}, []string{"event_type", "outcome"})

	RateLimitedRequestsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rate_limited_requests_total",
		Help: "Total number of requests rejected by the rate limiter",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
