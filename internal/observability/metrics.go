package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "sightline",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	DetectRequests = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "sightline",
		Name:      "detect_requests_total",
		Help:      "Total number of detection requests processed",
	})

	DetectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sightline",
		Name:      "detections_total",
		Help:      "Total number of objects detected, by class",
	}, []string{"class"})

	InferenceDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "sightline",
		Name:      "inference_duration_seconds",
		Help:      "Duration of model inference",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
	}, []string{"backend"})

	LLMRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sightline",
		Name:      "llm_requests_total",
		Help:      "Total number of Q&A requests, by outcome (ok or fallback)",
	}, []string{"outcome"})

	WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "sightline",
		Name:      "ws_connections",
		Help:      "Number of active WebSocket connections",
	})
)
