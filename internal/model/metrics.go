package model

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ModelPredictionsTotal tracks model calls by source and cache outcome
	ModelPredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chase_model_predictions_total",
			Help: "Total number of model predictions made",
		},
		[]string{"source", "cache_hit"},
	)

	// ModelPredictionLatency tracks model call latency
	ModelPredictionLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chase_model_prediction_latency_seconds",
			Help:    "Model prediction latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	// ModelErrorsTotal tracks failed model calls
	ModelErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chase_model_errors_total",
			Help: "Total number of failed model calls",
		},
		[]string{"source", "error_type"},
	)

	// ModelLoadsTotal tracks artifact load attempts
	ModelLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chase_model_loads_total",
			Help: "Total number of model load attempts",
		},
		[]string{"status"},
	)

	// ModelLoadDuration tracks how long the one-time load took
	ModelLoadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "chase_model_load_duration_seconds",
			Help:    "Model load duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		},
	)

	// ModelInfo exposes the loaded model's identity
	ModelInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "chase_model_info",
			Help: "Identity of the loaded model",
		},
		[]string{"source", "model_version", "schema_version"},
	)

	// ModelCacheHitRatio tracks the remote prediction cache hit ratio
	ModelCacheHitRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chase_model_cache_hit_ratio",
			Help: "Remote prediction cache hit ratio",
		},
	)

	// ModelBreakerState exposes the remote scorer circuit state (0 closed, 1 half-open, 2 open)
	ModelBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chase_model_breaker_state",
			Help: "Remote scorer circuit breaker state",
		},
	)
)
