// Package metrics provides the centralized Prometheus metrics registry for the predictor service.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "chase_predictor"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	PredictionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "predictions_total",
		Help:      "Total number of predictions served, by band",
	}, []string{"band"})
	PredictionsBlockedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "predictions_blocked_total",
		Help:      "Total number of requests refused before scoring, by reason",
	}, []string{"reason"})
	PredictionFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "prediction_failures_total",
		Help:      "Total number of requests that failed at the model",
	})
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests",
	}, []string{"route", "method", "status"})
	RetentionRowsPurgedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "retention_rows_purged_total",
		Help:      "Total number of prediction log rows removed by retention",
	})
	RetentionRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "retention_runs_total",
		Help:      "Total number of retention runs, by status",
	}, []string{"status"})
)

// Gauge metrics
var (
	LiveConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "live_connections",
		Help:      "Number of open live prediction websocket connections",
	})
	LastWinProbability = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_win_probability",
		Help:      "Win probability of the most recent prediction",
	})
)

// Histogram metrics
var (
	PredictionDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "prediction_duration_seconds",
		Help:      "End-to-end prediction duration in seconds",
		Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	})
	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(PredictionsTotal)
		registry.MustRegister(PredictionsBlockedTotal)
		registry.MustRegister(PredictionFailuresTotal)
		registry.MustRegister(HTTPRequestsTotal)
		registry.MustRegister(RetentionRowsPurgedTotal)
		registry.MustRegister(RetentionRunsTotal)

		registry.MustRegister(LiveConnections)
		registry.MustRegister(LastWinProbability)

		registry.MustRegister(PredictionDuration)
		registry.MustRegister(HTTPRequestDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	return InitRegistry()
}

// Handler returns the Prometheus HTTP handler. It serves the service registry
// together with the default one, where the model client and Go runtime metrics live.
func Handler() http.Handler {
	gatherers := prometheus.Gatherers{GetRegistry(), prometheus.DefaultGatherer}
	return promhttp.HandlerFor(gatherers, promhttp.HandlerOpts{})
}

// RecordPrediction records a served prediction.
func RecordPrediction(band string, probability, durationSeconds float64) {
	PredictionsTotal.WithLabelValues(band).Inc()
	LastWinProbability.Set(probability)
	PredictionDuration.Observe(durationSeconds)
}

// RecordBlocked records a request refused before scoring.
func RecordBlocked(reason string) {
	PredictionsBlockedTotal.WithLabelValues(reason).Inc()
}

// RecordPredictionFailure records a model failure.
func RecordPredictionFailure() {
	PredictionFailuresTotal.Inc()
}

// RecordHTTPRequest records one handled HTTP request.
func RecordHTTPRequest(route, method, status string, durationSeconds float64) {
	HTTPRequestsTotal.WithLabelValues(route, method, status).Inc()
	HTTPRequestDuration.WithLabelValues(route).Observe(durationSeconds)
}

// RecordRetentionRun records a retention purge.
func RecordRetentionRun(purged int64, err error) {
	if err != nil {
		RetentionRunsTotal.WithLabelValues("failure").Inc()
		return
	}
	RetentionRunsTotal.WithLabelValues("success").Inc()
	RetentionRowsPurgedTotal.Add(float64(purged))
}
