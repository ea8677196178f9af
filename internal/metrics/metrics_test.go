package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegistry(t *testing.T) {
	InitRegistry()
	registry := GetRegistry()

	assert.NotNil(t, registry)
	assert.IsType(t, &prometheus.Registry{}, registry)
	assert.Same(t, registry, InitRegistry())
}

func TestRecordPrediction(t *testing.T) {
	InitRegistry()
	before := testutil.ToFloat64(PredictionsTotal.WithLabelValues("Dominant"))

	RecordPrediction("Dominant", 0.81, 0.002)

	assert.Equal(t, before+1, testutil.ToFloat64(PredictionsTotal.WithLabelValues("Dominant")))
	assert.Equal(t, 0.81, testutil.ToFloat64(LastWinProbability))
}

func TestRecordBlockedAndFailure(t *testing.T) {
	InitRegistry()
	blocked := testutil.ToFloat64(PredictionsBlockedTotal.WithLabelValues("target_reached"))
	failures := testutil.ToFloat64(PredictionFailuresTotal)

	RecordBlocked("target_reached")
	RecordPredictionFailure()

	assert.Equal(t, blocked+1, testutil.ToFloat64(PredictionsBlockedTotal.WithLabelValues("target_reached")))
	assert.Equal(t, failures+1, testutil.ToFloat64(PredictionFailuresTotal))
}

func TestRecordRetentionRun(t *testing.T) {
	InitRegistry()
	purged := testutil.ToFloat64(RetentionRowsPurgedTotal)
	failed := testutil.ToFloat64(RetentionRunsTotal.WithLabelValues("failure"))

	RecordRetentionRun(12, nil)
	RecordRetentionRun(99, errors.New("db down"))

	assert.Equal(t, purged+12, testutil.ToFloat64(RetentionRowsPurgedTotal))
	assert.Equal(t, failed+1, testutil.ToFloat64(RetentionRunsTotal.WithLabelValues("failure")))
}

func TestRecordHTTPRequest(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordHTTPRequest("/v1/predictions", http.MethodPost, "200", 0.01)
	})
}

func TestHandler(t *testing.T) {
	InitRegistry()
	RecordPrediction("Contested", 0.5, 0.001)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "chase_predictor_predictions_total")
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
