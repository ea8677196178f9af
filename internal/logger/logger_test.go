package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() (*logrus.Logger, *bytes.Buffer) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)
	return log, buf
}

func parseLogOutput(buf *bytes.Buffer) map[string]interface{} {
	var logEntry map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &logEntry)
	if err != nil {
		return nil
	}
	return logEntry
}

func TestPredictionLoggerPrediction(t *testing.T) {
	log, buf := setupTestLogger()
	pl := NewPredictionLogger(log)

	pl.LogPrediction("pred-1", "Mumbai Indians", "Chennai Super Kings", 0.71, "Advantage", "2024.05.1", 1500*time.Microsecond)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "prediction", logEntry["component"])
	assert.Equal(t, "pred-1", logEntry["prediction_id"])
	assert.Equal(t, "Advantage", logEntry["band"])
	assert.Equal(t, 0.71, logEntry["win_probability"])
	assert.Equal(t, 1.5, logEntry["latency_ms"])
	assert.Equal(t, "info", logEntry["level"])
}

func TestPredictionLoggerBlocked(t *testing.T) {
	log, buf := setupTestLogger()
	pl := NewPredictionLogger(log)

	pl.LogBlocked("Mumbai Indians", "Chennai Super Kings", errors.New("batting team has already reached the target"))

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "debug", logEntry["level"])
	assert.Equal(t, "batting team has already reached the target", logEntry["reason"])
}

func TestPredictionLoggerError(t *testing.T) {
	log, buf := setupTestLogger()
	pl := NewPredictionLogger(log)

	pl.LogPredictionError("pred-2", "remote", errors.New("model scorer unavailable"))

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "error", logEntry["level"])
	assert.Equal(t, "remote", logEntry["source"])
}

func TestPredictionLoggerModelEvents(t *testing.T) {
	log, buf := setupTestLogger()
	pl := NewPredictionLogger(log)

	pl.LogModelLoaded("local", "2024.05.1", "ipl-chase-v2")
	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "ipl-chase-v2", logEntry["schema_version"])

	buf.Reset()
	pl.LogModelLoadFailure("local", errors.New("model load failed"))
	logEntry = parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "error", logEntry["level"])
}

func TestNewLoggerLevels(t *testing.T) {
	log := NewLogger("debug", false)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())

	log = NewLogger("not-a-level", false)
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}

func TestNewLoggerFormatter(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	log := NewLogger("info", true)
	_, ok := log.Formatter.(*logrus.JSONFormatter)
	assert.True(t, ok, "production logger should emit JSON regardless of ENVIRONMENT")

	t.Setenv("ENVIRONMENT", "production")
	log = NewLogger("info", false)
	_, ok = log.Formatter.(*logrus.TextFormatter)
	assert.True(t, ok, "non-production logger should emit text regardless of ENVIRONMENT")
}
