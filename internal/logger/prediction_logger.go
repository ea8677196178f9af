package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// PredictionLogger provides dedicated logging for win-probability requests.
type PredictionLogger struct {
	*logrus.Entry
}

// NewPredictionLogger creates a new prediction logger.
func NewPredictionLogger(baseLogger *logrus.Logger) *PredictionLogger {
	return &PredictionLogger{
		Entry: baseLogger.WithField("component", "prediction"),
	}
}

// LogPrediction logs a completed prediction.
func (pl *PredictionLogger) LogPrediction(predictionID, battingTeam, bowlingTeam string, winProbability float64, band string, modelVersion string, latency time.Duration) {
	pl.WithFields(logrus.Fields{
		"prediction_id":   predictionID,
		"batting_team":    battingTeam,
		"bowling_team":    bowlingTeam,
		"win_probability": winProbability,
		"band":            band,
		"model_version":   modelVersion,
		"latency_ms":      float64(latency.Microseconds()) / 1000,
	}).Info("Prediction completed")
}

// LogBlocked logs a request refused because the chase is already decided or malformed.
func (pl *PredictionLogger) LogBlocked(battingTeam, bowlingTeam string, reason error) {
	pl.WithFields(logrus.Fields{
		"batting_team": battingTeam,
		"bowling_team": bowlingTeam,
		"reason":       reason.Error(),
	}).Debug("Prediction blocked")
}

// LogPredictionError logs a model failure during a request.
func (pl *PredictionLogger) LogPredictionError(predictionID, source string, err error) {
	pl.WithFields(logrus.Fields{
		"prediction_id": predictionID,
		"source":        source,
		"error":         err.Error(),
	}).Error("Prediction failed")
}

// LogModelLoaded logs a successful one-time model load.
func (pl *PredictionLogger) LogModelLoaded(source, modelVersion, schemaVersion string) {
	pl.WithFields(logrus.Fields{
		"source":         source,
		"model_version":  modelVersion,
		"schema_version": schemaVersion,
	}).Info("Model ready")
}

// LogModelLoadFailure logs a fatal model load failure.
func (pl *PredictionLogger) LogModelLoadFailure(source string, err error) {
	pl.WithFields(logrus.Fields{
		"source": source,
		"error":  err.Error(),
	}).Error("Model load failed, predictions unavailable")
}
