package api

import (
	"context"

	"github.com/yourusername/chase-predictor/internal/match"
	"github.com/yourusername/chase-predictor/internal/prediction"
)

// MockPredictor
type MockPredictor struct {
	PredictFunc  func(ctx context.Context, req prediction.Request) (*prediction.Outcome, error)
	MetricsFunc  func(state match.MatchState) match.DerivedMetrics
	TimelineFunc func(state match.MatchState) *prediction.Timeline
	calls        int
}

func (m *MockPredictor) Predict(ctx context.Context, req prediction.Request) (*prediction.Outcome, error) {
	m.calls++
	if m.PredictFunc != nil {
		return m.PredictFunc(ctx, req)
	}
	return &prediction.Outcome{}, nil
}

func (m *MockPredictor) Metrics(state match.MatchState) match.DerivedMetrics {
	if m.MetricsFunc != nil {
		return m.MetricsFunc(state)
	}
	return match.Compute(state)
}

func (m *MockPredictor) Timeline(state match.MatchState) *prediction.Timeline {
	if m.TimelineFunc != nil {
		return m.TimelineFunc(state)
	}
	return prediction.BuildTimeline(match.Compute(state))
}
