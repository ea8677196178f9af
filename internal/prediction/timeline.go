package prediction

import (
	"github.com/yourusername/chase-predictor/internal/match"
	"github.com/yourusername/chase-predictor/internal/timeline"
)

// Timeline is the materialised projection with the current-position marker
type Timeline struct {
	Points []timeline.Point `json:"points"`
	Marker timeline.Marker  `json:"marker"`
}

// BuildTimeline projects the full innings from the metrics. It works for
// decided chases too.
func BuildTimeline(m match.DerivedMetrics) *Timeline {
	return &Timeline{
		Points: timeline.Collect(timeline.Project(m)),
		Marker: timeline.CurrentMarker(m),
	}
}

// Timeline projects a raw match state without consulting the model
func (s *Service) Timeline(state match.MatchState) *Timeline {
	return BuildTimeline(match.Compute(state))
}
