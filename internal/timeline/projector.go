// Package timeline projects score and required rate across a full innings for charting.
//
// The projection is a linear extrapolation of the current run rate, not a forecast.
package timeline

import (
	"iter"

	"github.com/yourusername/chase-predictor/internal/match"
)

// Points is the number of projected points, one per over boundary from 0 to 20
const Points = match.InningsOvers + 1

// Point is one over boundary of the projection
type Point struct {
	Over           int     `json:"over"`
	ProjectedScore float64 `json:"projected_score"`
	RequiredRate   float64 `json:"required_rate"`
}

// Project yields the 21 points for overs 0..20. Each range over the returned
// sequence recomputes from the metrics; nothing is retained between calls.
func Project(m match.DerivedMetrics) iter.Seq[Point] {
	return func(yield func(Point) bool) {
		for over := 0; over <= match.InningsOvers; over++ {
			p := Point{
				Over:           over,
				ProjectedScore: float64(m.CurrentScore) + m.CRR*(float64(over)-m.OversCompleted),
				RequiredRate:   m.RRR * (1 - float64(over)/match.InningsOvers),
			}
			if !yield(p) {
				return
			}
		}
	}
}

// Collect materialises a projection
func Collect(seq iter.Seq[Point]) []Point {
	out := make([]Point, 0, Points)
	for p := range seq {
		out = append(out, p)
	}
	return out
}

// Marker is the current position on the projection, for chart annotation
type Marker struct {
	Over  float64 `json:"over"`
	Score int     `json:"score"`
	Label string  `json:"label"`
}

// CurrentMarker marks where the innings stands now
func CurrentMarker(m match.DerivedMetrics) Marker {
	return Marker{Over: m.OversCompleted, Score: m.CurrentScore, Label: "Current Position"}
}
