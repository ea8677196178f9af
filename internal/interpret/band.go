// Package interpret turns a win probability into a qualitative band with supporting facts.
package interpret

import (
	"errors"
	"fmt"
	"math"

	"github.com/yourusername/chase-predictor/internal/match"
)

// Band thresholds. Each band includes its upper bound.
const (
	DominantAbove  = 0.75
	AdvantageAbove = 0.60
	ContestedAbove = 0.45

	// pressure above this reads as high tension
	highPressure = 1.2

	extremeHigh = 0.85
	extremeLow  = 0.15
)

// ErrProbabilityOutOfRange indicates a model returned something other than a probability
var ErrProbabilityOutOfRange = errors.New("win probability outside [0,1]")

// Band is the qualitative reading of a win probability
type Band string

const (
	// Dominant means the batting side is in a commanding position
	Dominant Band = "Dominant"
	// Advantage means the batting side holds a narrow lead
	Advantage Band = "Advantage"
	// Contested means the chase is tilted toward the bowling side
	Contested Band = "Contested"
	// Dominated means the bowling side is in control
	Dominated Band = "Dominated"
)

// Favours reports which side the band leans toward
func (b Band) Favours() string {
	switch b {
	case Dominant, Advantage:
		return "batting"
	default:
		return "bowling"
	}
}

// BandFor partitions [0,1] at 0.45, 0.60 and 0.75
func BandFor(p float64) Band {
	switch {
	case p > DominantAbove:
		return Dominant
	case p > AdvantageAbove:
		return Advantage
	case p > ContestedAbove:
		return Contested
	default:
		return Dominated
	}
}

// Sides names the two teams for narrative text
type Sides struct {
	Batting string `json:"batting_team"`
	Bowling string `json:"bowling_team"`
}

// Fact is a single metric surfaced in the narrative
type Fact struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Text  string  `json:"text"`
}

// Result is a banded prediction, valid for one display cycle
type Result struct {
	WinProbability  float64 `json:"win_probability"`
	LossProbability float64 `json:"loss_probability"`
	Band            Band    `json:"band"`
	Favours         string  `json:"favours"`
	Headline        string  `json:"headline"`
	Facts           []Fact  `json:"facts"`
	// Extreme marks very confident predictions (above 0.85 or below 0.15)
	Extreme bool `json:"extreme"`
}

// Interpret bands a probability and attaches facts drawn from the metrics
func Interpret(p float64, m match.DerivedMetrics, sides Sides) (*Result, error) {
	if math.IsNaN(p) || p < 0 || p > 1 {
		return nil, fmt.Errorf("%w: %v", ErrProbabilityOutOfRange, p)
	}

	band := BandFor(p)
	loss := 1 - p

	res := &Result{
		WinProbability:  p,
		LossProbability: loss,
		Band:            band,
		Favours:         band.Favours(),
		Extreme:         p > extremeHigh || p < extremeLow,
	}

	switch band {
	case Dominant:
		res.Headline = fmt.Sprintf("%s In Commanding Position", sides.Batting)
		res.Facts = []Fact{
			{"win_probability", p, fmt.Sprintf("Dominating the chase with %.1f%% win probability", p*100)},
			{"crr", m.CRR, fmt.Sprintf("Current run rate (%.2f) well above required rate (%.2f)", m.CRR, m.RRR)},
			{"wickets_in_hand", float64(m.WicketsInHand), fmt.Sprintf("%d wickets in hand providing stability", m.WicketsInHand)},
		}
		if m.TopBatsmanPlaying {
			res.Facts = append(res.Facts, Fact{"top_batsman_playing", 1, "Key batsman at crease significantly boosting chances"})
		}
	case Advantage:
		res.Headline = fmt.Sprintf("%s With Slight Advantage", sides.Batting)
		res.Facts = []Fact{
			{"win_probability", p, fmt.Sprintf("Narrow lead with %.1f%% win probability", p*100)},
			{"runs_left", float64(m.RunsLeft), fmt.Sprintf("Need %d runs in %s overs", m.RunsLeft, m.OversLeft())},
			{"pressure_index", m.PressureIndex, fmt.Sprintf("Pressure index at %.2f (%s tension)", m.PressureIndex, tension(m.PressureIndex))},
		}
	case Contested:
		res.Headline = fmt.Sprintf("Tilted Towards %s", sides.Bowling)
		res.Facts = []Fact{
			{"loss_probability", loss, fmt.Sprintf("Bowlers in control with %.1f%% defense probability", loss*100)},
			{"dot_ball_percent", m.DotBallPercentEstimate, fmt.Sprintf("Dot ball percentage at %.1f%% building pressure", m.DotBallPercentEstimate*100)},
			{"wickets", float64(m.Wickets), fmt.Sprintf("%s has taken %d wickets so far", sides.Bowling, m.Wickets)},
		}
	default:
		res.Headline = fmt.Sprintf("%s Dominating", sides.Bowling)
		res.Facts = []Fact{
			{"loss_probability", loss, fmt.Sprintf("Complete control with %.1f%% defense probability", loss*100)},
			{"pressure_index", m.PressureIndex, fmt.Sprintf("High pressure on batsmen (index: %.2f)", m.PressureIndex)},
			{"wickets", float64(m.Wickets), fmt.Sprintf("Wickets falling regularly (%d down)", m.Wickets)},
			{"dot_ball_percent", m.DotBallPercentEstimate, fmt.Sprintf("Dot balls at %.1f%% restricting scoring", m.DotBallPercentEstimate*100)},
		}
	}

	return res, nil
}

func tension(pressure float64) string {
	if pressure > highPressure {
		return "high"
	}
	return "moderate"
}
