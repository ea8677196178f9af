// Package features assembles the fixed-schema input row for the win-probability model.
//
// FeatureVector mirrors, field for field and in order, the columns the classifier
// was trained on. A retrained model that adds, drops or reorders a column must be
// mirrored here and SchemaVersion bumped; the model loader refuses artifacts whose
// declared schema differs.
package features

import (
	"errors"
	"fmt"

	"github.com/yourusername/chase-predictor/internal/match"
)

// SchemaVersion identifies the column contract below
const SchemaVersion = "ipl-chase-v2"

var (
	// ErrSameTeam indicates the batting and bowling sides are the same team
	ErrSameTeam = errors.New("batting and bowling teams must differ")

	// ErrMissingContext indicates a categorical field was left empty
	ErrMissingContext = errors.New("batting team, bowling team and venue are required")
)

// FeatureVector is one model input row. Field order is the training column order.
type FeatureVector struct {
	BattingTeam        string  `json:"batting_team"`
	BowlingTeam        string  `json:"bowling_team"`
	Venue              string  `json:"venue"`
	CurrentScore       int     `json:"current_score"`
	Wickets            int     `json:"wickets"`
	BallsLeft          int     `json:"balls_left"`
	RunsLeft           int     `json:"runs_left"`
	CRR                float64 `json:"crr"`
	RRR                float64 `json:"rrr"`
	PressureIndex      float64 `json:"pressure_index"`
	MomentumShiftIndex float64 `json:"momentum_shift_index"`
	DotBallPercent     float64 `json:"dot_ball_percent"`
	WicketsInHand      int     `json:"wickets_in_hand"`
	TopBatsmanPlaying  int     `json:"top_batsman_playing"`
}

// Column kinds
const (
	Categorical = "categorical"
	Numeric     = "numeric"
)

// Column describes one position of the row
type Column struct {
	Name string
	Kind string
}

var columns = []Column{
	{"batting_team", Categorical},
	{"bowling_team", Categorical},
	{"venue", Categorical},
	{"current_score", Numeric},
	{"wickets", Numeric},
	{"balls_left", Numeric},
	{"runs_left", Numeric},
	{"crr", Numeric},
	{"rrr", Numeric},
	{"pressure_index", Numeric},
	{"momentum_shift_index", Numeric},
	{"dot_ball_percent", Numeric},
	{"wickets_in_hand", Numeric},
	{"top_batsman_playing", Numeric},
}

// Columns returns the ordered column names of the row
func Columns() []string {
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.Name
	}
	return names
}

// Schema returns the ordered column descriptors of the row
func Schema() []Column {
	out := make([]Column, len(columns))
	copy(out, columns)
	return out
}

// Build assembles the model row for a live chase. It copies fields from the
// metrics without transforming them.
func Build(battingTeam, bowlingTeam, venue string, m match.DerivedMetrics) (FeatureVector, error) {
	if battingTeam == "" || bowlingTeam == "" || venue == "" {
		return FeatureVector{}, ErrMissingContext
	}
	if battingTeam == bowlingTeam {
		return FeatureVector{}, fmt.Errorf("%w: %q", ErrSameTeam, battingTeam)
	}
	if err := m.NotLiveReason(); err != nil {
		return FeatureVector{}, err
	}

	topBatsman := 0
	if m.TopBatsmanPlaying {
		topBatsman = 1
	}

	return FeatureVector{
		BattingTeam:        battingTeam,
		BowlingTeam:        bowlingTeam,
		Venue:              venue,
		CurrentScore:       m.CurrentScore,
		Wickets:            m.Wickets,
		BallsLeft:          m.BallsLeft,
		RunsLeft:           m.RunsLeft,
		CRR:                m.CRR,
		RRR:                m.RRR,
		PressureIndex:      m.PressureIndex,
		MomentumShiftIndex: m.MomentumShiftIndex,
		DotBallPercent:     m.DotBallPercentEstimate,
		WicketsInHand:      m.WicketsInHand,
		TopBatsmanPlaying:  topBatsman,
	}, nil
}

// Row returns the values in column order
func (v FeatureVector) Row() []any {
	return []any{
		v.BattingTeam,
		v.BowlingTeam,
		v.Venue,
		v.CurrentScore,
		v.Wickets,
		v.BallsLeft,
		v.RunsLeft,
		v.CRR,
		v.RRR,
		v.PressureIndex,
		v.MomentumShiftIndex,
		v.DotBallPercent,
		v.WicketsInHand,
		v.TopBatsmanPlaying,
	}
}

// Categoricals returns the categorical values keyed by column name
func (v FeatureVector) Categoricals() map[string]string {
	return map[string]string{
		"batting_team": v.BattingTeam,
		"bowling_team": v.BowlingTeam,
		"venue":        v.Venue,
	}
}

// Numerics returns the numeric values keyed by column name
func (v FeatureVector) Numerics() map[string]float64 {
	return map[string]float64{
		"current_score":        float64(v.CurrentScore),
		"wickets":              float64(v.Wickets),
		"balls_left":           float64(v.BallsLeft),
		"runs_left":            float64(v.RunsLeft),
		"crr":                  v.CRR,
		"rrr":                  v.RRR,
		"pressure_index":       v.PressureIndex,
		"momentum_shift_index": v.MomentumShiftIndex,
		"dot_ball_percent":     v.DotBallPercent,
		"wickets_in_hand":      float64(v.WicketsInHand),
		"top_batsman_playing":  float64(v.TopBatsmanPlaying),
	}
}

// Key is a stable string form of the row, used to memoise external scoring calls
func (v FeatureVector) Key() string {
	return fmt.Sprintf("%s|%s|%s|%d|%d|%d|%d|%g|%g|%g|%g|%g|%d|%d",
		v.BattingTeam, v.BowlingTeam, v.Venue,
		v.CurrentScore, v.Wickets, v.BallsLeft, v.RunsLeft,
		v.CRR, v.RRR, v.PressureIndex, v.MomentumShiftIndex, v.DotBallPercent,
		v.WicketsInHand, v.TopBatsmanPlaying)
}
