package match

import (
	"fmt"
	"math"
)

const (
	// dotBallPerWicket and dotBallCap define the dot-ball estimate: min(0.6, wickets*0.1)
	dotBallPerWicket = 0.1
	dotBallCap       = 0.6
)

// DerivedMetrics are the situational metrics computed from a MatchState.
// A value is immutable once produced and is recomputed for every request.
type DerivedMetrics struct {
	BallsLeft          int     `json:"balls_left"`
	RunsLeft           int     `json:"runs_left"`
	CRR                float64 `json:"crr"`
	RRR                float64 `json:"rrr"`
	WicketsInHand      int     `json:"wickets_in_hand"`
	PressureIndex      float64 `json:"pressure_index"`
	MomentumShiftIndex float64 `json:"momentum_shift_index"`

	// DotBallPercentEstimate is a proxy derived from wickets lost, not a measured
	// ball-by-ball rate. The trained model consumes it under the name dot_ball_percent.
	DotBallPercentEstimate float64 `json:"dot_ball_percent"`

	CurrentScore      int     `json:"current_score"`
	Wickets           int     `json:"wickets"`
	Target            int     `json:"target"`
	OversCompleted    float64 `json:"overs_completed"`
	TopBatsmanPlaying bool    `json:"top_batsman_playing"`
	RecentPartnership int     `json:"recent_partnership"`

	// Live is true while balls remain and runs are still required
	Live bool `json:"live"`
}

// Compute derives metrics from a match state. It never fails: degenerate
// inputs (no overs bowled, no balls left) fall back to zero rates, and a
// decided match is reported through Live rather than an error.
func Compute(state MatchState) DerivedMetrics {
	ballsLeft := max(InningsBalls-state.ballsBowled(), 0)
	runsLeft := max(state.Target-state.CurrentScore, 0)

	var crr float64
	if state.OversCompleted > 0 {
		crr = float64(state.CurrentScore) / state.OversCompleted
	}

	var rrr float64
	if ballsLeft > 0 {
		rrr = float64(runsLeft) * BallsPerOver / float64(ballsLeft)
	}

	var pressure float64
	if crr > 0 {
		pressure = rrr / crr
	}

	wicketsInHand := MaxWickets - state.Wickets

	// Always zero once overs have been bowled, since crr*overs == current_score.
	// Kept as-is: the trained model was fitted on this exact column.
	momentum := (float64(state.CurrentScore) - crr*state.OversCompleted) *
		(1 + float64(wicketsInHand)/MaxWickets)

	return DerivedMetrics{
		BallsLeft:              ballsLeft,
		RunsLeft:               runsLeft,
		CRR:                    crr,
		RRR:                    rrr,
		WicketsInHand:          wicketsInHand,
		PressureIndex:          pressure,
		MomentumShiftIndex:     momentum,
		DotBallPercentEstimate: EstimateDotBallPercent(state.Wickets),
		CurrentScore:           state.CurrentScore,
		Wickets:                state.Wickets,
		Target:                 state.Target,
		OversCompleted:         state.OversCompleted,
		TopBatsmanPlaying:      state.TopBatsmanPlaying,
		RecentPartnership:      state.RecentPartnership,
		Live:                   ballsLeft > 0 && runsLeft > 0,
	}
}

// EstimateDotBallPercent approximates the dot-ball share from wickets lost.
// No ball-by-ball data is available, so this is min(0.6, wickets*0.1).
func EstimateDotBallPercent(wickets int) float64 {
	return math.Min(dotBallCap, float64(wickets)*dotBallPerWicket)
}

// NotLiveReason explains why a state cannot be scored, or returns nil when it is live.
// An exhausted innings is reported ahead of a reached target.
func (m DerivedMetrics) NotLiveReason() error {
	switch {
	case m.BallsLeft <= 0:
		return fmt.Errorf("%w: %w", ErrInvalidMatchState, ErrInningsComplete)
	case m.RunsLeft <= 0:
		return fmt.Errorf("%w: %w", ErrInvalidMatchState, ErrTargetReached)
	default:
		return nil
	}
}

// OversLeft renders the remaining balls in overs.balls notation, e.g. 57 balls -> "9.3"
func (m DerivedMetrics) OversLeft() string {
	return fmt.Sprintf("%d.%d", m.BallsLeft/BallsPerOver, m.BallsLeft%BallsPerOver)
}

// RunProgress is the fraction of the target already scored, capped at 1
func (m DerivedMetrics) RunProgress() float64 {
	if m.Target <= 0 {
		return 0
	}
	return math.Min(1, float64(m.CurrentScore)/float64(m.Target))
}

// OverProgress is the fraction of the innings already bowled
func (m DerivedMetrics) OverProgress() float64 {
	return m.OversCompleted / InningsOvers
}
