package interpret

import (
	"fmt"

	"github.com/yourusername/chase-predictor/internal/match"
)

// ImpactFactors lists the headline match factors shown alongside a prediction
func ImpactFactors(m match.DerivedMetrics) []Fact {
	keyBatsman := "No"
	keyValue := 0.0
	if m.TopBatsmanPlaying {
		keyBatsman = "Yes"
		keyValue = 1
	}

	return []Fact{
		{"rrr", m.RRR, fmt.Sprintf("Required run rate %.2f", m.RRR)},
		{"momentum_shift_index", m.MomentumShiftIndex, fmt.Sprintf("Momentum %.1f", m.MomentumShiftIndex)},
		{"pressure_index", m.PressureIndex, fmt.Sprintf("Pressure index %.2f", m.PressureIndex)},
		{"dot_ball_percent", m.DotBallPercentEstimate, fmt.Sprintf("Dot ball estimate %.1f%%", m.DotBallPercentEstimate*100)},
		{"wickets_in_hand", float64(m.WicketsInHand), fmt.Sprintf("Wickets in hand %d/%d", m.WicketsInHand, match.MaxWickets)},
		{"top_batsman_playing", keyValue, "Key batsman at crease: " + keyBatsman},
	}
}
