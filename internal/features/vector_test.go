package features

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/chase-predictor/internal/match"
)

func liveMetrics() match.DerivedMetrics {
	return match.Compute(match.MatchState{
		Target:            180,
		CurrentScore:      85,
		Wickets:           4,
		OversCompleted:    10.0,
		TopBatsmanPlaying: true,
		RecentPartnership: 30,
	})
}

func TestStructOrderMatchesColumns(t *testing.T) {
	typ := reflect.TypeOf(FeatureVector{})
	cols := Columns()
	require.Equal(t, len(cols), typ.NumField(), "struct fields and column list diverged")

	for i := 0; i < typ.NumField(); i++ {
		tag := strings.Split(typ.Field(i).Tag.Get("json"), ",")[0]
		assert.Equal(t, cols[i], tag, "field %d", i)
	}
}

func TestColumnsContract(t *testing.T) {
	assert.Equal(t, []string{
		"batting_team", "bowling_team", "venue",
		"current_score", "wickets", "balls_left", "runs_left",
		"crr", "rrr", "pressure_index", "momentum_shift_index",
		"dot_ball_percent", "wickets_in_hand", "top_batsman_playing",
	}, Columns())

	cats := 0
	for _, c := range Schema() {
		if c.Kind == Categorical {
			cats++
		}
	}
	assert.Equal(t, 3, cats)
}

func TestBuildCopiesMetrics(t *testing.T) {
	m := liveMetrics()
	v, err := Build("Mumbai Indians", "Chennai Super Kings", "Wankhede Stadium", m)
	require.NoError(t, err)

	assert.Equal(t, "Mumbai Indians", v.BattingTeam)
	assert.Equal(t, "Chennai Super Kings", v.BowlingTeam)
	assert.Equal(t, "Wankhede Stadium", v.Venue)
	assert.Equal(t, m.CurrentScore, v.CurrentScore)
	assert.Equal(t, m.Wickets, v.Wickets)
	assert.Equal(t, m.BallsLeft, v.BallsLeft)
	assert.Equal(t, m.RunsLeft, v.RunsLeft)
	assert.Equal(t, m.CRR, v.CRR)
	assert.Equal(t, m.RRR, v.RRR)
	assert.Equal(t, m.PressureIndex, v.PressureIndex)
	assert.Equal(t, m.MomentumShiftIndex, v.MomentumShiftIndex)
	assert.Equal(t, m.DotBallPercentEstimate, v.DotBallPercent)
	assert.Equal(t, m.WicketsInHand, v.WicketsInHand)
	assert.Equal(t, 1, v.TopBatsmanPlaying)

	row := v.Row()
	require.Len(t, row, len(Columns()))
	assert.Equal(t, "Wankhede Stadium", row[2])
	assert.Equal(t, 1, row[13])
}

func TestBuildRejections(t *testing.T) {
	decided := match.Compute(match.MatchState{Target: 150, CurrentScore: 150, Wickets: 3, OversCompleted: 18})

	tests := []struct {
		name    string
		batting string
		bowling string
		venue   string
		metrics match.DerivedMetrics
		wantErr error
	}{
		{"same team", "Punjab Kings", "Punjab Kings", "Eden Gardens", liveMetrics(), ErrSameTeam},
		{"missing venue", "Punjab Kings", "Gujarat Titans", "", liveMetrics(), ErrMissingContext},
		{"decided chase", "Punjab Kings", "Gujarat Titans", "Eden Gardens", decided, match.ErrInvalidMatchState},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.batting, tt.bowling, tt.venue, tt.metrics)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestJSONPreservesColumnOrder(t *testing.T) {
	v, err := Build("Delhi Capitals", "Punjab Kings", "Arun Jaitley Stadium", liveMetrics())
	require.NoError(t, err)

	data, err := json.Marshal(v)
	require.NoError(t, err)

	last := -1
	for _, col := range Columns() {
		idx := strings.Index(string(data), `"`+col+`"`)
		require.GreaterOrEqual(t, idx, 0, "column %s missing", col)
		assert.Greater(t, idx, last, "column %s out of order", col)
		last = idx
	}
}

func TestKeyDistinguishesRows(t *testing.T) {
	a, err := Build("Delhi Capitals", "Punjab Kings", "Eden Gardens", liveMetrics())
	require.NoError(t, err)
	b, err := Build("Punjab Kings", "Delhi Capitals", "Eden Gardens", liveMetrics())
	require.NoError(t, err)

	assert.Equal(t, a.Key(), a.Key())
	assert.NotEqual(t, a.Key(), b.Key())
}
