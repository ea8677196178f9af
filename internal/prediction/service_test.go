package prediction

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/chase-predictor/internal/features"
	"github.com/yourusername/chase-predictor/internal/interpret"
	"github.com/yourusername/chase-predictor/internal/match"
	"github.com/yourusername/chase-predictor/internal/model"
	"github.com/yourusername/chase-predictor/internal/repository"
	"github.com/yourusername/chase-predictor/internal/timeline"
)

type fakeScorer struct {
	predict func(ctx context.Context, fv features.FeatureVector) (float64, error)
	calls   int
}

func (f *fakeScorer) PredictProba(ctx context.Context, fv features.FeatureVector) (float64, error) {
	f.calls++
	return f.predict(ctx, fv)
}

func (f *fakeScorer) Info() model.Info {
	return model.Info{Source: model.SourceLocal, ModelVersion: "test-1", SchemaVersion: features.SchemaVersion}
}

func constScorer(p float64) *fakeScorer {
	return &fakeScorer{predict: func(context.Context, features.FeatureVector) (float64, error) { return p, nil }}
}

type providerFunc func(ctx context.Context) (model.Scorer, error)

func (f providerFunc) Get(ctx context.Context) (model.Scorer, error) { return f(ctx) }

func provide(s model.Scorer) ModelProvider {
	return providerFunc(func(context.Context) (model.Scorer, error) { return s, nil })
}

type mockPredictionLog struct {
	mock.Mock
}

func (m *mockPredictionLog) Insert(ctx context.Context, record *repository.PredictionRecord) error {
	return m.Called(ctx, record).Error(0)
}

func (m *mockPredictionLog) GetByID(ctx context.Context, id uuid.UUID) (*repository.PredictionRecord, error) {
	args := m.Called(ctx, id)
	rec, _ := args.Get(0).(*repository.PredictionRecord)
	return rec, args.Error(1)
}

func (m *mockPredictionLog) GetRecent(ctx context.Context, limit int) ([]*repository.PredictionRecord, error) {
	args := m.Called(ctx, limit)
	recs, _ := args.Get(0).([]*repository.PredictionRecord)
	return recs, args.Error(1)
}

func (m *mockPredictionLog) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func midChase() Request {
	return Request{
		BattingTeam: "Mumbai Indians",
		BowlingTeam: "Chennai Super Kings",
		Venue:       "Wankhede Stadium",
		MatchState:  match.MatchState{Target: 180, CurrentScore: 85, Wickets: 4, OversCompleted: 10},
	}
}

func TestPredictMidChase(t *testing.T) {
	scorer := constScorer(0.55)
	svc := NewService(provide(scorer), nil, quietLogger())

	out, err := svc.Predict(context.Background(), midChase())
	require.NoError(t, err)

	assert.Equal(t, 60, out.Metrics.BallsLeft)
	assert.Equal(t, 95, out.Features.RunsLeft)
	assert.Equal(t, interpret.Contested, out.Result.Band)
	assert.InDelta(t, 0.45, out.Result.LossProbability, 1e-12)
	assert.Equal(t, "Tilted Towards Chennai Super Kings", out.Result.Headline)
	assert.Len(t, out.Timeline.Points, timeline.Points)
	assert.Equal(t, 10.0, out.Timeline.Marker.Over)
	assert.Len(t, out.ImpactFactors, 6)
	assert.InDelta(t, 0.5, out.Progress.Overs, 1e-12)
	assert.Equal(t, "test-1", out.Model.ModelVersion)
	assert.NotEqual(t, uuid.Nil, out.ID)
}

func TestPredictRefusesDecidedChase(t *testing.T) {
	tests := []struct {
		name  string
		state match.MatchState
		want  error
	}{
		{"target reached", match.MatchState{Target: 150, CurrentScore: 150, Wickets: 3, OversCompleted: 18}, match.ErrTargetReached},
		{"innings complete", match.MatchState{Target: 200, CurrentScore: 170, Wickets: 6, OversCompleted: 20}, match.ErrInningsComplete},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scorer := constScorer(0.9)
			svc := NewService(provide(scorer), nil, quietLogger())

			req := midChase()
			req.MatchState = tt.state
			out, err := svc.Predict(context.Background(), req)

			assert.Nil(t, out)
			assert.True(t, errors.Is(err, match.ErrInvalidMatchState))
			assert.True(t, errors.Is(err, tt.want))
			assert.Zero(t, scorer.calls, "a decided chase must never reach the model")
		})
	}
}

func TestPredictRejectsSameTeam(t *testing.T) {
	scorer := constScorer(0.5)
	svc := NewService(provide(scorer), nil, quietLogger())

	req := midChase()
	req.BowlingTeam = req.BattingTeam
	_, err := svc.Predict(context.Background(), req)
	assert.True(t, errors.Is(err, features.ErrSameTeam))
	assert.Zero(t, scorer.calls)
}

func TestPredictModelFailures(t *testing.T) {
	tests := []struct {
		name          string
		provider      ModelProvider
		wantRetryable bool
		wantSchema    bool
		wantLoad      bool
	}{
		{
			name: "load failure",
			provider: providerFunc(func(context.Context) (model.Scorer, error) {
				return nil, fmt.Errorf("%w: open model.json: no such file", model.ErrModelLoad)
			}),
			wantLoad: true,
		},
		{
			name: "scorer unavailable",
			provider: provide(&fakeScorer{predict: func(context.Context, features.FeatureVector) (float64, error) {
				return 0, model.ErrScorerUnavailable
			}}),
			wantRetryable: true,
		},
		{
			name: "schema drift",
			provider: provide(&fakeScorer{predict: func(context.Context, features.FeatureVector) (float64, error) {
				return 0, model.ErrSchemaMismatch
			}}),
			wantSchema: true,
		},
		{
			name:          "not a probability",
			provider:      provide(constScorer(1.3)),
			wantRetryable: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(tt.provider, nil, quietLogger())
			out, err := svc.Predict(context.Background(), midChase())

			require.Error(t, err)
			assert.Nil(t, out)
			assert.Equal(t, tt.wantRetryable, errors.Is(err, ErrPredictionFailed))
			assert.Equal(t, tt.wantSchema, errors.Is(err, model.ErrSchemaMismatch))
			assert.Equal(t, tt.wantLoad, errors.Is(err, model.ErrModelLoad))
		})
	}
}

func TestPredictRecordsToLog(t *testing.T) {
	predictionLog := &mockPredictionLog{}
	predictionLog.On("Insert", mock.Anything, mock.MatchedBy(func(r *repository.PredictionRecord) bool {
		return r.BattingTeam == "Mumbai Indians" &&
			r.Band == string(interpret.Dominant) &&
			r.ModelVersion == "test-1" &&
			len(r.Features) > 0
	})).Return(nil)

	svc := NewService(provide(constScorer(0.8)), predictionLog, quietLogger())
	out, err := svc.Predict(context.Background(), midChase())
	require.NoError(t, err)
	assert.Equal(t, interpret.Dominant, out.Result.Band)
	predictionLog.AssertExpectations(t)
}

func TestPredictSurvivesLogFailure(t *testing.T) {
	predictionLog := &mockPredictionLog{}
	predictionLog.On("Insert", mock.Anything, mock.Anything).Return(errors.New("connection reset"))

	svc := NewService(provide(constScorer(0.3)), predictionLog, quietLogger())
	out, err := svc.Predict(context.Background(), midChase())
	require.NoError(t, err)
	assert.Equal(t, interpret.Dominated, out.Result.Band)
}

func TestRequestValidate(t *testing.T) {
	require.NoError(t, midChase().Validate())

	req := midChase()
	req.Venue = ""
	assert.True(t, errors.Is(req.Validate(), match.ErrInvalidInput))

	req = midChase()
	req.Wickets = 12
	assert.True(t, errors.Is(req.Validate(), match.ErrInvalidInput))
}

func TestTimelineForDecidedChase(t *testing.T) {
	svc := NewService(provide(constScorer(0.5)), nil, quietLogger())
	tl := svc.Timeline(match.MatchState{Target: 150, CurrentScore: 150, Wickets: 3, OversCompleted: 18})

	require.Len(t, tl.Points, timeline.Points)
	assert.Zero(t, tl.Points[0].RequiredRate)
	assert.Equal(t, 150, tl.Marker.Score)
}
