// Package prediction orchestrates a single win-probability request from raw match
// state to an interpreted result.
package prediction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/chase-predictor/internal/features"
	"github.com/yourusername/chase-predictor/internal/interpret"
	"github.com/yourusername/chase-predictor/internal/logger"
	"github.com/yourusername/chase-predictor/internal/match"
	"github.com/yourusername/chase-predictor/internal/metrics"
	"github.com/yourusername/chase-predictor/internal/model"
	"github.com/yourusername/chase-predictor/internal/repository"
)

const recordTimeout = 2 * time.Second

// ModelProvider hands out the loaded scorer
type ModelProvider interface {
	Get(ctx context.Context) (model.Scorer, error)
}

// Request is one chase to score
type Request struct {
	BattingTeam string `json:"batting_team"`
	BowlingTeam string `json:"bowling_team"`
	Venue       string `json:"venue"`
	match.MatchState
}

// Validate checks the raw inputs. Team and venue names are not checked against any list.
func (r Request) Validate() error {
	if r.BattingTeam == "" || r.BowlingTeam == "" || r.Venue == "" {
		return fmt.Errorf("%w: %w", match.ErrInvalidInput, features.ErrMissingContext)
	}
	return r.MatchState.Validate()
}

// Sides names the teams for narrative text
func (r Request) Sides() interpret.Sides {
	return interpret.Sides{Batting: r.BattingTeam, Bowling: r.BowlingTeam}
}

// Progress is how far the chase has gone, as fractions of target and innings
type Progress struct {
	Runs  float64 `json:"runs"`
	Overs float64 `json:"overs"`
}

// Outcome is everything produced for one scored chase
type Outcome struct {
	ID            uuid.UUID              `json:"id"`
	Metrics       match.DerivedMetrics   `json:"metrics"`
	Features      features.FeatureVector `json:"features"`
	Result        *interpret.Result      `json:"result"`
	ImpactFactors []interpret.Fact       `json:"impact_factors"`
	Timeline      *Timeline              `json:"timeline"`
	Progress      Progress               `json:"progress"`
	Model         model.Info             `json:"model"`
}

// Service scores chases against the shared model
type Service struct {
	models ModelProvider
	log    repository.PredictionLogRepository
	plog   *logger.PredictionLogger
	logger *logrus.Entry
}

// NewService creates a prediction service. predictionLog may be nil, in which
// case served predictions are not persisted.
func NewService(models ModelProvider, predictionLog repository.PredictionLogRepository, baseLogger *logrus.Logger) *Service {
	return &Service{
		models: models,
		log:    predictionLog,
		plog:   logger.NewPredictionLogger(baseLogger),
		logger: baseLogger.WithField("component", "prediction_service"),
	}
}

// Metrics computes the derived metrics without consulting the model
func (s *Service) Metrics(state match.MatchState) match.DerivedMetrics {
	return match.Compute(state)
}

// Predict scores a chase. A decided chase fails with match.ErrInvalidMatchState,
// a model trained on another feature contract with model.ErrSchemaMismatch, an
// artifact that never loaded with model.ErrModelLoad, and any other model
// failure with ErrPredictionFailed.
func (s *Service) Predict(ctx context.Context, req Request) (*Outcome, error) {
	start := time.Now()
	m := match.Compute(req.MatchState)

	if err := m.NotLiveReason(); err != nil {
		metrics.RecordBlocked(blockReason(err))
		s.plog.LogBlocked(req.BattingTeam, req.BowlingTeam, err)
		return nil, err
	}

	fv, err := features.Build(req.BattingTeam, req.BowlingTeam, req.Venue, m)
	if err != nil {
		metrics.RecordBlocked(blockReason(err))
		s.plog.LogBlocked(req.BattingTeam, req.BowlingTeam, err)
		return nil, err
	}

	id := uuid.New()

	scorer, err := s.models.Get(ctx)
	if err != nil {
		return nil, s.failed(id, "", err)
	}
	info := scorer.Info()

	p, err := scorer.PredictProba(ctx, fv)
	if err != nil {
		return nil, s.failed(id, info.Source, err)
	}

	res, err := interpret.Interpret(p, m, req.Sides())
	if err != nil {
		return nil, s.failed(id, info.Source, err)
	}

	out := &Outcome{
		ID:            id,
		Metrics:       m,
		Features:      fv,
		Result:        res,
		ImpactFactors: interpret.ImpactFactors(m),
		Timeline:      BuildTimeline(m),
		Progress:      Progress{Runs: m.RunProgress(), Overs: m.OverProgress()},
		Model:         info,
	}

	elapsed := time.Since(start)
	metrics.RecordPrediction(string(res.Band), p, elapsed.Seconds())
	s.plog.LogPrediction(id.String(), req.BattingTeam, req.BowlingTeam, p, string(res.Band), info.ModelVersion, elapsed)

	s.record(ctx, req, out)
	return out, nil
}

// failed classifies a model-side error. Schema mismatches and load failures are
// permanent for the process and keep their identity. Everything else becomes a
// retryable ErrPredictionFailed.
func (s *Service) failed(id uuid.UUID, source string, err error) error {
	metrics.RecordPredictionFailure()
	s.plog.LogPredictionError(id.String(), source, err)
	if errors.Is(err, model.ErrSchemaMismatch) || errors.Is(err, model.ErrModelLoad) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrPredictionFailed, err)
}

// record appends the outcome to the prediction log. Failures are logged and
// never fail the request.
func (s *Service) record(ctx context.Context, req Request, out *Outcome) {
	if s.log == nil {
		return
	}

	row, err := json.Marshal(out.Features)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to encode feature row for prediction log")
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()

	rec := &repository.PredictionRecord{
		ID:             out.ID,
		BattingTeam:    req.BattingTeam,
		BowlingTeam:    req.BowlingTeam,
		Venue:          req.Venue,
		Target:         req.Target,
		CurrentScore:   req.CurrentScore,
		Wickets:        req.Wickets,
		OversCompleted: req.OversCompleted,
		WinProbability: out.Result.WinProbability,
		Band:           string(out.Result.Band),
		ModelSource:    out.Model.Source,
		ModelVersion:   out.Model.ModelVersion,
		SchemaVersion:  out.Model.SchemaVersion,
		Features:       row,
	}
	if err := s.log.Insert(ctx, rec); err != nil {
		s.logger.WithError(err).WithField("prediction_id", out.ID).Warn("Failed to record prediction")
	}
}

func blockReason(err error) string {
	switch {
	case errors.Is(err, match.ErrInningsComplete):
		return "innings_complete"
	case errors.Is(err, match.ErrTargetReached):
		return "target_reached"
	case errors.Is(err, features.ErrSameTeam):
		return "same_team"
	case errors.Is(err, features.ErrMissingContext):
		return "missing_context"
	default:
		return "other"
	}
}
