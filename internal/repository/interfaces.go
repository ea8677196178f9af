package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound indicates the requested record does not exist
var ErrNotFound = errors.New("record not found")

// PredictionRecord is one served prediction, kept for audit and calibration
type PredictionRecord struct {
	ID             uuid.UUID       `json:"id"`
	CreatedAt      time.Time       `json:"created_at"`
	BattingTeam    string          `json:"batting_team"`
	BowlingTeam    string          `json:"bowling_team"`
	Venue          string          `json:"venue"`
	Target         int             `json:"target"`
	CurrentScore   int             `json:"current_score"`
	Wickets        int             `json:"wickets"`
	OversCompleted float64         `json:"overs_completed"`
	WinProbability float64         `json:"win_probability"`
	Band           string          `json:"band"`
	ModelSource    string          `json:"model_source"`
	ModelVersion   string          `json:"model_version"`
	SchemaVersion  string          `json:"schema_version"`
	Features       json.RawMessage `json:"features"`
}

// PredictionLogRepository defines the interface for prediction log access
type PredictionLogRepository interface {
	Insert(ctx context.Context, record *PredictionRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*PredictionRecord, error)
	GetRecent(ctx context.Context, limit int) ([]*PredictionRecord, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
