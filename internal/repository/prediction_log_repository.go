package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/chase-predictor/internal/database"
)

const predictionColumns = `id, created_at, batting_team, bowling_team, venue, target, current_score, wickets,
	overs_completed, win_probability, band, model_source, model_version, schema_version, features`

// PostgresPredictionLogRepository implements PredictionLogRepository for PostgreSQL
type PostgresPredictionLogRepository struct {
	db *database.DB
}

// NewPostgresPredictionLogRepository creates a new prediction log repository
func NewPostgresPredictionLogRepository(db *database.DB) PredictionLogRepository {
	return &PostgresPredictionLogRepository{db: db}
}

// Insert stores a prediction; ID and CreatedAt are filled when zero
func (r *PostgresPredictionLogRepository) Insert(ctx context.Context, rec *PredictionRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO prediction_log (` + predictionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		rec.ID, rec.CreatedAt, rec.BattingTeam, rec.BowlingTeam, rec.Venue,
		rec.Target, rec.CurrentScore, rec.Wickets, rec.OversCompleted,
		rec.WinProbability, rec.Band, rec.ModelSource, rec.ModelVersion, rec.SchemaVersion, rec.Features,
	)
	if err != nil {
		return fmt.Errorf("failed to insert prediction: %w", err)
	}

	return nil
}

// GetByID retrieves a prediction by ID
func (r *PostgresPredictionLogRepository) GetByID(ctx context.Context, id uuid.UUID) (*PredictionRecord, error) {
	query := `SELECT ` + predictionColumns + ` FROM prediction_log WHERE id = $1`

	rec, err := scanPrediction(r.db.GetPool().QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prediction: %w", err)
	}

	return rec, nil
}

// GetRecent retrieves the newest predictions first
func (r *PostgresPredictionLogRepository) GetRecent(ctx context.Context, limit int) ([]*PredictionRecord, error) {
	query := `SELECT ` + predictionColumns + ` FROM prediction_log ORDER BY created_at DESC LIMIT $1`

	rows, err := r.db.GetPool().Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent predictions: %w", err)
	}
	defer rows.Close()

	var records []*PredictionRecord
	for rows.Next() {
		rec, err := scanPrediction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// DeleteOlderThan removes predictions created before cutoff and reports how many
func (r *PostgresPredictionLogRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.GetPool().Exec(ctx, `DELETE FROM prediction_log WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge predictions: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanPrediction(row pgx.Row) (*PredictionRecord, error) {
	rec := &PredictionRecord{}
	err := row.Scan(
		&rec.ID, &rec.CreatedAt, &rec.BattingTeam, &rec.BowlingTeam, &rec.Venue,
		&rec.Target, &rec.CurrentScore, &rec.Wickets, &rec.OversCompleted,
		&rec.WinProbability, &rec.Band, &rec.ModelSource, &rec.ModelVersion, &rec.SchemaVersion, &rec.Features,
	)
	if err != nil {
		return nil, err
	}
	return rec, nil
}
