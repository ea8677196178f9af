package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/chase-predictor/internal/config"
)

const schema = `
CREATE TABLE IF NOT EXISTS prediction_log (
	id                UUID PRIMARY KEY,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	batting_team      TEXT NOT NULL,
	bowling_team      TEXT NOT NULL,
	venue             TEXT NOT NULL,
	target            INTEGER NOT NULL,
	current_score     INTEGER NOT NULL,
	wickets           INTEGER NOT NULL,
	overs_completed   DOUBLE PRECISION NOT NULL,
	win_probability   DOUBLE PRECISION NOT NULL,
	band              TEXT NOT NULL,
	model_source      TEXT NOT NULL,
	model_version     TEXT NOT NULL,
	schema_version    TEXT NOT NULL,
	features          JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS prediction_log_created_at_idx ON prediction_log (created_at);
`

// Initialize creates a database connection pool and ensures the prediction log table exists
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// EnsureSchema creates the prediction log table and index if missing
func (db *DB) EnsureSchema(ctx context.Context) error {
	return db.WithTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, schema); err != nil {
			return fmt.Errorf("failed to create prediction log schema: %w", err)
		}
		return nil
	})
}
