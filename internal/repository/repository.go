// Package repository provides persistence for served predictions.
package repository

import (
	"fmt"

	"github.com/yourusername/chase-predictor/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	PredictionLog PredictionLogRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		PredictionLog: NewPostgresPredictionLogRepository(db),
	}, nil
}
