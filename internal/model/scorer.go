package model

import (
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/yourusername/chase-predictor/internal/features"
)

// Sources a scorer can be loaded from
const (
	SourceLocal  = "local"
	SourceRemote = "remote"
)

// Scorer is the loaded classifier. Implementations are safe for concurrent use.
type Scorer interface {
	// PredictProba returns the probability of the positive class (batting side wins)
	PredictProba(ctx context.Context, fv features.FeatureVector) (float64, error)
	Info() Info
}

// Info describes a loaded model
type Info struct {
	Source        string   `json:"source"`
	ModelVersion  string   `json:"model_version"`
	SchemaVersion string   `json:"schema_version"`
	Columns       []string `json:"columns"`
}

// CheckSchema fails with ErrSchemaMismatch unless the model was trained on the
// exact column contract this build emits
func CheckSchema(schemaVersion string, columns []string) error {
	if schemaVersion != features.SchemaVersion {
		return fmt.Errorf("%w: model expects schema %q, features provide %q",
			ErrSchemaMismatch, schemaVersion, features.SchemaVersion)
	}
	if len(columns) > 0 && !slices.Equal(columns, features.Columns()) {
		return fmt.Errorf("%w: model columns %v, features provide %v",
			ErrSchemaMismatch, columns, features.Columns())
	}
	return nil
}

func checkProbability(p float64) error {
	if math.IsNaN(p) || p < 0 || p > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidProbability, p)
	}
	return nil
}
