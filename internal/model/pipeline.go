package model

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/yourusername/chase-predictor/internal/features"
)

// NumericStep is the fitted scaler and weight of one numeric column
type NumericStep struct {
	Mean  float64 `json:"mean"`
	Scale float64 `json:"scale"`
	Coef  float64 `json:"coef"`
}

// PipelineArtifact is the serialised classifier exported by the training job:
// one-hot encoding for categorical columns (unknown levels ignored), standard
// scaling for numeric columns, then logistic regression.
type PipelineArtifact struct {
	ModelVersion  string                        `json:"model_version"`
	SchemaVersion string                        `json:"schema_version"`
	Columns       []string                      `json:"columns"`
	Categorical   map[string]map[string]float64 `json:"categorical"`
	Numeric       map[string]NumericStep        `json:"numeric"`
	Intercept     float64                       `json:"intercept"`
}

// Pipeline scores feature rows with a loaded artifact. It is immutable after load.
type Pipeline struct {
	artifact PipelineArtifact
}

// LoadPipeline reads and verifies an artifact from disk
func LoadPipeline(path string) (*Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrModelLoad, path, err)
	}

	var artifact PipelineArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrModelLoad, path, err)
	}

	return NewPipeline(artifact)
}

// NewPipeline verifies an artifact against the feature contract
func NewPipeline(artifact PipelineArtifact) (*Pipeline, error) {
	if err := CheckSchema(artifact.SchemaVersion, artifact.Columns); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrModelLoad, err)
	}
	if len(artifact.Columns) == 0 {
		return nil, fmt.Errorf("%w: artifact declares no columns", ErrModelLoad)
	}

	for _, col := range features.Schema() {
		switch col.Kind {
		case features.Categorical:
			if _, ok := artifact.Categorical[col.Name]; !ok {
				return nil, fmt.Errorf("%w: %w: no encoder for %s", ErrModelLoad, ErrSchemaMismatch, col.Name)
			}
		case features.Numeric:
			step, ok := artifact.Numeric[col.Name]
			if !ok {
				return nil, fmt.Errorf("%w: %w: no scaler for %s", ErrModelLoad, ErrSchemaMismatch, col.Name)
			}
			if step.Scale == 0 || math.IsNaN(step.Scale) {
				return nil, fmt.Errorf("%w: zero scale for %s", ErrModelLoad, col.Name)
			}
		}
	}

	return &Pipeline{artifact: artifact}, nil
}

// PredictProba applies encoding, scaling and the logistic link
func (p *Pipeline) PredictProba(ctx context.Context, fv features.FeatureVector) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	cats, nums := fv.Categoricals(), fv.Numerics()

	// Summed in column order so the result is reproducible bit for bit.
	z := p.artifact.Intercept
	for _, col := range features.Schema() {
		if col.Kind == features.Categorical {
			z += p.artifact.Categorical[col.Name][cats[col.Name]]
			continue
		}
		step := p.artifact.Numeric[col.Name]
		z += step.Coef * (nums[col.Name] - step.Mean) / step.Scale
	}

	if math.IsNaN(z) || math.IsInf(z, 0) {
		return 0, fmt.Errorf("%w: non-finite decision value", ErrScoringFailed)
	}

	prob := 1 / (1 + math.Exp(-z))
	if err := checkProbability(prob); err != nil {
		return 0, err
	}
	ModelPredictionsTotal.WithLabelValues(SourceLocal, "false").Inc()
	return prob, nil
}

// Info describes the loaded artifact
func (p *Pipeline) Info() Info {
	return Info{
		Source:        SourceLocal,
		ModelVersion:  p.artifact.ModelVersion,
		SchemaVersion: p.artifact.SchemaVersion,
		Columns:       append([]string(nil), p.artifact.Columns...),
	}
}
