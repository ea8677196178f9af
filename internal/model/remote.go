package model

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/yourusername/chase-predictor/internal/features"
)

// RemoteConfig holds configuration for the inference service client
type RemoteConfig struct {
	BaseURL      string
	APIKey       string
	Timeout      time.Duration
	MaxRetries   int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	RateLimit    float64 // requests per second
	Breaker      BreakerConfig
}

// DefaultRemoteConfig returns recommended defaults
func DefaultRemoteConfig() RemoteConfig {
	return RemoteConfig{
		Timeout:      5 * time.Second,
		MaxRetries:   3,
		RetryWaitMin: 100 * time.Millisecond,
		RetryWaitMax: 2 * time.Second,
		RateLimit:    50,
		Breaker: BreakerConfig{
			MaxFailures:    5,
			FailureWindow:  time.Minute,
			CooldownPeriod: 30 * time.Second,
		},
	}
}

type scoreRequest struct {
	SchemaVersion string                 `json:"schema_version"`
	Features      features.FeatureVector `json:"features"`
}

type scoreResponse struct {
	Probability   float64 `json:"probability"`
	SchemaVersion string  `json:"schema_version"`
	ModelVersion  string  `json:"model_version"`
}

type schemaResponse struct {
	SchemaVersion string   `json:"schema_version"`
	ModelVersion  string   `json:"model_version"`
	Columns       []string `json:"columns"`
}

// RemoteScorer calls an external inference service over HTTP
type RemoteScorer struct {
	baseURL string
	apiKey  string
	client  *retryablehttp.Client
	limiter *rate.Limiter
	breaker *Breaker
	logger  *logrus.Entry
	info    Info
}

// NewRemoteScorer creates a client; call Describe before scoring to bind the model identity
func NewRemoteScorer(cfg RemoteConfig, logger *logrus.Logger) *RemoteScorer {
	entry := logger.WithField("component", "remote_scorer")

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient.Timeout = cfg.Timeout
	retryClient.RetryMax = cfg.MaxRetries
	retryClient.RetryWaitMin = cfg.RetryWaitMin
	retryClient.RetryWaitMax = cfg.RetryWaitMax
	retryClient.CheckRetry = retryPolicy
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.Logger = nil

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}

	return &RemoteScorer{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client:  retryClient,
		limiter: rate.NewLimiter(limit, 1),
		breaker: NewBreaker(cfg.Breaker, entry),
		logger:  entry,
		info:    Info{Source: SourceRemote},
	}
}

// RemoteLoader returns a loader that binds to the inference service and
// verifies its schema before any request is scored
func RemoteLoader(cfg RemoteConfig, logger *logrus.Logger) Loader {
	return func(ctx context.Context) (Scorer, error) {
		s := NewRemoteScorer(cfg, logger)
		if err := s.Describe(ctx); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrModelLoad, err)
		}
		return s, nil
	}
}

// Describe fetches the served model's schema and checks it against the feature contract
func (s *RemoteScorer) Describe(ctx context.Context) error {
	var out schemaResponse
	if err := s.call(ctx, http.MethodGet, "/v1/schema", nil, &out); err != nil {
		return err
	}
	if err := CheckSchema(out.SchemaVersion, out.Columns); err != nil {
		return err
	}

	s.info = Info{
		Source:        SourceRemote,
		ModelVersion:  out.ModelVersion,
		SchemaVersion: out.SchemaVersion,
		Columns:       out.Columns,
	}
	return nil
}

// PredictProba posts the feature row and validates the returned probability
func (s *RemoteScorer) PredictProba(ctx context.Context, fv features.FeatureVector) (float64, error) {
	start := time.Now()
	defer func() {
		ModelPredictionLatency.WithLabelValues(SourceRemote).Observe(time.Since(start).Seconds())
	}()

	body, err := json.Marshal(scoreRequest{SchemaVersion: features.SchemaVersion, Features: fv})
	if err != nil {
		return 0, fmt.Errorf("%w: encode request: %v", ErrScoringFailed, err)
	}

	var out scoreResponse
	if err := s.call(ctx, http.MethodPost, "/v1/score", body, &out); err != nil {
		ModelErrorsTotal.WithLabelValues(SourceRemote, errorType(err)).Inc()
		return 0, err
	}

	if out.SchemaVersion != features.SchemaVersion {
		ModelErrorsTotal.WithLabelValues(SourceRemote, "schema_mismatch").Inc()
		return 0, fmt.Errorf("%w: service answered with schema %q, features provide %q",
			ErrSchemaMismatch, out.SchemaVersion, features.SchemaVersion)
	}
	if err := checkProbability(out.Probability); err != nil {
		ModelErrorsTotal.WithLabelValues(SourceRemote, "invalid_probability").Inc()
		return 0, err
	}

	ModelPredictionsTotal.WithLabelValues(SourceRemote, "false").Inc()
	return out.Probability, nil
}

// Info describes the bound remote model
func (s *RemoteScorer) Info() Info {
	return s.info
}

// BreakerState exposes the circuit state
func (s *RemoteScorer) BreakerState() CircuitState {
	return s.breaker.State()
}

// Close releases idle connections
func (s *RemoteScorer) Close() error {
	s.client.HTTPClient.CloseIdleConnections()
	return nil
}

func (s *RemoteScorer) call(ctx context.Context, method, path string, body []byte, out any) error {
	if !s.breaker.Allow() {
		return fmt.Errorf("%w: circuit breaker open", ErrScorerUnavailable)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: rate limiter: %v", ErrScorerUnavailable, err)
	}

	var rawBody any
	if body != nil {
		rawBody = bytes.NewReader(body)
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, method, s.baseURL+path, rawBody)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrScoringFailed, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		wrapped := fmt.Errorf("%w: %v", ErrScorerUnavailable, err)
		s.breaker.RecordFailure(wrapped)
		return wrapped
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		wrapped := fmt.Errorf("%w: read response: %v", ErrScorerUnavailable, err)
		s.breaker.RecordFailure(wrapped)
		return wrapped
	}

	if resp.StatusCode != http.StatusOK {
		remoteErr := NewRemoteError(resp.StatusCode, strings.TrimSpace(string(payload)))
		if errors.Is(remoteErr, ErrScorerUnavailable) {
			s.breaker.RecordFailure(remoteErr)
		}
		s.logger.WithFields(logrus.Fields{
			"path":        path,
			"status_code": resp.StatusCode,
		}).Warn("Inference service returned error")
		return remoteErr
	}

	s.breaker.RecordSuccess()

	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrScoringFailed, err)
	}
	return nil
}

// retryPolicy retries network errors, 429 and 5xx; never other 4xx
func retryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		return true, nil
	}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return true, nil
	}
	return false, nil
}

func errorType(err error) string {
	switch {
	case errors.Is(err, ErrSchemaMismatch):
		return "schema_mismatch"
	case errors.Is(err, ErrScorerUnavailable):
		return "unavailable"
	default:
		return "scoring_failed"
	}
}
