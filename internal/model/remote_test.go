package model

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/chase-predictor/internal/features"
	"github.com/yourusername/chase-predictor/internal/match"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func testRemoteConfig(url string) RemoteConfig {
	cfg := DefaultRemoteConfig()
	cfg.BaseURL = url
	cfg.MaxRetries = 2
	cfg.RetryWaitMin = time.Millisecond
	cfg.RetryWaitMax = 2 * time.Millisecond
	cfg.RateLimit = 0
	cfg.Breaker.CooldownPeriod = time.Hour
	return cfg
}

type fakeInference struct {
	mu            sync.Mutex
	schemaVersion string
	probability   float64
	scoreStatus   int
	scoreCalls    atomic.Int32
	lastRequest   scoreRequest
	authHeader    string
}

func (f *fakeInference) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/schema", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(schemaResponse{
			SchemaVersion: f.schemaVersion,
			ModelVersion:  "remote-7",
			Columns:       features.Columns(),
		})
	})
	mux.HandleFunc("/v1/score", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.scoreCalls.Add(1)
		f.authHeader = r.Header.Get("Authorization")
		if f.scoreStatus != 0 {
			http.Error(w, "boom", f.scoreStatus)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&f.lastRequest)
		_ = json.NewEncoder(w).Encode(scoreResponse{
			Probability:   f.probability,
			SchemaVersion: f.schemaVersion,
			ModelVersion:  "remote-7",
		})
	})
	return mux
}

func liveVector(t *testing.T) features.FeatureVector {
	return vectorFor(t, match.MatchState{Target: 180, CurrentScore: 85, Wickets: 4, OversCompleted: 10})
}

func TestRemoteScorerPredict(t *testing.T) {
	fake := &fakeInference{schemaVersion: features.SchemaVersion, probability: 0.64}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	cfg := testRemoteConfig(srv.URL)
	cfg.APIKey = "secret"
	scorer, err := RemoteLoader(cfg, quietLogger())(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "remote-7", scorer.Info().ModelVersion)
	assert.Equal(t, SourceRemote, scorer.Info().Source)

	fv := liveVector(t)
	p, err := scorer.PredictProba(context.Background(), fv)
	require.NoError(t, err)
	assert.Equal(t, 0.64, p)

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Equal(t, fv, fake.lastRequest.Features)
	assert.Equal(t, features.SchemaVersion, fake.lastRequest.SchemaVersion)
	assert.Equal(t, "Bearer secret", fake.authHeader)
}

func TestRemoteLoaderRejectsForeignSchema(t *testing.T) {
	fake := &fakeInference{schemaVersion: "ipl-chase-v1"}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	_, err := RemoteLoader(testRemoteConfig(srv.URL), quietLogger())(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrModelLoad))
	assert.True(t, errors.Is(err, ErrSchemaMismatch))
}

func TestRemoteScorerErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		probability float64
		want        error
		wantCalls   int32
	}{
		{"unprocessable row", http.StatusUnprocessableEntity, 0, ErrSchemaMismatch, 1},
		{"bad request", http.StatusBadRequest, 0, ErrScoringFailed, 1},
		{"server error retried", http.StatusServiceUnavailable, 0, ErrScorerUnavailable, 3},
		{"not a probability", 0, 1.7, ErrInvalidProbability, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeInference{schemaVersion: features.SchemaVersion, probability: tt.probability, scoreStatus: tt.status}
			srv := httptest.NewServer(fake.handler())
			defer srv.Close()

			scorer := NewRemoteScorer(testRemoteConfig(srv.URL), quietLogger())
			require.NoError(t, scorer.Describe(context.Background()))

			_, err := scorer.PredictProba(context.Background(), liveVector(t))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.Equal(t, tt.wantCalls, fake.scoreCalls.Load())

			var remoteErr *RemoteError
			if tt.status != 0 {
				require.True(t, errors.As(err, &remoteErr))
				assert.Equal(t, tt.status, remoteErr.StatusCode)
			}
		})
	}
}

func TestRemoteScorerSchemaDriftPerRequest(t *testing.T) {
	fake := &fakeInference{schemaVersion: features.SchemaVersion, probability: 0.5}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	scorer := NewRemoteScorer(testRemoteConfig(srv.URL), quietLogger())
	require.NoError(t, scorer.Describe(context.Background()))

	fake.mu.Lock()
	fake.schemaVersion = "ipl-chase-v3"
	fake.mu.Unlock()
	_, err := scorer.PredictProba(context.Background(), liveVector(t))
	assert.True(t, errors.Is(err, ErrSchemaMismatch))
}

func TestRemoteScorerBreakerOpens(t *testing.T) {
	fake := &fakeInference{schemaVersion: features.SchemaVersion, scoreStatus: http.StatusInternalServerError}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	cfg := testRemoteConfig(srv.URL)
	cfg.MaxRetries = 0
	cfg.Breaker.MaxFailures = 2
	scorer := NewRemoteScorer(cfg, quietLogger())
	require.NoError(t, scorer.Describe(context.Background()))

	for i := 0; i < 2; i++ {
		_, err := scorer.PredictProba(context.Background(), liveVector(t))
		require.Error(t, err)
	}
	assert.Equal(t, CircuitOpen, scorer.BreakerState())

	_, err := scorer.PredictProba(context.Background(), liveVector(t))
	assert.True(t, errors.Is(err, ErrScorerUnavailable))
	assert.Equal(t, int32(2), fake.scoreCalls.Load(), "open circuit must not reach the service")
}

func TestNewRemoteError(t *testing.T) {
	assert.True(t, errors.Is(NewRemoteError(422, ""), ErrSchemaMismatch))
	assert.True(t, errors.Is(NewRemoteError(429, ""), ErrScorerUnavailable))
	assert.True(t, errors.Is(NewRemoteError(502, ""), ErrScorerUnavailable))
	assert.True(t, errors.Is(NewRemoteError(404, ""), ErrScoringFailed))
	assert.Contains(t, NewRemoteError(500, "down").Error(), "500: down")
}
