package model

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// Loader acquires a scorer. It is called at most once per Handle.
type Loader func(ctx context.Context) (Scorer, error)

// Handle is the process-wide, load-once reference to the classifier.
// Concurrent first callers share a single load; afterwards the scorer is read-only.
type Handle struct {
	load   Loader
	logger *logrus.Entry

	once   sync.Once
	scorer Scorer
	err    error
	loaded atomic.Bool
}

// NewHandle creates a handle that loads lazily through load
func NewHandle(load Loader, logger *logrus.Logger) *Handle {
	return &Handle{
		load:   load,
		logger: logger.WithField("component", "model"),
	}
}

// Get returns the loaded scorer, loading it on first use. A failed load is
// remembered: the artifact is never re-read within the process. The load runs
// detached from ctx's cancellation so one abandoned caller cannot fail it for
// everyone.
func (h *Handle) Get(ctx context.Context) (Scorer, error) {
	h.once.Do(func() {
		start := time.Now()
		h.scorer, h.err = h.load(context.WithoutCancel(ctx))
		ModelLoadDuration.Observe(time.Since(start).Seconds())

		if h.err != nil {
			ModelLoadsTotal.WithLabelValues("failure").Inc()
			h.logger.WithError(h.err).Error("Failed to load model")
			return
		}

		info := h.scorer.Info()
		ModelLoadsTotal.WithLabelValues("success").Inc()
		ModelInfo.WithLabelValues(info.Source, info.ModelVersion, info.SchemaVersion).Set(1)
		h.loaded.Store(true)
		h.logger.WithFields(logrus.Fields{
			"source":         info.Source,
			"model_version":  info.ModelVersion,
			"schema_version": info.SchemaVersion,
			"duration":       time.Since(start),
		}).Info("Model loaded")
	})
	return h.scorer, h.err
}

// Loaded reports whether a scorer is available without triggering a load
func (h *Handle) Loaded() bool {
	return h.loaded.Load()
}

// BreakerState reports the remote scorer's circuit state. ok is false when no
// remote scorer is loaded.
func (h *Handle) BreakerState() (state string, ok bool) {
	r := h.remote()
	if r == nil {
		return "", false
	}
	return r.BreakerState().String(), true
}

// Close releases the remote scorer's idle connections, if one is loaded
func (h *Handle) Close() error {
	if r := h.remote(); r != nil {
		return r.Close()
	}
	return nil
}

func (h *Handle) remote() *RemoteScorer {
	if !h.loaded.Load() {
		return nil
	}
	s := h.scorer
	for {
		switch v := s.(type) {
		case *RemoteScorer:
			return v
		case interface{ Unwrap() Scorer }:
			s = v.Unwrap()
		default:
			return nil
		}
	}
}

// LocalLoader loads a pipeline artifact from path
func LocalLoader(path string) Loader {
	return func(ctx context.Context) (Scorer, error) {
		p, err := LoadPipeline(path)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
}
