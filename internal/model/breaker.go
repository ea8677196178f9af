package model

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// CircuitState represents the state of the circuit breaker
type CircuitState int

const (
	// CircuitClosed means calls flow to the inference service
	CircuitClosed CircuitState = iota
	// CircuitHalfOpen means one trial call is allowed after cooldown
	CircuitHalfOpen
	// CircuitOpen means calls fail fast
	CircuitOpen
)

// String returns string representation of circuit state
func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "CLOSED"
	case CircuitHalfOpen:
		return "HALF_OPEN"
	case CircuitOpen:
		return "OPEN"
	default:
		return "UNKNOWN"
	}
}

// BreakerConfig defines circuit breaker thresholds
type BreakerConfig struct {
	MaxFailures    int
	FailureWindow  time.Duration
	CooldownPeriod time.Duration
}

// Breaker stops calling an inference service that keeps failing
type Breaker struct {
	config       BreakerConfig
	state        CircuitState
	failureCount int
	lastFailure  time.Time
	openedAt     time.Time
	mu           sync.Mutex
	logger       *logrus.Entry
	now          func() time.Time
}

// NewBreaker creates a closed breaker
func NewBreaker(config BreakerConfig, logger *logrus.Entry) *Breaker {
	if config.MaxFailures <= 0 {
		config.MaxFailures = 5
	}
	return &Breaker{
		config: config,
		state:  CircuitClosed,
		logger: logger,
		now:    time.Now,
	}
}

// Allow reports whether a call may proceed. An open circuit moves to
// half-open once the cooldown has elapsed.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == CircuitOpen && b.now().Sub(b.openedAt) >= b.config.CooldownPeriod {
		b.setStateLocked(CircuitHalfOpen)
		b.logger.Info("Circuit breaker entering half-open state after cooldown")
	}
	return b.state != CircuitOpen
}

// RecordFailure counts a failure and opens the circuit past the threshold.
// Any failure while half-open reopens immediately.
func (b *Breaker) RecordFailure(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	if b.config.FailureWindow > 0 && now.Sub(b.lastFailure) > b.config.FailureWindow {
		b.failureCount = 0
	}
	b.failureCount++
	b.lastFailure = now

	b.logger.WithFields(logrus.Fields{
		"failure_count": b.failureCount,
		"max_allowed":   b.config.MaxFailures,
		"error":         err.Error(),
	}).Warn("Inference failure recorded")

	if b.state == CircuitHalfOpen || b.failureCount >= b.config.MaxFailures {
		b.openLocked()
	}
}

// RecordSuccess closes the circuit and clears the failure count
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failureCount = 0
	if b.state != CircuitClosed {
		b.logger.Info("Circuit breaker closed after successful call")
		b.setStateLocked(CircuitClosed)
	}
}

// State returns current circuit state
func (b *Breaker) State() CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) openLocked() {
	if b.state == CircuitOpen {
		return
	}
	old := b.state
	b.setStateLocked(CircuitOpen)
	b.openedAt = b.now()

	b.logger.WithFields(logrus.Fields{
		"old_state":       old.String(),
		"failure_count":   b.failureCount,
		"cooldown_period": b.config.CooldownPeriod,
	}).Error("Circuit breaker opened")
}

func (b *Breaker) setStateLocked(s CircuitState) {
	b.state = s
	ModelBreakerState.Set(float64(s))
}
