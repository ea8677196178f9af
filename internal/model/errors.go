// Package model loads and calls the pre-trained win-probability classifier.
package model

import (
	"errors"
	"fmt"
)

var (
	// ErrModelLoad indicates the artifact is missing, unreadable or corrupt
	ErrModelLoad = errors.New("model load failed")

	// ErrSchemaMismatch indicates the feature row diverges from what the model was trained on
	ErrSchemaMismatch = errors.New("feature schema mismatch")

	// ErrScoringFailed indicates the model call itself failed
	ErrScoringFailed = errors.New("model scoring failed")

	// ErrScorerUnavailable indicates the remote scorer is unreachable or its circuit is open
	ErrScorerUnavailable = errors.New("model scorer unavailable")

	// ErrInvalidProbability indicates the model returned a value outside [0,1]
	ErrInvalidProbability = errors.New("model returned invalid probability")
)

// RemoteError carries the status and body of a failed inference call
type RemoteError struct {
	StatusCode int
	Body       string
	Cause      error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("inference service returned %d: %s", e.StatusCode, e.Body)
}

func (e *RemoteError) Unwrap() error {
	return e.Cause
}

// NewRemoteError maps an HTTP status to the matching sentinel
func NewRemoteError(status int, body string) *RemoteError {
	cause := ErrScoringFailed
	switch {
	case status == 422:
		cause = ErrSchemaMismatch
	case status == 429 || status >= 500:
		cause = ErrScorerUnavailable
	}
	return &RemoteError{StatusCode: status, Body: body, Cause: cause}
}
