package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/yourusername/chase-predictor/internal/features"
	"github.com/yourusername/chase-predictor/internal/match"
	"github.com/yourusername/chase-predictor/internal/model"
	"github.com/yourusername/chase-predictor/internal/prediction"
)

// Error codes returned in ErrorResponse.Code
const (
	CodeInvalidInput     = "invalid_input"
	CodeNotLive          = "match_not_live"
	CodeSchemaMismatch   = "schema_mismatch"
	CodePredictionFailed = "prediction_failed"
	CodeModelUnavailable = "model_unavailable"
	CodeNotFound         = "not_found"
	CodeRateLimited      = "rate_limited"
	CodeInternal         = "internal_error"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Retryable bool   `json:"retryable"`
	RequestID string `json:"request_id,omitempty"`
}

func (h *Handler) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.WithError(err).Warn("Failed to encode response")
	}
}

func (h *Handler) errorResponse(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	h.jsonResponse(w, status, ErrorResponse{
		Error:     message,
		Code:      code,
		Retryable: status == http.StatusBadGateway || status == http.StatusTooManyRequests,
		RequestID: RequestIDFrom(r.Context()),
	})
}

// classify maps an error onto a status and code
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, match.ErrInvalidInput),
		errors.Is(err, features.ErrSameTeam),
		errors.Is(err, features.ErrMissingContext):
		return http.StatusBadRequest, CodeInvalidInput
	case errors.Is(err, match.ErrInvalidMatchState):
		return http.StatusUnprocessableEntity, CodeNotLive
	case errors.Is(err, model.ErrSchemaMismatch):
		return http.StatusInternalServerError, CodeSchemaMismatch
	case errors.Is(err, model.ErrModelLoad):
		return http.StatusServiceUnavailable, CodeModelUnavailable
	case errors.Is(err, prediction.ErrPredictionFailed):
		return http.StatusBadGateway, CodePredictionFailed
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		h.logger.WithError(err).WithField("request_id", RequestIDFrom(r.Context())).Error("Request failed")
	}
	msg := err.Error()
	if code == CodeInternal {
		msg = "internal error"
	}
	h.errorResponse(w, r, status, code, msg)
}

// decode reads a JSON body into dst, rejecting unknown fields and oversized bodies
func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
