package api

import (
	"net/http"

	"github.com/yourusername/chase-predictor/internal/interpret"
	"github.com/yourusername/chase-predictor/internal/match"
	"github.com/yourusername/chase-predictor/internal/prediction"
	"github.com/yourusername/chase-predictor/internal/reference"
)

// PredictionResponse is a scored chase with the side-by-side team cards
type PredictionResponse struct {
	*prediction.Outcome
	Matchup reference.Matchup `json:"matchup"`
}

// MetricsResponse is the model-free view of a match state
type MetricsResponse struct {
	Metrics       match.DerivedMetrics `json:"metrics"`
	Live          bool                 `json:"live"`
	NotLiveReason string               `json:"not_live_reason,omitempty"`
	OversLeft     string               `json:"overs_left"`
	Progress      prediction.Progress  `json:"progress"`
	ImpactFactors []interpret.Fact     `json:"impact_factors"`
}

// CreatePrediction scores a live chase
func (h *Handler) CreatePrediction(w http.ResponseWriter, r *http.Request) {
	var req prediction.Request
	if err := decode(w, r, &req); err != nil {
		h.errorResponse(w, r, http.StatusBadRequest, CodeInvalidInput, "malformed request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		h.fail(w, r, err)
		return
	}

	out, err := h.predictor.Predict(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	resp := PredictionResponse{Outcome: out}
	if h.catalog != nil {
		resp.Matchup = h.catalog.Compare(req.BattingTeam, req.BowlingTeam)
	}
	h.jsonResponse(w, http.StatusOK, resp)
}

// ComputeMetrics returns derived metrics for any valid state, live or not
func (h *Handler) ComputeMetrics(w http.ResponseWriter, r *http.Request) {
	state, ok := h.decodeState(w, r)
	if !ok {
		return
	}

	m := h.predictor.Metrics(state)
	resp := MetricsResponse{
		Metrics:       m,
		Live:          m.Live,
		OversLeft:     m.OversLeft(),
		Progress:      prediction.Progress{Runs: m.RunProgress(), Overs: m.OverProgress()},
		ImpactFactors: interpret.ImpactFactors(m),
	}
	if err := m.NotLiveReason(); err != nil {
		resp.NotLiveReason = err.Error()
	}
	h.jsonResponse(w, http.StatusOK, resp)
}

// ProjectTimeline returns the 21-point innings projection
func (h *Handler) ProjectTimeline(w http.ResponseWriter, r *http.Request) {
	state, ok := h.decodeState(w, r)
	if !ok {
		return
	}
	h.jsonResponse(w, http.StatusOK, h.predictor.Timeline(state))
}

func (h *Handler) decodeState(w http.ResponseWriter, r *http.Request) (match.MatchState, bool) {
	var state match.MatchState
	if err := decode(w, r, &state); err != nil {
		h.errorResponse(w, r, http.StatusBadRequest, CodeInvalidInput, "malformed request body: "+err.Error())
		return state, false
	}
	if err := state.Validate(); err != nil {
		h.fail(w, r, err)
		return state, false
	}
	return state, true
}
