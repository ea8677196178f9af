package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yourusername/chase-predictor/internal/reference"
)

// ListTeams returns the catalog teams. With ?batting=<team> it lists only the
// possible bowling sides.
func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	if batting := r.URL.Query().Get("batting"); batting != "" {
		h.jsonResponse(w, http.StatusOK, map[string]any{"teams": h.catalog.Opponents(batting)})
		return
	}
	h.jsonResponse(w, http.StatusOK, map[string]any{"teams": h.catalog.TeamNames()})
}

// GetTeam returns one team's colour and stat cards
func (h *Handler) GetTeam(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "team")

	team, err := h.catalog.Team(name)
	if errors.Is(err, reference.ErrUnknownTeam) {
		h.errorResponse(w, r, http.StatusNotFound, CodeNotFound, err.Error())
		return
	}
	h.jsonResponse(w, http.StatusOK, team)
}

// ListVenues returns the catalog venues
func (h *Handler) ListVenues(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, http.StatusOK, map[string]any{"venues": h.catalog.VenueNames()})
}

// GetMatchup compares the two sides of a chase
func (h *Handler) GetMatchup(w http.ResponseWriter, r *http.Request) {
	batting := r.URL.Query().Get("batting")
	bowling := r.URL.Query().Get("bowling")
	if batting == "" || bowling == "" {
		h.errorResponse(w, r, http.StatusBadRequest, CodeInvalidInput, "batting and bowling are required")
		return
	}
	h.jsonResponse(w, http.StatusOK, h.catalog.Compare(batting, bowling))
}
