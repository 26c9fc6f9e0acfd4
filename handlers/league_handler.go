package handlers

import (
	"net/http"
	"strconv"

	"github.com/Dosada05/league-system/services"
	"github.com/go-chi/chi/v5"
)

type LeagueHandler struct {
	standingsService services.StandingsService
}

func NewLeagueHandler(ss services.StandingsService) *LeagueHandler {
	return &LeagueHandler{standingsService: ss}
}

type addPlayerInput struct {
	PlayerID string `json:"player_id"`
	// LeagueID is accepted from older clients; there is a single league.
	LeagueID *string `json:"league_id,omitempty"`
}

func (h *LeagueHandler) GetStandings(w http.ResponseWriter, r *http.Request) {
	standings, err := h.standingsService.GetStandings(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, standings, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *LeagueHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.standingsService.GetLeagueStats(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, stats, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *LeagueHandler) GetPlayerStats(w http.ResponseWriter, r *http.Request) {
	standing, err := h.standingsService.GetPlayerStats(r.Context(), chi.URLParam(r, "playerID"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, standing.Stats(), nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetTopPlayers serves the head of the table. A limit that is not a positive
// number falls back to the default.
func (h *LeagueHandler) GetTopPlayers(w http.ResponseWriter, r *http.Request) {
	limit, err := strconv.Atoi(chi.URLParam(r, "limit"))
	if err != nil {
		limit = 0
	}

	standings, err := h.standingsService.GetTopPlayers(r.Context(), limit)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, standings, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *LeagueHandler) AddPlayer(w http.ResponseWriter, r *http.Request) {
	var input addPlayerInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	standing, err := h.standingsService.AddPlayerToLeague(r.Context(), input.PlayerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, standing, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
