package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/Dosada05/league-system/services"
)

// Pinger is satisfied by *sqlx.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PublicConfig is what the browser client needs to reach the identity
// provider. It never carries secrets.
type PublicConfig struct {
	IdentityProviderURL string `json:"identity_provider_url"`
	IdentityPublicKey   string `json:"identity_public_key"`
	APIBaseURL          string `json:"api_base_url"`
}

type DashboardHandler struct {
	standingsService services.StandingsService
	db               Pinger
	publicConfig     PublicConfig
}

func NewDashboardHandler(ss services.StandingsService, db Pinger, cfg PublicConfig) *DashboardHandler {
	return &DashboardHandler{standingsService: ss, db: db, publicConfig: cfg}
}

func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.standingsService.GetLeagueStats(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"playersCount":         stats.TotalPlayers,
		"upcomingMatchesCount": stats.UpcomingMatches,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *DashboardHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.db != nil {
		if err := h.db.PingContext(ctx); err != nil {
			serviceUnavailableResponse(w, r, "database unavailable")
			return
		}
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"status": "ok"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *DashboardHandler) Config(w http.ResponseWriter, r *http.Request) {
	if err := writeJSON(w, http.StatusOK, h.publicConfig, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
