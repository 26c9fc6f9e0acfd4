package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Dosada05/league-system/live"
	"github.com/Dosada05/league-system/services"
	"github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	hub              *live.Hub
	standingsService services.StandingsService
	upgrader         websocket.Upgrader
}

// NewWebSocketHandler accepts upgrades from allowedOrigins; "*" admits any
// origin. Requests without an Origin header are not browsers and pass.
func NewWebSocketHandler(hub *live.Hub, ss services.StandingsService, allowedOrigins []string) *WebSocketHandler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[strings.TrimRight(strings.TrimSpace(origin), "/")] = true
	}

	return &WebSocketHandler{
		hub:              hub,
		standingsService: ss,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed["*"] || allowed[strings.TrimRight(origin, "/")]
			},
		},
	}
}

// ServeLeague subscribes the client to league events. The current table is
// sent first so the client does not start empty.
func (h *WebSocketHandler) ServeLeague(w http.ResponseWriter, r *http.Request) {
	var snapshot []byte
	standings, err := h.standingsService.GetStandings(r.Context())
	if err != nil {
		slog.Warn("failed to load standings snapshot for live client", slog.Any("error", err))
	} else {
		snapshot, err = json.Marshal(services.LeagueEvent{
			Type:    services.EventStandingsUpdated,
			Payload: standings,
			RoomID:  services.LeagueRoom,
		})
		if err != nil {
			slog.Warn("failed to encode standings snapshot", slog.Any("error", err))
			snapshot = nil
		}
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", slog.String("remote", r.RemoteAddr), slog.Any("error", err))
		return
	}

	h.hub.Attach(conn, services.LeagueRoom, snapshot)
}
