package routes

import (
	"net/http"
	"time"

	"github.com/Dosada05/league-system/handlers"
	"github.com/Dosada05/league-system/identity"
	"github.com/Dosada05/league-system/middleware"
	"github.com/Dosada05/league-system/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Handlers struct {
	Player    *handlers.PlayerHandler
	Match     *handlers.MatchHandler
	League    *handlers.LeagueHandler
	Dashboard *handlers.DashboardHandler
	WebSocket *handlers.WebSocketHandler
}

func SetupRoutes(router chi.Router, gateway identity.Gateway, allowedOrigins []string, h Handlers) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(gateway)
	adminOnly := middleware.Authorize(models.RoleAdmin)

	router.Get("/health", h.Dashboard.Health)
	router.Get("/ws/league", h.WebSocket.ServeLeague)

	router.Route("/api", func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(30 * time.Second))

		r.Get("/config", h.Dashboard.Config)
		r.Get("/dashboard", h.Dashboard.Stats)

		r.Route("/players", func(r chi.Router) {
			r.Get("/", h.Player.ListPlayers)
			r.Get("/search/{query}", h.Player.SearchPlayers)

			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Get("/profile", h.Player.GetProfile)
				r.Post("/profile", h.Player.RegisterProfile)
				r.Put("/profile", h.Player.UpdateProfile)
				r.Put("/profile/avatar", h.Player.UploadAvatar)
			})
		})

		r.Route("/matches", func(r chi.Router) {
			r.Get("/upcoming", h.Match.ListUpcoming)
			r.Get("/history/{playerID}", h.Match.ListHistory)
			r.Get("/{matchID}", h.Match.GetMatch)

			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Use(adminOnly)
				r.Post("/schedule", h.Match.Schedule)
				r.Put("/{matchID}/result", h.Match.RecordResult)
			})
		})

		r.Route("/league", func(r chi.Router) {
			r.Get("/standings", h.League.GetStandings)
			r.Get("/stats", h.League.GetStats)
			r.Get("/player-stats/{playerID}", h.League.GetPlayerStats)
			r.Get("/top/{limit}", h.League.GetTopPlayers)
			r.Post("/add-player", h.League.AddPlayer)
		})
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"route not found"}` + "\n"))
	})
}
