package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Dosada05/league-system/handlers"
	"github.com/Dosada05/league-system/identity"
	"github.com/Dosada05/league-system/models"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

type tokenGateway map[string]models.Identity

func (g tokenGateway) Authenticate(_ context.Context, token string) (models.Identity, error) {
	id, ok := g[token]
	if !ok {
		return models.Identity{}, identity.ErrInvalidToken
	}
	return id, nil
}

func newRouter() http.Handler {
	gateway := tokenGateway{
		"member-token": {UserID: "u1", Role: models.RoleMember},
		"admin-token":  {UserID: "u2", Role: models.RoleAdmin},
	}
	router := chi.NewRouter()
	SetupRoutes(router, gateway, []string{"https://league.example.com"}, Handlers{
		Player:    handlers.NewPlayerHandler(nil),
		Match:     handlers.NewMatchHandler(nil),
		League:    handlers.NewLeagueHandler(nil),
		Dashboard: handlers.NewDashboardHandler(nil, nil, handlers.PublicConfig{APIBaseURL: "https://api.example.com"}),
		WebSocket: handlers.NewWebSocketHandler(nil, nil, nil),
	})
	return router
}

func serve(h http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSetupRoutes_PublicEndpoints(t *testing.T) {
	router := newRouter()

	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/api/config", "").Code)
}

func TestSetupRoutes_ProfileRequiresToken(t *testing.T) {
	router := newRouter()

	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodGet, "/api/players/profile", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodPut, "/api/players/profile", "bogus").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodPut, "/api/players/profile/avatar", "").Code)
}

func TestSetupRoutes_AdminOnlyMatchWrites(t *testing.T) {
	router := newRouter()

	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodPost, "/api/matches/schedule", "").Code)
	assert.Equal(t, http.StatusForbidden, serve(router, http.MethodPost, "/api/matches/schedule", "member-token").Code)
	assert.Equal(t, http.StatusForbidden, serve(router, http.MethodPut, "/api/matches/m-1/result", "member-token").Code)
}

func TestSetupRoutes_CORSPreflight(t *testing.T) {
	router := newRouter()

	req := httptest.NewRequest(http.MethodOptions, "/api/league/standings", nil)
	req.Header.Set("Origin", "https://league.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "https://league.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestSetupRoutes_UnknownRoute(t *testing.T) {
	rec := serve(newRouter(), http.MethodGet, "/api/nowhere", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"route not found"}`, rec.Body.String())
}
