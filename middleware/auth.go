package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Dosada05/league-system/identity"
	"github.com/Dosada05/league-system/models"
)

type contextKey string

const identityContextKey contextKey = "identity"

// Authenticate resolves the bearer token through gateway and stores the
// identity in the request context. Missing or rejected tokens get 401.
func Authenticate(gateway identity.Gateway) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, identity.ErrMissingToken.Error())
				return
			}

			id, err := gateway.Authenticate(r.Context(), token)
			if err != nil {
				switch {
				case errors.Is(err, identity.ErrMissingToken), errors.Is(err, identity.ErrInvalidToken):
					writeError(w, http.StatusUnauthorized, "Invalid or expired token")
				case errors.Is(err, identity.ErrThrottled):
					writeError(w, http.StatusServiceUnavailable, "Identity provider unavailable, retry later")
				default:
					slog.Error("identity gateway failure", slog.String("path", r.URL.Path), slog.Any("error", err))
					writeError(w, http.StatusInternalServerError, "Internal server error")
				}
				return
			}

			ctx := WithIdentity(r.Context(), id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Authorize admits requests whose identity holds one of roles. It must run
// after Authenticate.
func Authorize(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, identity.ErrMissingToken.Error())
				return
			}
			if !HasRole(id, roles...) {
				writeError(w, http.StatusForbidden, "Admin access required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// HasRole reports whether id holds any of roles.
func HasRole(id models.Identity, roles ...models.Role) bool {
	for _, role := range roles {
		if id.Role == role {
			return true
		}
	}
	return false
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
