// Package identity resolves bearer credentials to league identities using an
// external identity provider.
package identity

import (
	"context"
	"errors"

	"github.com/Dosada05/league-system/models"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrThrottled    = errors.New("identity provider is throttling requests")
)

// Gateway verifies a bearer token and returns the identity it belongs to.
type Gateway interface {
	Authenticate(ctx context.Context, token string) (models.Identity, error)
}
