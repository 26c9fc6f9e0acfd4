package identity

import (
	"context"
	"fmt"
	"strings"

	"github.com/Dosada05/league-system/models"
	"github.com/golang-jwt/jwt/v4"
)

// Claims is the token shape issued by the hosted auth provider. The league
// role lives in user_metadata, with app_metadata as a fallback.
type Claims struct {
	Email        string                 `json:"email,omitempty"`
	UserMetadata map[string]interface{} `json:"user_metadata,omitempty"`
	AppMetadata  map[string]interface{} `json:"app_metadata,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) role() models.Role {
	for _, metadata := range []map[string]interface{}{c.UserMetadata, c.AppMetadata} {
		if role, ok := metadata["role"].(string); ok && role != "" {
			return models.ParseRole(role)
		}
	}
	return models.RoleMember
}

// JWTGateway verifies HS256 tokens signed with the provider's service secret.
type JWTGateway struct {
	secret []byte
	issuer string
}

// NewJWTGateway builds a verifier. When issuer is not empty the iss claim
// must match it.
func NewJWTGateway(secret, issuer string) (*JWTGateway, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	return &JWTGateway{secret: []byte(secret), issuer: strings.TrimRight(issuer, "/")}, nil
}

func (g *JWTGateway) Authenticate(_ context.Context, token string) (models.Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return models.Identity{}, ErrMissingToken
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return g.secret, nil
	})
	if err != nil || !parsed.Valid {
		return models.Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.Subject == "" {
		return models.Identity{}, fmt.Errorf("%w: missing sub claim", ErrInvalidToken)
	}
	if g.issuer != "" && strings.TrimRight(claims.Issuer, "/") != g.issuer {
		return models.Identity{}, fmt.Errorf("%w: unexpected issuer %q", ErrInvalidToken, claims.Issuer)
	}

	return models.Identity{
		UserID: claims.Subject,
		Email:  claims.Email,
		Role:   claims.role(),
	}, nil
}
