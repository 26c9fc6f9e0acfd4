package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Dosada05/league-system/models"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "super-secret-signing-key"

func signToken(t *testing.T, method jwt.SigningMethod, key interface{}, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func validClaims() Claims {
	return Claims{
		Email:        "amy@example.com",
		UserMetadata: map[string]interface{}{"role": "admin"},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			Issuer:    "https://auth.example.com/auth/v1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestJWTGatewayAuthenticate(t *testing.T) {
	gateway, err := NewJWTGateway(testSecret, "https://auth.example.com/auth/v1/")
	require.NoError(t, err)

	identity, err := gateway.Authenticate(context.Background(), signToken(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims()))
	require.NoError(t, err)
	assert.Equal(t, models.Identity{UserID: "user-1", Email: "amy@example.com", Role: models.RoleAdmin}, identity)
}

func TestJWTGatewayRoleResolution(t *testing.T) {
	gateway, err := NewJWTGateway(testSecret, "")
	require.NoError(t, err)

	tests := []struct {
		name string
		user map[string]interface{}
		app  map[string]interface{}
		want models.Role
	}{
		{"no metadata", nil, nil, models.RoleMember},
		{"app metadata admin", nil, map[string]interface{}{"role": "admin"}, models.RoleAdmin},
		{"user metadata wins", map[string]interface{}{"role": "member"}, map[string]interface{}{"role": "admin"}, models.RoleMember},
		{"unknown role", map[string]interface{}{"role": "superuser"}, nil, models.RoleMember},
		{"non string role", map[string]interface{}{"role": 7}, nil, models.RoleMember},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			claims := validClaims()
			claims.UserMetadata, claims.AppMetadata = tc.user, tc.app

			identity, err := gateway.Authenticate(context.Background(), signToken(t, jwt.SigningMethodHS256, []byte(testSecret), claims))
			require.NoError(t, err)
			assert.Equal(t, tc.want, identity.Role)
		})
	}
}

func TestJWTGatewayRejects(t *testing.T) {
	gateway, err := NewJWTGateway(testSecret, "https://auth.example.com/auth/v1")
	require.NoError(t, err)

	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	noSubject := validClaims()
	noSubject.Subject = ""
	wrongIssuer := validClaims()
	wrongIssuer.Issuer = "https://evil.example.com"

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"empty", "  ", ErrMissingToken},
		{"garbage", "not.a.token", ErrInvalidToken},
		{"wrong secret", signToken(t, jwt.SigningMethodHS256, []byte("other"), validClaims()), ErrInvalidToken},
		{"expired", signToken(t, jwt.SigningMethodHS256, []byte(testSecret), expired), ErrInvalidToken},
		{"no subject", signToken(t, jwt.SigningMethodHS256, []byte(testSecret), noSubject), ErrInvalidToken},
		{"wrong issuer", signToken(t, jwt.SigningMethodHS256, []byte(testSecret), wrongIssuer), ErrInvalidToken},
		{"none algorithm", signToken(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, validClaims()), ErrInvalidToken},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := gateway.Authenticate(context.Background(), tc.token)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestNewJWTGatewayRequiresSecret(t *testing.T) {
	_, err := NewJWTGateway("", "")
	assert.Error(t, err)
}

type fakeCognito struct {
	out   *cognitoidentityprovider.GetUserOutput
	err   error
	token string
}

func (f *fakeCognito) GetUser(_ context.Context, params *cognitoidentityprovider.GetUserInput, _ ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.GetUserOutput, error) {
	f.token = aws.ToString(params.AccessToken)
	return f.out, f.err
}

func TestCognitoGatewayAuthenticate(t *testing.T) {
	client := &fakeCognito{out: &cognitoidentityprovider.GetUserOutput{
		Username: aws.String("amy"),
		UserAttributes: []types.AttributeType{
			{Name: aws.String("sub"), Value: aws.String("c0ffee")},
			{Name: aws.String("email"), Value: aws.String("amy@example.com")},
			{Name: aws.String("custom:role"), Value: aws.String("admin")},
		},
	}}
	gateway := &CognitoGateway{client: client}

	identity, err := gateway.Authenticate(context.Background(), "access-token")
	require.NoError(t, err)
	assert.Equal(t, "access-token", client.token)
	assert.Equal(t, models.Identity{UserID: "c0ffee", Email: "amy@example.com", Role: models.RoleAdmin}, identity)
}

func TestCognitoGatewayErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"not authorized", &types.NotAuthorizedException{Message: aws.String("expired")}, ErrInvalidToken},
		{"user missing", &types.UserNotFoundException{Message: aws.String("gone")}, ErrInvalidToken},
		{"throttled", &types.TooManyRequestsException{Message: aws.String("slow down")}, ErrThrottled},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gateway := &CognitoGateway{client: &fakeCognito{err: tc.err}}
			_, err := gateway.Authenticate(context.Background(), "token")
			assert.ErrorIs(t, err, tc.want)
		})
	}

	other := errors.New("network down")
	gateway := &CognitoGateway{client: &fakeCognito{err: other}}
	_, err := gateway.Authenticate(context.Background(), "token")
	assert.ErrorIs(t, err, other)
	assert.NotErrorIs(t, err, ErrInvalidToken)

	_, err = gateway.Authenticate(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingToken)
}
