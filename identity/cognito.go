package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/league-system/models"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
)

const cognitoRoleAttribute = "custom:role"

type cognitoAPI interface {
	GetUser(ctx context.Context, params *cognitoidentityprovider.GetUserInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.GetUserOutput, error)
}

// CognitoGateway resolves Cognito access tokens by asking the user pool who
// they belong to.
type CognitoGateway struct {
	client cognitoAPI
}

func NewCognitoGateway(cfg aws.Config) *CognitoGateway {
	return &CognitoGateway{client: cognitoidentityprovider.NewFromConfig(cfg)}
}

func (g *CognitoGateway) Authenticate(ctx context.Context, token string) (models.Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return models.Identity{}, ErrMissingToken
	}

	out, err := g.client.GetUser(ctx, &cognitoidentityprovider.GetUserInput{
		AccessToken: aws.String(token),
	})
	if err != nil {
		return models.Identity{}, mapCognitoError(err)
	}

	identity := models.Identity{Role: models.RoleMember}
	for _, attr := range out.UserAttributes {
		value := aws.ToString(attr.Value)
		switch aws.ToString(attr.Name) {
		case "sub":
			identity.UserID = value
		case "email":
			identity.Email = value
		case cognitoRoleAttribute:
			identity.Role = models.ParseRole(value)
		}
	}
	if identity.UserID == "" {
		identity.UserID = aws.ToString(out.Username)
	}
	if identity.UserID == "" {
		return models.Identity{}, fmt.Errorf("%w: user has no subject", ErrInvalidToken)
	}
	return identity, nil
}

func mapCognitoError(err error) error {
	var notAuthorized *types.NotAuthorizedException
	if errors.As(err, &notAuthorized) {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	var userNotFound *types.UserNotFoundException
	if errors.As(err, &userNotFound) {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	var throttled *types.TooManyRequestsException
	if errors.As(err, &throttled) {
		return fmt.Errorf("%w: %v", ErrThrottled, err)
	}
	return fmt.Errorf("cognito get user: %w", err)
}
