package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Dosada05/league-system/models"
	"github.com/Dosada05/league-system/repositories"
	"github.com/Dosada05/league-system/storage"
	"github.com/go-playground/validator/v10"
	"github.com/nyaruka/phonenumbers"
)

const (
	SearchResultLimit  = 10
	defaultPhoneRegion = "US"
)

type RegisterProfileInput struct {
	DisplayName string  `json:"display_name" validate:"required,max=80"`
	Email       string  `json:"email" validate:"omitempty,email,max=254"`
	Phone       *string `json:"phone" validate:"omitempty,max=32"`
}

// UpdateProfileInput is a partial update: nil fields are left untouched and
// an empty phone clears the stored number.
type UpdateProfileInput struct {
	DisplayName *string `json:"display_name" validate:"omitempty,max=80"`
	Phone       *string `json:"phone" validate:"omitempty,max=32"`
}

type PlayerService interface {
	Register(ctx context.Context, identity models.Identity, input RegisterProfileInput) (*models.Player, error)
	GetProfile(ctx context.Context, playerID string) (*models.Player, error)
	UpdateProfile(ctx context.Context, playerID string, input UpdateProfileInput) (*models.Player, error)
	UploadAvatar(ctx context.Context, playerID string, contentType string, file io.Reader) (*models.Player, error)
	ListPlayers(ctx context.Context) ([]models.PublicPlayer, error)
	SearchByName(ctx context.Context, fragment string) ([]models.PublicPlayer, error)
}

type playerService struct {
	playerRepo repositories.PlayerRepository
	uploader   storage.FileUploader
	validate   *validator.Validate
	logger     *slog.Logger
}

// NewPlayerService builds the player directory. uploader may be nil, in which
// case avatar uploads report ErrAvatarStorageUnavailable.
func NewPlayerService(playerRepo repositories.PlayerRepository, uploader storage.FileUploader, logger *slog.Logger) PlayerService {
	if logger == nil {
		logger = slog.Default()
	}
	return &playerService{
		playerRepo: playerRepo,
		uploader:   uploader,
		validate:   validator.New(),
		logger:     logger,
	}
}

func (s *playerService) Register(ctx context.Context, identity models.Identity, input RegisterProfileInput) (*models.Player, error) {
	if strings.TrimSpace(identity.UserID) == "" {
		return nil, ErrInvalidPlayerID
	}
	input.DisplayName = strings.TrimSpace(input.DisplayName)
	input.Email = strings.TrimSpace(input.Email)
	if input.Email == "" {
		input.Email = identity.Email
	}
	if input.DisplayName == "" || input.Email == "" {
		return nil, ErrMissingFields
	}
	if err := s.validateInput(ctx, input); err != nil {
		return nil, err
	}

	player := &models.Player{
		ID:          identity.UserID,
		DisplayName: input.DisplayName,
		Email:       input.Email,
		Role:        identity.Role,
	}
	if input.Phone != nil && strings.TrimSpace(*input.Phone) != "" {
		phone, err := normalizePhone(*input.Phone)
		if err != nil {
			return nil, err
		}
		player.Phone = &phone
	}

	if err := s.playerRepo.Create(ctx, player); err != nil {
		if errors.Is(err, repositories.ErrPlayerConflict) {
			return nil, ErrPlayerAlreadyRegistered
		}
		return nil, fmt.Errorf("failed to register player %s: %w", identity.UserID, err)
	}

	s.logger.Info("player registered", slog.String("player_id", player.ID))
	return player, nil
}

func (s *playerService) GetProfile(ctx context.Context, playerID string) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get profile %s: %w", playerID, err)
	}
	s.populateAvatarURL(player)
	return player, nil
}

func (s *playerService) UpdateProfile(ctx context.Context, playerID string, input UpdateProfileInput) (*models.Player, error) {
	if input.DisplayName == nil && input.Phone == nil {
		return nil, ErrMissingFields
	}
	if err := s.validateInput(ctx, input); err != nil {
		return nil, err
	}

	var update repositories.PlayerUpdate
	if input.DisplayName != nil {
		name := strings.TrimSpace(*input.DisplayName)
		if name == "" {
			return nil, ErrMissingFields
		}
		update.DisplayName = &name
	}
	if input.Phone != nil {
		if strings.TrimSpace(*input.Phone) == "" {
			update.ClearPhone = true
		} else {
			phone, err := normalizePhone(*input.Phone)
			if err != nil {
				return nil, err
			}
			update.Phone = &phone
		}
	}

	player, err := s.playerRepo.Update(ctx, playerID, update)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to update profile %s: %w", playerID, err)
	}
	s.populateAvatarURL(player)
	return player, nil
}

func (s *playerService) UploadAvatar(ctx context.Context, playerID string, contentType string, file io.Reader) (*models.Player, error) {
	if s.uploader == nil {
		return nil, ErrAvatarStorageUnavailable
	}
	ext, ok := storage.AvatarExtension(contentType)
	if !ok {
		return nil, ErrInvalidAvatar
	}

	current, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get profile %s: %w", playerID, err)
	}

	key := storage.AvatarKey(playerID, ext)
	if _, err := s.uploader.Upload(ctx, key, contentType, file); err != nil {
		return nil, fmt.Errorf("failed to upload avatar for player %s: %w", playerID, err)
	}

	player, err := s.playerRepo.UpdateAvatar(ctx, playerID, &key)
	if err != nil {
		if deleteErr := s.uploader.Delete(ctx, key); deleteErr != nil {
			s.logger.Warn("failed to remove orphaned avatar", slog.String("key", key), slog.Any("error", deleteErr))
		}
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to store avatar key for player %s: %w", playerID, err)
	}

	if current.AvatarKey != nil && *current.AvatarKey != "" && *current.AvatarKey != key {
		if err := s.uploader.Delete(ctx, *current.AvatarKey); err != nil {
			s.logger.Warn("failed to delete previous avatar", slog.String("key", *current.AvatarKey), slog.Any("error", err))
		}
	}

	s.populateAvatarURL(player)
	return player, nil
}

func (s *playerService) ListPlayers(ctx context.Context) ([]models.PublicPlayer, error) {
	players, err := s.playerRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	return players, nil
}

func (s *playerService) SearchByName(ctx context.Context, fragment string) ([]models.PublicPlayer, error) {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return []models.PublicPlayer{}, nil
	}
	players, err := s.playerRepo.SearchByName(ctx, fragment, SearchResultLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to search players: %w", err)
	}
	return players, nil
}

func (s *playerService) validateInput(ctx context.Context, input interface{}) error {
	if err := s.validate.StructCtx(ctx, input); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
			first := validationErrs[0]
			return fmt.Errorf("%w: field %s failed on %s", ErrValidationFailed, strings.ToLower(first.Field()), first.Tag())
		}
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	return nil
}

func (s *playerService) populateAvatarURL(player *models.Player) {
	if player == nil || player.AvatarKey == nil || *player.AvatarKey == "" || s.uploader == nil {
		return
	}
	url := s.uploader.GetPublicURL(*player.AvatarKey)
	if url != "" {
		player.AvatarURL = &url
	}
}

// normalizePhone parses raw with a US default region and formats it as E.164.
func normalizePhone(raw string) (string, error) {
	num, err := phonenumbers.Parse(strings.TrimSpace(raw), defaultPhoneRegion)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return "", ErrInvalidPhone
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}
