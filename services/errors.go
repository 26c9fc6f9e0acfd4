package services

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by services and the HTTP error mapper.
var (
	ErrValidationFailed = errors.New("validation failed")
	ErrMissingFields    = fmt.Errorf("%w: missing required fields", ErrValidationFailed)
	ErrSelfMatch        = fmt.Errorf("%w: cannot play against yourself", ErrValidationFailed)
	ErrInvalidDate      = fmt.Errorf("%w: scheduled_date is not a valid date", ErrValidationFailed)
	ErrInvalidPhone     = fmt.Errorf("%w: phone number is not valid", ErrValidationFailed)
	ErrInvalidPlayerID  = fmt.Errorf("%w: player id is not valid", ErrValidationFailed)
	ErrInvalidMatchID   = fmt.Errorf("%w: match id is not valid", ErrValidationFailed)
	ErrInvalidAvatar    = fmt.Errorf("%w: avatar must be a PNG, JPEG, GIF or WebP image", ErrValidationFailed)

	ErrPlayerNotFound   = errors.New("player not found")
	ErrMatchNotFound    = errors.New("match not found")
	ErrStandingNotFound = errors.New("player is not in the league")

	ErrPlayerAlreadyRegistered = errors.New("player profile already exists")
	ErrAlreadyInLeague         = errors.New("player is already in the league")
	ErrMatchAlreadyCompleted   = errors.New("match result has already been recorded")

	ErrAvatarStorageUnavailable = errors.New("avatar storage is not configured")
)
