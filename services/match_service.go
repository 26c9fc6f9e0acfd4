package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/league-system/models"
	"github.com/Dosada05/league-system/repositories"
	"github.com/google/uuid"
)

type ScheduleMatchInput struct {
	Player1ID     string `json:"player1_id"`
	Player2ID     string `json:"player2_id"`
	ScheduledDate string `json:"scheduled_date"`
}

type RecordResultInput struct {
	Player1Score *int `json:"player1_score"`
	Player2Score *int `json:"player2_score"`
}

// MatchNotifier accepts scheduling notifications without waiting for delivery.
type MatchNotifier interface {
	NotifyMatchScheduled(match *models.Match)
}

type MatchService interface {
	Schedule(ctx context.Context, input ScheduleMatchInput) (*models.Match, error)
	RecordResult(ctx context.Context, matchID string, input RecordResultInput) (*models.Match, error)
	GetMatch(ctx context.Context, matchID string) (*models.Match, error)
	ListUpcoming(ctx context.Context, playerID *string) ([]models.Match, error)
	ListHistory(ctx context.Context, playerID string) ([]models.Match, error)
}

type matchService struct {
	matchRepo   repositories.MatchRepository
	ledger      StandingsService
	notifier    MatchNotifier
	broadcaster Broadcaster
	logger      *slog.Logger
	now         func() time.Time
}

func NewMatchService(
	matchRepo repositories.MatchRepository,
	ledger StandingsService,
	notifier MatchNotifier,
	broadcaster Broadcaster,
	logger *slog.Logger,
) MatchService {
	if logger == nil {
		logger = slog.Default()
	}
	return &matchService{
		matchRepo:   matchRepo,
		ledger:      ledger,
		notifier:    notifier,
		broadcaster: broadcaster,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *matchService) Schedule(ctx context.Context, input ScheduleMatchInput) (*models.Match, error) {
	player1ID := strings.TrimSpace(input.Player1ID)
	player2ID := strings.TrimSpace(input.Player2ID)
	rawDate := strings.TrimSpace(input.ScheduledDate)

	if player1ID == "" || player2ID == "" || rawDate == "" {
		return nil, ErrMissingFields
	}
	if player1ID == player2ID {
		return nil, ErrSelfMatch
	}
	scheduledDate, err := parseScheduledDate(rawDate)
	if err != nil {
		return nil, err
	}

	match := &models.Match{
		ID:            uuid.NewString(),
		Player1ID:     player1ID,
		Player2ID:     player2ID,
		ScheduledDate: scheduledDate,
		Status:        models.MatchStatusScheduled,
		CreatedAt:     s.now(),
	}

	if err := s.matchRepo.Create(ctx, nil, match); err != nil {
		if errors.Is(err, repositories.ErrMatchPlayerInvalid) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to create match: %w", err)
	}

	s.logger.Info("match scheduled",
		slog.String("match_id", match.ID),
		slog.String("player1_id", player1ID),
		slog.String("player2_id", player2ID),
		slog.Time("scheduled_date", scheduledDate))

	if s.notifier != nil {
		s.notifier.NotifyMatchScheduled(match)
	}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastToRoom(LeagueRoom, LeagueEvent{
			Type:    EventMatchScheduled,
			Payload: match,
			RoomID:  LeagueRoom,
		})
	}
	return match, nil
}

// RecordResult finalizes a scheduled match and applies it to the ledger in the
// same transaction, so the returned match and the standings commit together.
func (s *matchService) RecordResult(ctx context.Context, matchID string, input RecordResultInput) (*models.Match, error) {
	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return nil, ErrMissingFields
	}
	if _, err := uuid.Parse(matchID); err != nil {
		return nil, ErrInvalidMatchID
	}
	if input.Player1Score == nil || input.Player2Score == nil {
		return nil, ErrMissingFields
	}
	// End-of-game tile penalties can leave a Scrabble score below zero.
	score1, score2 := *input.Player1Score, *input.Player2Score

	winner := models.DetermineWinner(score1, score2)
	var completed *models.Match

	err := s.ledger.RunLocked(ctx, func(exec repositories.SQLExecutor) error {
		match, err := s.matchRepo.GetByIDForUpdate(ctx, exec, matchID)
		if err != nil {
			if errors.Is(err, repositories.ErrMatchNotFound) {
				return ErrMatchNotFound
			}
			return fmt.Errorf("failed to load match %s: %w", matchID, err)
		}
		if match.Status == models.MatchStatusCompleted {
			return ErrMatchAlreadyCompleted
		}

		completed, err = s.matchRepo.Complete(ctx, exec, matchID, score1, score2, winner, s.now())
		if err != nil {
			if errors.Is(err, repositories.ErrMatchNotFound) {
				return ErrMatchNotFound
			}
			return fmt.Errorf("failed to record result for match %s: %w", matchID, err)
		}

		return s.ledger.Recompute(ctx, exec, models.MatchOutcome{
			MatchID:   completed.ID,
			Player1ID: completed.Player1ID,
			Player2ID: completed.Player2ID,
			Winner:    winner,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("match result recorded",
		slog.String("match_id", matchID),
		slog.Int("player1_score", score1),
		slog.Int("player2_score", score2),
		slog.String("winner", string(winner)))
	return completed, nil
}

func (s *matchService) GetMatch(ctx context.Context, matchID string) (*models.Match, error) {
	matchID = strings.TrimSpace(matchID)
	if _, err := uuid.Parse(matchID); err != nil {
		return nil, ErrInvalidMatchID
	}
	match, err := s.matchRepo.GetByID(ctx, nil, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match %s: %w", matchID, err)
	}
	return match, nil
}

func (s *matchService) ListUpcoming(ctx context.Context, playerID *string) ([]models.Match, error) {
	if playerID != nil {
		trimmed := strings.TrimSpace(*playerID)
		if trimmed == "" {
			playerID = nil
		} else {
			playerID = &trimmed
		}
	}
	matches, err := s.matchRepo.ListUpcoming(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming matches: %w", err)
	}
	return matches, nil
}

func (s *matchService) ListHistory(ctx context.Context, playerID string) ([]models.Match, error) {
	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return nil, ErrMissingFields
	}
	matches, err := s.matchRepo.ListHistory(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list match history for player %s: %w", playerID, err)
	}
	return matches, nil
}

// parseScheduledDate accepts RFC 3339 timestamps, the datetime-local form
// browsers submit, and bare dates.
func parseScheduledDate(raw string) (time.Time, error) {
	layouts := []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02T15:04:05", "2006-01-02"}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, ErrInvalidDate
}
