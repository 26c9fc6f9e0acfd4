package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Dosada05/league-system/models"
	"github.com/Dosada05/league-system/repositories"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultTopLimit = 10
	MaxTopLimit     = 100

	EventStandingsUpdated = "STANDINGS_UPDATED"
	EventMatchScheduled   = "MATCH_SCHEDULED"
	LeagueRoom            = "league"
)

// Broadcaster pushes league events to live subscribers.
type Broadcaster interface {
	BroadcastToRoom(roomID string, message interface{})
	RoomSize(roomID string) int
}

// LeagueEvent is the envelope sent to live subscribers.
type LeagueEvent struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
	RoomID  string      `json:"room_id,omitempty"`
}

type StandingsService interface {
	GetStandings(ctx context.Context) ([]models.Standing, error)
	GetTopPlayers(ctx context.Context, limit int) ([]models.Standing, error)
	GetPlayerStats(ctx context.Context, playerID string) (*models.Standing, error)
	GetLeagueStats(ctx context.Context) (*models.LeagueStats, error)
	AddPlayerToLeague(ctx context.Context, playerID string) (*models.Standing, error)

	// RunLocked runs fn in one transaction while holding the ledger's write
	// lock, so no two ledger writes interleave. Subscribers receive fresh
	// standings after a successful commit.
	RunLocked(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error
	// Recompute applies a finalized match outcome to both players' rows and
	// re-ranks the whole league. It must run inside RunLocked.
	Recompute(ctx context.Context, exec repositories.SQLExecutor, result models.MatchOutcome) error
}

type standingsService struct {
	tx           TxRunner
	standingRepo repositories.StandingRepository
	matchRepo    repositories.MatchRepository
	broadcaster  Broadcaster
	logger       *slog.Logger
	now          func() time.Time

	// mu is the in-process single writer; the advisory lock taken in
	// RunLocked extends the guarantee to other server instances.
	mu sync.Mutex
}

func NewStandingsService(
	tx TxRunner,
	standingRepo repositories.StandingRepository,
	matchRepo repositories.MatchRepository,
	broadcaster Broadcaster,
	logger *slog.Logger,
) StandingsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &standingsService{
		tx:           tx,
		standingRepo: standingRepo,
		matchRepo:    matchRepo,
		broadcaster:  broadcaster,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *standingsService) GetStandings(ctx context.Context) ([]models.Standing, error) {
	standings, err := s.standingRepo.ListWithPlayers(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to load standings: %w", err)
	}
	return standings, nil
}

// GetTopPlayers returns the first limit rows of the table. A limit below one
// falls back to DefaultTopLimit; one above MaxTopLimit is clamped to it.
func (s *standingsService) GetTopPlayers(ctx context.Context, limit int) ([]models.Standing, error) {
	switch {
	case limit <= 0:
		limit = DefaultTopLimit
	case limit > MaxTopLimit:
		limit = MaxTopLimit
	}
	standings, err := s.standingRepo.ListWithPlayers(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load top %d players: %w", limit, err)
	}
	return standings, nil
}

func (s *standingsService) GetPlayerStats(ctx context.Context, playerID string) (*models.Standing, error) {
	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return nil, ErrMissingFields
	}
	standing, err := s.standingRepo.GetByPlayerID(ctx, nil, playerID)
	if err != nil {
		if errors.Is(err, repositories.ErrStandingNotFound) {
			return nil, ErrStandingNotFound
		}
		return nil, fmt.Errorf("failed to load stats for player %s: %w", playerID, err)
	}
	return standing, nil
}

func (s *standingsService) GetLeagueStats(ctx context.Context) (*models.LeagueStats, error) {
	var stats models.LeagueStats
	scheduled := models.MatchStatusScheduled

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		count, err := s.standingRepo.Count(gCtx)
		if err != nil {
			return fmt.Errorf("failed to count league players: %w", err)
		}
		stats.TotalPlayers = count
		return nil
	})
	g.Go(func() error {
		count, err := s.matchRepo.Count(gCtx, nil)
		if err != nil {
			return fmt.Errorf("failed to count matches: %w", err)
		}
		stats.TotalMatches = count
		return nil
	})
	g.Go(func() error {
		count, err := s.matchRepo.Count(gCtx, &scheduled)
		if err != nil {
			return fmt.Errorf("failed to count upcoming matches: %w", err)
		}
		stats.UpcomingMatches = count
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *standingsService) AddPlayerToLeague(ctx context.Context, playerID string) (*models.Standing, error) {
	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return nil, ErrMissingFields
	}

	var created *models.Standing
	err := s.RunLocked(ctx, func(exec repositories.SQLExecutor) error {
		_, err := s.standingRepo.GetByPlayerID(ctx, exec, playerID)
		switch {
		case err == nil:
			return ErrAlreadyInLeague
		case !errors.Is(err, repositories.ErrStandingNotFound):
			return fmt.Errorf("failed to check league membership of %s: %w", playerID, err)
		}

		standing := &models.Standing{
			ID:        uuid.NewString(),
			PlayerID:  playerID,
			UpdatedAt: s.now(),
		}
		if err := s.standingRepo.Create(ctx, exec, standing); err != nil {
			switch {
			case errors.Is(err, repositories.ErrStandingConflict):
				return ErrAlreadyInLeague
			case errors.Is(err, repositories.ErrStandingPlayerInvalid):
				return ErrPlayerNotFound
			}
			return fmt.Errorf("failed to add player %s to league: %w", playerID, err)
		}

		positions, err := s.rerank(ctx, exec)
		if err != nil {
			return err
		}
		standing.Position = positions[standing.ID]
		created = standing
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("player added to league", slog.String("player_id", playerID), slog.Int("position", created.Position))
	return created, nil
}

func (s *standingsService) RunLocked(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	err := s.runLocked(ctx, fn)
	if err != nil {
		return err
	}
	s.publishStandings(ctx)
	return nil
}

func (s *standingsService) runLocked(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.standingRepo.LockLedger(ctx, exec); err != nil {
			return err
		}
		return fn(exec)
	})
}

func (s *standingsService) Recompute(ctx context.Context, exec repositories.SQLExecutor, result models.MatchOutcome) error {
	now := s.now()
	sides := []struct {
		playerID string
		side     models.MatchWinner
	}{
		{result.Player1ID, models.WinnerPlayer1},
		{result.Player2ID, models.WinnerPlayer2},
	}

	for _, entry := range sides {
		standing, err := s.standingRepo.GetByPlayerID(ctx, exec, entry.playerID)
		if err != nil {
			if errors.Is(err, repositories.ErrStandingNotFound) {
				s.logger.Warn("player not in league, standings not updated",
					slog.String("player_id", entry.playerID), slog.String("match_id", result.MatchID))
				continue
			}
			return fmt.Errorf("failed to load standing for player %s: %w", entry.playerID, err)
		}

		applyOutcome(standing, outcomeFor(result.Winner, entry.side))
		standing.UpdatedAt = now

		if err := s.standingRepo.Update(ctx, exec, standing); err != nil {
			return fmt.Errorf("failed to update standing for player %s: %w", entry.playerID, err)
		}
	}

	if _, err := s.rerank(ctx, exec); err != nil {
		return err
	}
	return nil
}

// rerank reloads every row and rewrites all positions.
func (s *standingsService) rerank(ctx context.Context, exec repositories.SQLExecutor) (map[string]int, error) {
	standings, err := s.standingRepo.ListForRanking(ctx, exec)
	if err != nil {
		return nil, fmt.Errorf("failed to load standings for ranking: %w", err)
	}
	positions := rankStandings(standings)
	if err := s.standingRepo.UpdatePositions(ctx, exec, positions); err != nil {
		return nil, fmt.Errorf("failed to store standing positions: %w", err)
	}
	return positions, nil
}

// publishStandings skips the table query when nobody is listening.
func (s *standingsService) publishStandings(ctx context.Context) {
	if s.broadcaster == nil || s.broadcaster.RoomSize(LeagueRoom) == 0 {
		return
	}
	standings, err := s.standingRepo.ListWithPlayers(ctx, 0)
	if err != nil {
		s.logger.Error("failed to load standings for broadcast", slog.Any("error", err))
		return
	}
	s.broadcaster.BroadcastToRoom(LeagueRoom, LeagueEvent{
		Type:    EventStandingsUpdated,
		Payload: standings,
		RoomID:  LeagueRoom,
	})
}
