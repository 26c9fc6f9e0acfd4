package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dosada05/league-system/models"
	"github.com/jmoiron/sqlx"
)

var (
	ErrMatchNotFound      = errors.New("match not found")
	ErrMatchPlayerInvalid = errors.New("match player does not exist")
)

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Match, error)
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id string) (*models.Match, error)
	Complete(ctx context.Context, exec SQLExecutor, id string, player1Score, player2Score int, winner models.MatchWinner, playedAt time.Time) (*models.Match, error)
	ListUpcoming(ctx context.Context, playerID *string) ([]models.Match, error)
	ListHistory(ctx context.Context, playerID string) ([]models.Match, error)
	Count(ctx context.Context, status *models.MatchStatus) (int, error)
}

type postgresMatchRepository struct {
	db *sqlx.DB
}

func NewPostgresMatchRepository(db *sqlx.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const matchColumns = `id, player1_id, player2_id, scheduled_date, status, player1_score, player2_score, winner, played_date, created_at`

const matchWithNamesSelect = `
		SELECT m.id, m.player1_id, m.player2_id, m.scheduled_date, m.status,
		       m.player1_score, m.player2_score, m.winner, m.played_date, m.created_at,
		       p1.display_name AS player1_name, p2.display_name AS player2_name
		FROM matches m
		LEFT JOIN players p1 ON p1.id = m.player1_id
		LEFT JOIN players p2 ON p2.id = m.player2_id`

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	query := `
		INSERT INTO matches (id, player1_id, player2_id, scheduled_date, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	err := r.getExecutor(exec).QueryRowxContext(ctx, query,
		match.ID,
		match.Player1ID,
		match.Player2ID,
		match.ScheduledDate,
		match.Status,
	).Scan(&match.CreatedAt)
	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Match, error) {
	query := matchWithNamesSelect + ` WHERE m.id = $1`

	var match models.Match
	if err := sqlx.GetContext(ctx, r.getExecutor(exec), &match, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match %s: %w", id, err)
	}
	return &match, nil
}

// GetByIDForUpdate locks the match row until the surrounding transaction ends.
func (r *postgresMatchRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id string) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1 FOR UPDATE`

	var match models.Match
	if err := sqlx.GetContext(ctx, r.getExecutor(exec), &match, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to lock match %s: %w", id, err)
	}
	return &match, nil
}

func (r *postgresMatchRepository) Complete(ctx context.Context, exec SQLExecutor, id string, player1Score, player2Score int, winner models.MatchWinner, playedAt time.Time) (*models.Match, error) {
	query := `
		UPDATE matches
		SET player1_score = $1, player2_score = $2, winner = $3, status = $4, played_date = $5
		WHERE id = $6
		RETURNING ` + matchColumns

	var match models.Match
	err := sqlx.GetContext(ctx, r.getExecutor(exec), &match, query,
		player1Score, player2Score, winner, models.MatchStatusCompleted, playedAt, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to complete match %s: %w", id, err)
	}
	return &match, nil
}

// ListUpcoming returns scheduled matches, soonest first. A non-nil playerID
// restricts the list to matches on either side of that player.
func (r *postgresMatchRepository) ListUpcoming(ctx context.Context, playerID *string) ([]models.Match, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(matchWithNamesSelect)
	queryBuilder.WriteString(` WHERE m.status = $1`)

	args := []interface{}{models.MatchStatusScheduled}
	if playerID != nil {
		queryBuilder.WriteString(` AND (m.player1_id = $2 OR m.player2_id = $2)`)
		args = append(args, *playerID)
	}
	queryBuilder.WriteString(` ORDER BY m.scheduled_date ASC, m.id ASC`)

	matches := make([]models.Match, 0)
	if err := sqlx.SelectContext(ctx, r.db, &matches, queryBuilder.String(), args...); err != nil {
		return nil, fmt.Errorf("failed to list upcoming matches: %w", err)
	}
	return matches, nil
}

// ListHistory returns completed matches of playerID, most recently played first.
func (r *postgresMatchRepository) ListHistory(ctx context.Context, playerID string) ([]models.Match, error) {
	query := matchWithNamesSelect + `
		WHERE m.status = $1 AND (m.player1_id = $2 OR m.player2_id = $2)
		ORDER BY m.played_date DESC, m.id ASC`

	matches := make([]models.Match, 0)
	if err := sqlx.SelectContext(ctx, r.db, &matches, query, models.MatchStatusCompleted, playerID); err != nil {
		return nil, fmt.Errorf("failed to list match history for player %s: %w", playerID, err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) Count(ctx context.Context, status *models.MatchStatus) (int, error) {
	query := `SELECT COUNT(*) FROM matches`
	args := []interface{}{}
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}

	var count int
	if err := sqlx.GetContext(ctx, r.db, &count, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count matches: %w", err)
	}
	return count, nil
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := asPQError(err); ok && pqErr.Code == pqForeignKeyViolation {
		switch pqErr.Constraint {
		case "matches_player1_id_fkey", "matches_player2_id_fkey":
			return ErrMatchPlayerInvalid
		}
	}
	return err
}
