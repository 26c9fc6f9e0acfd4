package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/league-system/models"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrStandingNotFound      = errors.New("league standing not found")
	ErrStandingConflict      = errors.New("player already has a league standing")
	ErrStandingPlayerInvalid = errors.New("standing player does not exist")
)

// ledgerLockKey identifies the advisory lock that serialises every write to
// league_standings across server instances.
const ledgerLockKey int64 = 0x6c65616775650001

type StandingRepository interface {
	// LockLedger blocks until the caller's transaction holds the ledger lock.
	LockLedger(ctx context.Context, exec SQLExecutor) error
	Create(ctx context.Context, exec SQLExecutor, standing *models.Standing) error
	GetByPlayerID(ctx context.Context, exec SQLExecutor, playerID string) (*models.Standing, error)
	Update(ctx context.Context, exec SQLExecutor, standing *models.Standing) error
	ListForRanking(ctx context.Context, exec SQLExecutor) ([]*models.Standing, error)
	UpdatePositions(ctx context.Context, exec SQLExecutor, positions map[string]int) error
	ListWithPlayers(ctx context.Context, limit int) ([]models.Standing, error)
	Count(ctx context.Context) (int, error)
}

type postgresStandingRepository struct {
	db *sqlx.DB
}

func NewPostgresStandingRepository(db *sqlx.DB) StandingRepository {
	return &postgresStandingRepository{db: db}
}

func (r *postgresStandingRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const standingColumns = `id, player_id, wins, losses, draws, points, games_played, position, created_at, updated_at`

func (r *postgresStandingRepository) LockLedger(ctx context.Context, exec SQLExecutor) error {
	if _, err := r.getExecutor(exec).ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, ledgerLockKey); err != nil {
		return fmt.Errorf("failed to acquire ledger lock: %w", err)
	}
	return nil
}

func (r *postgresStandingRepository) Create(ctx context.Context, exec SQLExecutor, standing *models.Standing) error {
	query := `
		INSERT INTO league_standings
		    (id, player_id, wins, losses, draws, points, games_played, position, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at`

	if standing.UpdatedAt.IsZero() {
		standing.UpdatedAt = time.Now()
	}
	err := r.getExecutor(exec).QueryRowxContext(ctx, query,
		standing.ID, standing.PlayerID, standing.Wins, standing.Losses, standing.Draws,
		standing.Points, standing.GamesPlayed, standing.Position, standing.UpdatedAt,
	).Scan(&standing.CreatedAt)
	if err != nil {
		if pqErr, ok := asPQError(err); ok {
			switch pqErr.Constraint {
			case "league_standings_player_id_key":
				return ErrStandingConflict
			case "league_standings_player_id_fkey":
				return ErrStandingPlayerInvalid
			}
		}
		return fmt.Errorf("failed to insert standing for player %s: %w", standing.PlayerID, err)
	}
	return nil
}

func (r *postgresStandingRepository) GetByPlayerID(ctx context.Context, exec SQLExecutor, playerID string) (*models.Standing, error) {
	query := `SELECT ` + standingColumns + ` FROM league_standings WHERE player_id = $1`

	var standing models.Standing
	if err := sqlx.GetContext(ctx, r.getExecutor(exec), &standing, query, playerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStandingNotFound
		}
		return nil, fmt.Errorf("failed to get standing for player %s: %w", playerID, err)
	}
	return &standing, nil
}

func (r *postgresStandingRepository) Update(ctx context.Context, exec SQLExecutor, standing *models.Standing) error {
	query := `
		UPDATE league_standings SET
			wins = $1, losses = $2, draws = $3, points = $4, games_played = $5, updated_at = $6
		WHERE id = $7`

	result, err := r.getExecutor(exec).ExecContext(ctx, query,
		standing.Wins, standing.Losses, standing.Draws, standing.Points, standing.GamesPlayed,
		standing.UpdatedAt, standing.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update standing %s: %w", standing.ID, err)
	}
	return checkAffectedRows(result, ErrStandingNotFound)
}

// ListForRanking loads every standing row in ranking order.
func (r *postgresStandingRepository) ListForRanking(ctx context.Context, exec SQLExecutor) ([]*models.Standing, error) {
	query := `SELECT ` + standingColumns + ` FROM league_standings ORDER BY points DESC, games_played ASC, player_id ASC`

	standings := make([]*models.Standing, 0)
	if err := sqlx.SelectContext(ctx, r.getExecutor(exec), &standings, query); err != nil {
		return nil, fmt.Errorf("failed to list standings for ranking: %w", err)
	}
	return standings, nil
}

// UpdatePositions rewrites the position of every row in positions with one
// statement.
func (r *postgresStandingRepository) UpdatePositions(ctx context.Context, exec SQLExecutor, positions map[string]int) error {
	if len(positions) == 0 {
		return nil
	}

	ids := make([]string, 0, len(positions))
	values := make([]int64, 0, len(positions))
	for id, position := range positions {
		ids = append(ids, id)
		values = append(values, int64(position))
	}

	query := `
		UPDATE league_standings AS ls
		SET position = p.position
		FROM UNNEST($1::uuid[], $2::integer[]) AS p(id, position)
		WHERE ls.id = p.id`

	result, err := r.getExecutor(exec).ExecContext(ctx, query, pq.Array(ids), pq.Array(values))
	if err != nil {
		return fmt.Errorf("failed to update standing positions: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if int(rowsAffected) != len(positions) {
		return fmt.Errorf("%w: updated %d of %d positions", ErrStandingNotFound, rowsAffected, len(positions))
	}
	return nil
}

// ListWithPlayers returns standings joined with display names, ordered by
// position. A limit of zero or less returns every row.
func (r *postgresStandingRepository) ListWithPlayers(ctx context.Context, limit int) ([]models.Standing, error) {
	query := `
		SELECT ls.id, ls.player_id, ls.wins, ls.losses, ls.draws, ls.points, ls.games_played,
		       ls.position, ls.created_at, ls.updated_at, p.display_name
		FROM league_standings ls
		LEFT JOIN players p ON p.id = ls.player_id
		ORDER BY ls.position ASC, ls.points DESC, ls.player_id ASC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	standings := make([]models.Standing, 0)
	if err := sqlx.SelectContext(ctx, r.db, &standings, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list standings: %w", err)
	}
	return standings, nil
}

func (r *postgresStandingRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := sqlx.GetContext(ctx, r.db, &count, `SELECT COUNT(*) FROM league_standings`); err != nil {
		return 0, fmt.Errorf("failed to count standings: %w", err)
	}
	return count, nil
}
