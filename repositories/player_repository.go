package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/league-system/models"
	"github.com/jmoiron/sqlx"
)

var (
	ErrPlayerNotFound = errors.New("player not found")
	ErrPlayerConflict = errors.New("player already exists")
)

// PlayerUpdate carries the optional fields of a profile update. A nil field is
// left untouched.
type PlayerUpdate struct {
	DisplayName *string
	Phone       *string
	ClearPhone  bool
}

type PlayerRepository interface {
	Create(ctx context.Context, player *models.Player) error
	GetByID(ctx context.Context, id string) (*models.Player, error)
	Update(ctx context.Context, id string, update PlayerUpdate) (*models.Player, error)
	UpdateAvatar(ctx context.Context, id string, avatarKey *string) (*models.Player, error)
	List(ctx context.Context) ([]models.PublicPlayer, error)
	SearchByName(ctx context.Context, fragment string, limit int) ([]models.PublicPlayer, error)
}

type postgresPlayerRepository struct {
	db *sqlx.DB
}

func NewPostgresPlayerRepository(db *sqlx.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

const playerColumns = `id, display_name, email, phone, role, avatar_key, created_at, updated_at`

func (r *postgresPlayerRepository) Create(ctx context.Context, player *models.Player) error {
	query := `
		INSERT INTO players (id, display_name, email, phone, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		player.ID,
		player.DisplayName,
		player.Email,
		player.Phone,
		player.Role,
	).Scan(&player.CreatedAt, &player.UpdatedAt)
	if err != nil {
		if pqErr, ok := asPQError(err); ok && pqErr.Code == pqUniqueViolation {
			return ErrPlayerConflict
		}
		return fmt.Errorf("failed to insert player %s: %w", player.ID, err)
	}
	return nil
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, id string) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE id = $1`

	var player models.Player
	if err := sqlx.GetContext(ctx, r.db, &player, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player %s: %w", id, err)
	}
	return &player, nil
}

func (r *postgresPlayerRepository) Update(ctx context.Context, id string, update PlayerUpdate) (*models.Player, error) {
	setClauses := []string{"updated_at = NOW()"}
	args := []interface{}{}

	if update.DisplayName != nil {
		args = append(args, *update.DisplayName)
		setClauses = append(setClauses, fmt.Sprintf("display_name = $%d", len(args)))
	}
	if update.ClearPhone {
		setClauses = append(setClauses, "phone = NULL")
	} else if update.Phone != nil {
		args = append(args, *update.Phone)
		setClauses = append(setClauses, fmt.Sprintf("phone = $%d", len(args)))
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE players SET %s WHERE id = $%d RETURNING `+playerColumns,
		strings.Join(setClauses, ", "), len(args))

	var player models.Player
	if err := sqlx.GetContext(ctx, r.db, &player, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to update player %s: %w", id, err)
	}
	return &player, nil
}

func (r *postgresPlayerRepository) UpdateAvatar(ctx context.Context, id string, avatarKey *string) (*models.Player, error) {
	query := `UPDATE players SET avatar_key = $1, updated_at = NOW() WHERE id = $2 RETURNING ` + playerColumns

	var player models.Player
	if err := sqlx.GetContext(ctx, r.db, &player, query, avatarKey, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to update avatar for player %s: %w", id, err)
	}
	return &player, nil
}

func (r *postgresPlayerRepository) List(ctx context.Context) ([]models.PublicPlayer, error) {
	query := `SELECT id, display_name, email, created_at FROM players ORDER BY display_name ASC, id ASC`

	players := make([]models.PublicPlayer, 0)
	if err := sqlx.SelectContext(ctx, r.db, &players, query); err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	return players, nil
}

// SearchByName matches fragment as a case-insensitive substring of the
// display name. LIKE wildcards in fragment are matched literally.
func (r *postgresPlayerRepository) SearchByName(ctx context.Context, fragment string, limit int) ([]models.PublicPlayer, error) {
	query := `
		SELECT id, display_name, email, created_at
		FROM players
		WHERE display_name ILIKE $1 ESCAPE '\'
		ORDER BY display_name ASC, id ASC
		LIMIT $2`

	players := make([]models.PublicPlayer, 0)
	if err := sqlx.SelectContext(ctx, r.db, &players, query, "%"+escapeLike(fragment)+"%", limit); err != nil {
		return nil, fmt.Errorf("failed to search players by %q: %w", fragment, err)
	}
	return players, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
