package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Dosada05/league-system/repositories"
	"github.com/jmoiron/sqlx"
)

// TxRunner executes a unit of work inside a single database transaction.
type TxRunner struct {
	db *sqlx.DB
}

func NewTxRunner(db *sqlx.DB) *TxRunner {
	return &TxRunner{db: db}
}

// RunInTx commits when fn returns nil and rolls back otherwise. A panic inside
// fn rolls back and is re-raised.
func (r *TxRunner) RunInTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err = fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.Error("transaction rollback failed", slog.Any("error", rbErr), slog.Any("cause", err))
			return fmt.Errorf("transaction processing error: %w (rollback also failed: %v)", err, rbErr)
		}
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
