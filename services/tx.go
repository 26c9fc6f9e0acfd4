package services

import (
	"context"

	"github.com/Dosada05/league-system/repositories"
)

// TxRunner runs fn inside one database transaction, committing only when fn
// returns nil.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error
}
