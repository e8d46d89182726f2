package port

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TxBeginner starts a transaction scoped to a single orchestrated operation.
// *pgxpool.Pool satisfies it.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
