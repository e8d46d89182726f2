package port

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/MaximilianoRao/Grupo22-Integrador-Programacion-II/internal/core/domain"
)

// UserFilter narrows List results. IncludeDeleted opens the administrative
// view over soft-deleted rows; all other reads consider live rows only.
type UserFilter struct {
	Active         *bool
	IncludeDeleted bool
	Limit          int
	Offset         int
}

// UserRepository exposes persistence behavior for users. Every returned user
// has its owned credential joined and populated.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) (int64, error)
	Update(ctx context.Context, user domain.User) error
	SoftDelete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	List(ctx context.Context, filter UserFilter) ([]domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	ExistsUsername(ctx context.Context, username string) (bool, error)
	ExistsEmail(ctx context.Context, email string) (bool, error)

	// WithTx returns a repository bound to the supplied transaction.
	WithTx(tx pgx.Tx) UserRepository
}
