package port

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/MaximilianoRao/Grupo22-Integrador-Programacion-II/internal/core/domain"
)

// CredentialFilter narrows List results for credentials.
type CredentialFilter struct {
	ResetRequired  *bool
	IncludeDeleted bool
	Limit          int
	Offset         int
}

// CredentialRepository exposes persistence behavior for access credentials.
type CredentialRepository interface {
	Create(ctx context.Context, cred domain.Credential) (int64, error)
	Update(ctx context.Context, cred domain.Credential) error
	SoftDelete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Credential, error)
	List(ctx context.Context, filter CredentialFilter) ([]domain.Credential, error)

	// IsReferenced reports whether a live user currently owns the credential.
	// It is the guard for direct deletion; it ignores soft-deleted users.
	IsReferenced(ctx context.Context, id int64) (bool, error)

	// WithTx returns a repository bound to the supplied transaction.
	WithTx(tx pgx.Tx) CredentialRepository
}
