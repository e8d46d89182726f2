package postgres

import (
	"context"
	"errors"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MaximilianoRao/Grupo22-Integrador-Programacion-II/internal/core/domain"
	"github.com/MaximilianoRao/Grupo22-Integrador-Programacion-II/internal/core/port"
	"github.com/MaximilianoRao/Grupo22-Integrador-Programacion-II/internal/repository"
)

// CredentialRepository implements port.CredentialRepository using PostgreSQL.
type CredentialRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewCredentialRepository constructs a repository backed by any executor that
// satisfies pgExecutor.
func NewCredentialRepository(exec pgExecutor) *CredentialRepository {
	repo := &CredentialRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

// WithTx returns a repository instance that executes statements within the
// supplied transaction.
func (r *CredentialRepository) WithTx(tx pgx.Tx) port.CredentialRepository {
	if tx == nil {
		return r
	}
	return &CredentialRepository{
		pool:    r.pool,
		exec:    tx,
		builder: r.builder,
	}
}

// Create inserts a new credential row and returns the generated id.
func (r *CredentialRepository) Create(ctx context.Context, cred domain.Credential) (int64, error) {
	stmt, args, err := r.builder.Insert("accounts.credentials").
		Columns("password_hash", "salt", "last_changed", "reset_required", "deleted").
		Values(cred.PasswordHash, cred.Salt, cred.LastChanged, cred.ResetRequired, cred.Deleted).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert credential sql: %w", err)
	}

	var id int64
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert credential: %w", err)
	}

	return id, nil
}

// Update overwrites the mutable fields of an existing live credential.
func (r *CredentialRepository) Update(ctx context.Context, cred domain.Credential) error {
	stmt, args, err := r.builder.Update("accounts.credentials").
		Set("password_hash", cred.PasswordHash).
		Set("salt", cred.Salt).
		Set("last_changed", cred.LastChanged).
		Set("reset_required", cred.ResetRequired).
		Where(squirrel.Eq{"id": cred.ID, "deleted": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update credential sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update credential: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// SoftDelete marks a credential as deleted without removing the row.
func (r *CredentialRepository) SoftDelete(ctx context.Context, id int64) error {
	stmt, args, err := r.builder.Update("accounts.credentials").
		Set("deleted", true).
		Where(squirrel.Eq{"id": id, "deleted": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build soft delete credential sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("soft delete credential: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// GetByID retrieves a live credential by identifier.
func (r *CredentialRepository) GetByID(ctx context.Context, id int64) (*domain.Credential, error) {
	stmt, args, err := r.builder.
		Select("id", "password_hash", "salt", "last_changed", "reset_required", "deleted").
		From("accounts.credentials").
		Where(squirrel.Eq{"id": id, "deleted": false}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select credential sql: %w", err)
	}

	var cred domain.Credential
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(
		&cred.ID,
		&cred.PasswordHash,
		&cred.Salt,
		&cred.LastChanged,
		&cred.ResetRequired,
		&cred.Deleted,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan credential: %w", err)
	}

	return &cred, nil
}

// List returns credentials with optional filtering and pagination.
func (r *CredentialRepository) List(ctx context.Context, filter port.CredentialFilter) ([]domain.Credential, error) {
	query := r.builder.
		Select("id", "password_hash", "salt", "last_changed", "reset_required", "deleted").
		From("accounts.credentials").
		OrderBy("id ASC")

	if !filter.IncludeDeleted {
		query = query.Where(squirrel.Eq{"deleted": false})
	}

	if filter.ResetRequired != nil {
		query = query.Where(squirrel.Eq{"reset_required": *filter.ResetRequired})
	}

	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}

	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list credentials sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query credentials: %w", err)
	}
	defer rows.Close()

	creds := make([]domain.Credential, 0)
	for rows.Next() {
		var cred domain.Credential
		if err := rows.Scan(
			&cred.ID,
			&cred.PasswordHash,
			&cred.Salt,
			&cred.LastChanged,
			&cred.ResetRequired,
			&cred.Deleted,
		); err != nil {
			return nil, fmt.Errorf("scan credential: %w", err)
		}
		creds = append(creds, cred)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate credentials: %w", err)
	}

	return creds, nil
}

// IsReferenced reports whether a live user currently holds the credential.
func (r *CredentialRepository) IsReferenced(ctx context.Context, id int64) (bool, error) {
	stmt, args, err := r.builder.Select("COUNT(*)").
		From("accounts.users").
		Where(squirrel.Eq{"credential_id": id, "deleted": false}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build credential usage sql: %w", err)
	}

	var count int64
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("scan credential usage count: %w", err)
	}

	return count > 0, nil
}

var _ port.CredentialRepository = (*CredentialRepository)(nil)
