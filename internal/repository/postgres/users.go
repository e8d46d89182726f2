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

// UserRepository implements port.UserRepository using PostgreSQL. Every read
// joins the owned credential; a user row is never returned without it.
type UserRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewUserRepository constructs a repository backed by any executor that
// satisfies pgExecutor.
func NewUserRepository(exec pgExecutor) *UserRepository {
	repo := &UserRepository{
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
func (r *UserRepository) WithTx(tx pgx.Tx) port.UserRepository {
	if tx == nil {
		return r
	}
	return &UserRepository{
		pool:    r.pool,
		exec:    tx,
		builder: r.builder,
	}
}

func (r *UserRepository) selectJoined() squirrel.SelectBuilder {
	return r.builder.Select(
		"u.id",
		"u.username",
		"u.email",
		"u.active",
		"u.registered_at",
		"u.credential_id",
		"u.deleted",
		"c.id",
		"c.password_hash",
		"c.salt",
		"c.last_changed",
		"c.reset_required",
		"c.deleted",
	).
		From("accounts.users u").
		Join("accounts.credentials c ON c.id = u.credential_id")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJoinedUser(row rowScanner) (*domain.User, error) {
	var (
		user domain.User
		cred domain.Credential
	)

	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.Active,
		&user.RegisteredAt,
		&user.CredentialID,
		&user.Deleted,
		&cred.ID,
		&cred.PasswordHash,
		&cred.Salt,
		&cred.LastChanged,
		&cred.ResetRequired,
		&cred.Deleted,
	); err != nil {
		return nil, err
	}

	user.Credential = &cred
	return &user, nil
}

// Create inserts a new user row and returns the generated id. A unique
// violation on username or email surfaces as repository.ErrConflict; the
// database constraint is the authoritative uniqueness enforcement.
func (r *UserRepository) Create(ctx context.Context, user domain.User) (int64, error) {
	stmt, args, err := r.builder.Insert("accounts.users").
		Columns("username", "email", "active", "registered_at", "credential_id", "deleted").
		Values(user.Username, user.Email, user.Active, user.RegisteredAt, user.CredentialID, user.Deleted).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert user sql: %w", err)
	}

	var id int64
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&id); err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("insert user: %w: %w", repository.ErrConflict, err)
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}

	return id, nil
}

// Update modifies an existing live user's fields.
func (r *UserRepository) Update(ctx context.Context, user domain.User) error {
	stmt, args, err := r.builder.Update("accounts.users").
		Set("username", user.Username).
		Set("email", user.Email).
		Set("active", user.Active).
		Set("registered_at", user.RegisteredAt).
		Set("credential_id", user.CredentialID).
		Where(squirrel.Eq{"id": user.ID, "deleted": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update user sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("update user: %w: %w", repository.ErrConflict, err)
		}
		return fmt.Errorf("update user: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// SoftDelete marks a user as deleted without removing the row.
func (r *UserRepository) SoftDelete(ctx context.Context, id int64) error {
	stmt, args, err := r.builder.Update("accounts.users").
		Set("deleted", true).
		Where(squirrel.Eq{"id": id, "deleted": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build soft delete user sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("soft delete user: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// GetByID retrieves a live user by identifier, credential included.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	stmt, args, err := r.selectJoined().
		Where(squirrel.Eq{"u.id": id, "u.deleted": false}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user sql: %w", err)
	}

	user, err := scanJoinedUser(r.exec.QueryRow(ctx, stmt, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	return user, nil
}

// FindByUsername retrieves a live user by exact username match.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findBy(ctx, squirrel.Eq{"u.username": username, "u.deleted": false}, "username")
}

// FindByEmail retrieves a live user by exact email match.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findBy(ctx, squirrel.Eq{"u.email": email, "u.deleted": false}, "email")
}

func (r *UserRepository) findBy(ctx context.Context, cond squirrel.Eq, field string) (*domain.User, error) {
	stmt, args, err := r.selectJoined().
		Where(cond).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user by %s sql: %w", field, err)
	}

	user, err := scanJoinedUser(r.exec.QueryRow(ctx, stmt, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan user by %s: %w", field, err)
	}

	return user, nil
}

// List returns users with optional filtering and pagination, each with its
// credential joined.
func (r *UserRepository) List(ctx context.Context, filter port.UserFilter) ([]domain.User, error) {
	query := r.selectJoined().OrderBy("u.registered_at DESC")

	if !filter.IncludeDeleted {
		query = query.Where(squirrel.Eq{"u.deleted": false})
	}

	if filter.Active != nil {
		query = query.Where(squirrel.Eq{"u.active": *filter.Active})
	}

	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}

	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list users sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		user, err := scanJoinedUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return users, nil
}

// ExistsUsername reports whether a live user already holds the username.
func (r *UserRepository) ExistsUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, squirrel.Eq{"username": username, "deleted": false}, "username")
}

// ExistsEmail reports whether a live user already holds the email.
func (r *UserRepository) ExistsEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, squirrel.Eq{"email": email, "deleted": false}, "email")
}

func (r *UserRepository) exists(ctx context.Context, cond squirrel.Eq, field string) (bool, error) {
	stmt, args, err := r.builder.Select("COUNT(*)").
		From("accounts.users").
		Where(cond).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build count users by %s sql: %w", field, err)
	}

	var count int64
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("scan users count by %s: %w", field, err)
	}

	return count > 0, nil
}

var _ port.UserRepository = (*UserRepository)(nil)
