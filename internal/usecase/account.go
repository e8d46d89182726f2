package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/MaximilianoRao/Grupo22-Integrador-Programacion-II/internal/core/domain"
	"github.com/MaximilianoRao/Grupo22-Integrador-Programacion-II/internal/core/port"
	"github.com/MaximilianoRao/Grupo22-Integrador-Programacion-II/internal/infra/logger"
	"github.com/MaximilianoRao/Grupo22-Integrador-Programacion-II/internal/repository"
)

// AccountService orchestrates the user and credential lifecycles. It owns
// every transaction boundary: each mutating operation runs begin → validate →
// mutate → commit, with rollback on any failure, so a partially created or
// partially deleted pair is never observable.
type AccountService struct {
	db    port.TxBeginner
	users port.UserRepository
	creds port.CredentialRepository
	log   *zap.Logger
	now   func() time.Time
}

// NewAccountService constructs the orchestrator over the supplied stores.
func NewAccountService(db port.TxBeginner, users port.UserRepository, creds port.CredentialRepository, log *zap.Logger) *AccountService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AccountService{
		db:    db,
		users: users,
		creds: creds,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// withTx runs fn against transaction-bound stores. The deferred rollback is a
// no-op after a successful commit, so the transaction is released on every
// exit path.
func (s *AccountService) withTx(ctx context.Context, fn func(users port.UserRepository, creds port.CredentialRepository) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(s.users.WithTx(tx), s.creds.WithTx(tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

func (s *AccountService) opLogger(operation string) *zap.Logger {
	return s.log.With(
		zap.String("operation", operation),
		zap.String("operation_id", uuid.NewString()),
	)
}

// CreateWithCredential atomically creates a credential and its owning user.
// The credential row is inserted first because the user row holds the foreign
// key; any failure before commit rolls both inserts back.
func (s *AccountService) CreateWithCredential(ctx context.Context, user domain.User, cred domain.Credential) (*domain.User, error) {
	now := s.now()
	if cred.LastChanged.IsZero() {
		cred.LastChanged = now
	}
	if user.RegisteredAt.IsZero() {
		user.RegisteredAt = now
	}
	user.Credential = &cred

	if err := ValidateUser(user); err != nil {
		return nil, err
	}
	if err := ValidateCredential(cred); err != nil {
		return nil, err
	}

	log := s.opLogger("create_user_with_credential")

	var created domain.User
	err := s.withTx(ctx, func(users port.UserRepository, creds port.CredentialRepository) error {
		if taken, err := users.ExistsUsername(ctx, user.Username); err != nil {
			return fmt.Errorf("check username uniqueness: %w", err)
		} else if taken {
			return ErrUsernameTaken
		}
		if taken, err := users.ExistsEmail(ctx, user.Email); err != nil {
			return fmt.Errorf("check email uniqueness: %w", err)
		} else if taken {
			return ErrEmailTaken
		}

		credID, err := creds.Create(ctx, cred)
		if err != nil {
			return err
		}
		cred.ID = credID
		user.CredentialID = credID

		userID, err := users.Create(ctx, user)
		if err != nil {
			return err
		}

		created = user
		created.ID = userID
		created.Credential = &cred
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("user created",
		zap.Int64("user_id", created.ID),
		zap.Int64("credential_id", cred.ID),
		zap.String("username", created.Username),
		zap.String("email", logger.MaskEmail(created.Email)),
	)

	return &created, nil
}

// UpdateUser re-validates and persists an existing user's fields. Uniqueness
// is re-checked excluding the user's own row, so updating to the current
// username or email is not a conflict. The credential reference and the
// registration timestamp are preserved when the caller leaves them unset.
func (s *AccountService) UpdateUser(ctx context.Context, user domain.User) error {
	if user.ID == 0 {
		return invalid("id", "is required")
	}

	log := s.opLogger("update_user")

	err := s.withTx(ctx, func(users port.UserRepository, creds port.CredentialRepository) error {
		existing, err := users.GetByID(ctx, user.ID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("lookup user: %w", err)
		}

		if user.CredentialID == 0 {
			user.CredentialID = existing.CredentialID
		}
		if user.RegisteredAt.IsZero() {
			user.RegisteredAt = existing.RegisteredAt
		}

		if err := ValidateUser(user); err != nil {
			return err
		}

		if other, err := users.FindByUsername(ctx, user.Username); err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("check username uniqueness: %w", err)
			}
		} else if other.ID != user.ID {
			return ErrUsernameTaken
		}
		if other, err := users.FindByEmail(ctx, user.Email); err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("check email uniqueness: %w", err)
			}
		} else if other.ID != user.ID {
			return ErrEmailTaken
		}

		if err := users.Update(ctx, user); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Info("user updated", zap.Int64("user_id", user.ID))
	return nil
}

// DeleteCascading soft-deletes a user and its owned credential as one atomic
// step. This is the only sanctioned path that removes a credential still in
// use: the referencing user goes first, inside the same transaction.
func (s *AccountService) DeleteCascading(ctx context.Context, userID int64) error {
	log := s.opLogger("delete_user_cascading")

	var credentialID int64
	err := s.withTx(ctx, func(users port.UserRepository, creds port.CredentialRepository) error {
		user, err := users.GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("lookup user: %w", err)
		}
		credentialID = user.CredentialID

		if err := users.SoftDelete(ctx, userID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		if err := creds.SoftDelete(ctx, credentialID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("cascade to credential %d: %w", credentialID, err)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Info("user deleted",
		zap.Int64("user_id", userID),
		zap.Int64("credential_id", credentialID),
	)
	return nil
}

// SetActive flips the activation flag on an existing user.
func (s *AccountService) SetActive(ctx context.Context, userID int64, active bool) error {
	log := s.opLogger("set_user_active")

	err := s.withTx(ctx, func(users port.UserRepository, creds port.CredentialRepository) error {
		user, err := users.GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("lookup user: %w", err)
		}

		user.Active = active
		if err := users.Update(ctx, *user); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Info("user activation changed",
		zap.Int64("user_id", userID),
		zap.Bool("active", active),
	)
	return nil
}

// ChangePassword rotates the stored hash and salt. The rotation always
// refreshes the last-changed timestamp and clears the reset-required flag.
func (s *AccountService) ChangePassword(ctx context.Context, credentialID int64, newHash, newSalt string) (*domain.Credential, error) {
	log := s.opLogger("change_password")

	var rotated domain.Credential
	err := s.withTx(ctx, func(users port.UserRepository, creds port.CredentialRepository) error {
		cred, err := creds.GetByID(ctx, credentialID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrCredentialNotFound
			}
			return fmt.Errorf("lookup credential: %w", err)
		}

		cred.PasswordHash = newHash
		cred.Salt = newSalt
		cred.LastChanged = s.now()
		cred.ResetRequired = false

		if err := ValidateCredential(*cred); err != nil {
			return err
		}

		if err := creds.Update(ctx, *cred); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrCredentialNotFound
			}
			return err
		}

		rotated = *cred
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("password rotated", zap.Int64("credential_id", credentialID))
	return &rotated, nil
}

// CreateCredential inserts a standalone credential, not yet owned by any
// user. A missing last-changed timestamp defaults to now.
func (s *AccountService) CreateCredential(ctx context.Context, cred domain.Credential) (*domain.Credential, error) {
	if cred.LastChanged.IsZero() {
		cred.LastChanged = s.now()
	}
	if err := ValidateCredential(cred); err != nil {
		return nil, err
	}

	log := s.opLogger("create_credential")

	err := s.withTx(ctx, func(users port.UserRepository, creds port.CredentialRepository) error {
		id, err := creds.Create(ctx, cred)
		if err != nil {
			return err
		}
		cred.ID = id
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("credential created", zap.Int64("credential_id", cred.ID))
	return &cred, nil
}

// UpdateCredential persists caller-supplied credential fields verbatim.
// Unlike ChangePassword it does not touch the reset-required flag.
func (s *AccountService) UpdateCredential(ctx context.Context, cred domain.Credential) error {
	if cred.ID == 0 {
		return invalid("id", "is required")
	}
	if err := ValidateCredential(cred); err != nil {
		return err
	}

	log := s.opLogger("update_credential")

	err := s.withTx(ctx, func(users port.UserRepository, creds port.CredentialRepository) error {
		if err := creds.Update(ctx, cred); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrCredentialNotFound
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Info("credential updated", zap.Int64("credential_id", cred.ID))
	return nil
}

// DeleteCredential is the guarded direct-delete escape hatch. A credential
// still referenced by a live user is refused with ErrCredentialInUse; the
// usage check and the delete share one transaction.
func (s *AccountService) DeleteCredential(ctx context.Context, credentialID int64) error {
	log := s.opLogger("delete_credential")

	err := s.withTx(ctx, func(users port.UserRepository, creds port.CredentialRepository) error {
		inUse, err := creds.IsReferenced(ctx, credentialID)
		if err != nil {
			return fmt.Errorf("check credential usage: %w", err)
		}
		if inUse {
			return ErrCredentialInUse
		}

		if err := creds.SoftDelete(ctx, credentialID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrCredentialNotFound
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Info("credential deleted", zap.Int64("credential_id", credentialID))
	return nil
}

// GetUser returns a live user with its credential joined.
func (s *AccountService) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	return user, nil
}

// ListUsers returns users matching the filter, credentials joined.
func (s *AccountService) ListUsers(ctx context.Context, filter port.UserFilter) ([]domain.User, error) {
	return s.users.List(ctx, filter)
}

// FindByUsername returns the live user holding the exact username.
func (s *AccountService) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup user by username: %w", err)
	}
	return user, nil
}

// FindByEmail returns the live user holding the exact email.
func (s *AccountService) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup user by email: %w", err)
	}
	return user, nil
}

// GetCredential returns a live credential by id.
func (s *AccountService) GetCredential(ctx context.Context, credentialID int64) (*domain.Credential, error) {
	cred, err := s.creds.GetByID(ctx, credentialID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCredentialNotFound
		}
		return nil, fmt.Errorf("lookup credential: %w", err)
	}
	return cred, nil
}

// ListCredentials returns credentials matching the filter.
func (s *AccountService) ListCredentials(ctx context.Context, filter port.CredentialFilter) ([]domain.Credential, error) {
	return s.creds.List(ctx, filter)
}
