package usecase

import (
	"fmt"
	"regexp"
	"time"

	"github.com/MaximilianoRao/Grupo22-Integrador-Programacion-II/internal/core/domain"
)

const (
	maxUsernameLength = 30
	maxEmailLength    = 120
	maxHashLength     = 255
	maxSaltLength     = 64
)

var (
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// ValidationError names the field that failed a pre-persistence check.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s %s", e.Field, e.Message)
}

func invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// ValidateUser checks field-level rules for a user. It never touches the
// store; uniqueness needs a query and belongs to the orchestrator.
func ValidateUser(user domain.User) error {
	if user.Username == "" {
		return invalid("username", "must not be empty")
	}
	if len(user.Username) > maxUsernameLength {
		return invalid("username", fmt.Sprintf("must not exceed %d characters", maxUsernameLength))
	}
	if !usernamePattern.MatchString(user.Username) {
		return invalid("username", "may only contain letters, digits and underscores")
	}
	if user.Email == "" {
		return invalid("email", "must not be empty")
	}
	if len(user.Email) > maxEmailLength {
		return invalid("email", fmt.Sprintf("must not exceed %d characters", maxEmailLength))
	}
	if !emailPattern.MatchString(user.Email) {
		return invalid("email", "is not a valid address")
	}
	if !user.RegisteredAt.IsZero() && user.RegisteredAt.After(time.Now().UTC()) {
		return invalid("registered_at", "must not be in the future")
	}
	if user.CredentialID == 0 && user.Credential == nil {
		return invalid("credential", "is required")
	}
	return nil
}

// ValidateCredential checks field-level rules for a credential. The hash and
// salt are opaque; only presence and length are enforced here.
func ValidateCredential(cred domain.Credential) error {
	if cred.PasswordHash == "" {
		return invalid("password_hash", "must not be empty")
	}
	if len(cred.PasswordHash) > maxHashLength {
		return invalid("password_hash", fmt.Sprintf("must not exceed %d characters", maxHashLength))
	}
	if cred.Salt == "" {
		return invalid("salt", "must not be empty")
	}
	if len(cred.Salt) > maxSaltLength {
		return invalid("salt", fmt.Sprintf("must not exceed %d characters", maxSaltLength))
	}
	if !cred.LastChanged.IsZero() && cred.LastChanged.After(time.Now().UTC()) {
		return invalid("last_changed", "must not be in the future")
	}
	return nil
}
