package console

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/MaximilianoRao/Grupo22-Integrador-Programacion-II/internal/core/domain"
	"github.com/MaximilianoRao/Grupo22-Integrador-Programacion-II/internal/core/port"
	"github.com/MaximilianoRao/Grupo22-Integrador-Programacion-II/internal/repository"
	"github.com/MaximilianoRao/Grupo22-Integrador-Programacion-II/internal/usecase"
)

// Menu is the interactive shell over the account orchestrator. It reads one
// choice at a time, delegates to the service, and is the only layer that
// turns errors into human-readable messages.
type Menu struct {
	accounts *usecase.AccountService
	in       *Input
	out      io.Writer
	log      *zap.Logger
}

// NewMenu wires the console shell.
func NewMenu(accounts *usecase.AccountService, in io.Reader, out io.Writer, log *zap.Logger) *Menu {
	if log == nil {
		log = zap.NewNop()
	}
	return &Menu{
		accounts: accounts,
		in:       NewInput(in, out),
		out:      out,
		log:      log,
	}
}

const menuText = `
========= ACCOUNT REGISTRY =========
 Users
  1. Create user (with credential)
  2. List users
  3. Find user by ID
  4. Find user by username
  5. Find user by email
  6. Update user
  7. Delete user (cascades to credential)
  8. Activate user
  9. Deactivate user
 Credentials
 10. Create standalone credential
 11. List credentials
 12. Find credential by ID
 13. Update credential
 14. Delete credential (direct, guarded)
 15. Change password
  0. Exit
====================================
`

// Run drives the menu loop until the operator exits or input ends.
func (m *Menu) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprint(m.out, menuText)
		choice, err := m.in.ReadInt64("Choose an option: ")
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read menu choice: %w", err)
		}

		if choice == 0 {
			fmt.Fprintln(m.out, "Goodbye.")
			return nil
		}

		if err := m.dispatch(ctx, choice); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

// dispatch returns an error only for I/O failures on the console itself;
// domain errors are rendered and swallowed so the loop continues.
func (m *Menu) dispatch(ctx context.Context, choice int64) error {
	switch choice {
	case 1:
		return m.createUser(ctx)
	case 2:
		return m.listUsers(ctx)
	case 3:
		return m.findUserByID(ctx)
	case 4:
		return m.findUserByUsername(ctx)
	case 5:
		return m.findUserByEmail(ctx)
	case 6:
		return m.updateUser(ctx)
	case 7:
		return m.deleteUser(ctx)
	case 8:
		return m.setUserActive(ctx, true)
	case 9:
		return m.setUserActive(ctx, false)
	case 10:
		return m.createCredential(ctx)
	case 11:
		return m.listCredentials(ctx)
	case 12:
		return m.findCredentialByID(ctx)
	case 13:
		return m.updateCredential(ctx)
	case 14:
		return m.deleteCredential(ctx)
	case 15:
		return m.changePassword(ctx)
	default:
		warn(m.out, "Unknown option.")
		return nil
	}
}

func (m *Menu) renderError(err error) {
	var vErr *usecase.ValidationError
	switch {
	case errors.As(err, &vErr):
		failure(m.out, "Validation: "+vErr.Error())
	case errors.Is(err, usecase.ErrUserNotFound),
		errors.Is(err, usecase.ErrCredentialNotFound):
		warn(m.out, err.Error()+"; nothing to do.")
	case errors.Is(err, usecase.ErrUsernameTaken),
		errors.Is(err, usecase.ErrEmailTaken),
		errors.Is(err, usecase.ErrCredentialInUse),
		errors.Is(err, repository.ErrConflict):
		failure(m.out, "Conflict: "+err.Error())
	default:
		failure(m.out, "Operation failed: "+err.Error())
		m.log.Error("console operation failed", zap.Error(err))
	}
}

func (m *Menu) createUser(ctx context.Context) error {
	header(m.out, "CREATE USER")

	username, err := m.in.ReadString("Username: ")
	if err != nil {
		return err
	}
	email, err := m.in.ReadString("Email: ")
	if err != nil {
		return err
	}
	active, err := m.in.ReadBool("Active right away?")
	if err != nil {
		return err
	}

	fmt.Fprintln(m.out, "\n--- Access credential ---")
	hash, err := m.in.ReadSecret("Password hash: ")
	if err != nil {
		return err
	}
	salt, err := m.in.ReadSecret("Salt: ")
	if err != nil {
		return err
	}
	resetRequired, err := m.in.ReadBool("Require password reset?")
	if err != nil {
		return err
	}

	user := domain.User{Username: username, Email: email, Active: active}
	cred := domain.Credential{PasswordHash: hash, Salt: salt, ResetRequired: resetRequired}

	created, err := m.accounts.CreateWithCredential(ctx, user, cred)
	if err != nil {
		m.renderError(err)
		m.in.Pause()
		return nil
	}

	success(m.out, fmt.Sprintf("User created with ID %d.", created.ID))
	printUser(m.out, *created)
	m.in.Pause()
	return nil
}

func (m *Menu) listUsers(ctx context.Context) error {
	header(m.out, "USERS")

	includeDeleted, err := m.in.ReadBool("Include deleted (administrative view)?")
	if err != nil {
		return err
	}

	users, err := m.accounts.ListUsers(ctx, port.UserFilter{IncludeDeleted: includeDeleted})
	if err != nil {
		m.renderError(err)
		m.in.Pause()
		return nil
	}

	if len(users) == 0 {
		warn(m.out, "No users registered.")
	} else {
		fmt.Fprintf(m.out, "Total: %d\n", len(users))
		for _, user := range users {
			fmt.Fprintln(m.out, separator)
			printUser(m.out, user)
		}
	}
	m.in.Pause()
	return nil
}

func (m *Menu) findUserByID(ctx context.Context) error {
	header(m.out, "FIND USER BY ID")

	id, err := m.in.ReadInt64("User ID: ")
	if err != nil {
		return err
	}

	user, err := m.accounts.GetUser(ctx, id)
	if err != nil {
		m.renderError(err)
		m.in.Pause()
		return nil
	}

	printUser(m.out, *user)
	m.in.Pause()
	return nil
}

func (m *Menu) findUserByUsername(ctx context.Context) error {
	header(m.out, "FIND USER BY USERNAME")

	username, err := m.in.ReadString("Username: ")
	if err != nil {
		return err
	}

	user, err := m.accounts.FindByUsername(ctx, username)
	if err != nil {
		m.renderError(err)
		m.in.Pause()
		return nil
	}

	printUser(m.out, *user)
	m.in.Pause()
	return nil
}

func (m *Menu) findUserByEmail(ctx context.Context) error {
	header(m.out, "FIND USER BY EMAIL")

	email, err := m.in.ReadString("Email: ")
	if err != nil {
		return err
	}

	user, err := m.accounts.FindByEmail(ctx, email)
	if err != nil {
		m.renderError(err)
		m.in.Pause()
		return nil
	}

	printUser(m.out, *user)
	m.in.Pause()
	return nil
}

func (m *Menu) updateUser(ctx context.Context) error {
	header(m.out, "UPDATE USER")

	id, err := m.in.ReadInt64("User ID: ")
	if err != nil {
		return err
	}

	current, err := m.accounts.GetUser(ctx, id)
	if err != nil {
		m.renderError(err)
		m.in.Pause()
		return nil
	}

	fmt.Fprintln(m.out, "Current values (blank keeps them):")
	username, err := m.in.ReadOptional("Username", current.Username)
	if err != nil {
		return err
	}
	email, err := m.in.ReadOptional("Email", current.Email)
	if err != nil {
		return err
	}

	updated := *current
	updated.Username = username
	updated.Email = email

	if err := m.accounts.UpdateUser(ctx, updated); err != nil {
		m.renderError(err)
		m.in.Pause()
		return nil
	}

	success(m.out, "User updated.")
	m.in.Pause()
	return nil
}

func (m *Menu) deleteUser(ctx context.Context) error {
	header(m.out, "DELETE USER")

	id, err := m.in.ReadInt64("User ID: ")
	if err != nil {
		return err
	}
	confirmed, err := m.in.ReadBool("This also deletes the owned credential. Continue?")
	if err != nil {
		return err
	}
	if !confirmed {
		warn(m.out, "Cancelled.")
		m.in.Pause()
		return nil
	}

	if err := m.accounts.DeleteCascading(ctx, id); err != nil {
		m.renderError(err)
		m.in.Pause()
		return nil
	}

	success(m.out, "User and credential deleted.")
	m.in.Pause()
	return nil
}

func (m *Menu) setUserActive(ctx context.Context, active bool) error {
	if active {
		header(m.out, "ACTIVATE USER")
	} else {
		header(m.out, "DEACTIVATE USER")
	}

	id, err := m.in.ReadInt64("User ID: ")
	if err != nil {
		return err
	}

	if err := m.accounts.SetActive(ctx, id, active); err != nil {
		m.renderError(err)
		m.in.Pause()
		return nil
	}

	if active {
		success(m.out, "User activated.")
	} else {
		success(m.out, "User deactivated.")
	}
	m.in.Pause()
	return nil
}

func (m *Menu) createCredential(ctx context.Context) error {
	header(m.out, "CREATE CREDENTIAL")

	hash, err := m.in.ReadSecret("Password hash: ")
	if err != nil {
		return err
	}
	salt, err := m.in.ReadSecret("Salt: ")
	if err != nil {
		return err
	}
	resetRequired, err := m.in.ReadBool("Require password reset?")
	if err != nil {
		return err
	}

	cred := domain.Credential{PasswordHash: hash, Salt: salt, ResetRequired: resetRequired}

	created, err := m.accounts.CreateCredential(ctx, cred)
	if err != nil {
		m.renderError(err)
		m.in.Pause()
		return nil
	}

	success(m.out, fmt.Sprintf("Credential created with ID %d.", created.ID))
	m.in.Pause()
	return nil
}

func (m *Menu) listCredentials(ctx context.Context) error {
	header(m.out, "CREDENTIALS")

	includeDeleted, err := m.in.ReadBool("Include deleted (administrative view)?")
	if err != nil {
		return err
	}

	creds, err := m.accounts.ListCredentials(ctx, port.CredentialFilter{IncludeDeleted: includeDeleted})
	if err != nil {
		m.renderError(err)
		m.in.Pause()
		return nil
	}

	if len(creds) == 0 {
		warn(m.out, "No credentials stored.")
	} else {
		fmt.Fprintf(m.out, "Total: %d\n", len(creds))
		for _, cred := range creds {
			fmt.Fprintln(m.out, separator)
			printCredential(m.out, cred)
		}
	}
	m.in.Pause()
	return nil
}

func (m *Menu) findCredentialByID(ctx context.Context) error {
	header(m.out, "FIND CREDENTIAL BY ID")

	id, err := m.in.ReadInt64("Credential ID: ")
	if err != nil {
		return err
	}

	cred, err := m.accounts.GetCredential(ctx, id)
	if err != nil {
		m.renderError(err)
		m.in.Pause()
		return nil
	}

	printCredential(m.out, *cred)
	m.in.Pause()
	return nil
}

func (m *Menu) updateCredential(ctx context.Context) error {
	header(m.out, "UPDATE CREDENTIAL")

	id, err := m.in.ReadInt64("Credential ID: ")
	if err != nil {
		return err
	}

	current, err := m.accounts.GetCredential(ctx, id)
	if err != nil {
		m.renderError(err)
		m.in.Pause()
		return nil
	}

	hash, err := m.in.ReadSecret("New password hash: ")
	if err != nil {
		return err
	}
	salt, err := m.in.ReadSecret("New salt: ")
	if err != nil {
		return err
	}
	resetRequired, err := m.in.ReadBool("Require password reset?")
	if err != nil {
		return err
	}

	updated := *current
	updated.PasswordHash = hash
	updated.Salt = salt
	updated.ResetRequired = resetRequired

	if err := m.accounts.UpdateCredential(ctx, updated); err != nil {
		m.renderError(err)
		m.in.Pause()
		return nil
	}

	success(m.out, "Credential updated.")
	m.in.Pause()
	return nil
}

func (m *Menu) deleteCredential(ctx context.Context) error {
	header(m.out, "DELETE CREDENTIAL")

	id, err := m.in.ReadInt64("Credential ID: ")
	if err != nil {
		return err
	}

	if err := m.accounts.DeleteCredential(ctx, id); err != nil {
		m.renderError(err)
		m.in.Pause()
		return nil
	}

	success(m.out, "Credential deleted.")
	m.in.Pause()
	return nil
}

func (m *Menu) changePassword(ctx context.Context) error {
	header(m.out, "CHANGE PASSWORD")

	id, err := m.in.ReadInt64("Credential ID: ")
	if err != nil {
		return err
	}
	hash, err := m.in.ReadSecret("New password hash: ")
	if err != nil {
		return err
	}
	salt, err := m.in.ReadSecret("New salt: ")
	if err != nil {
		return err
	}

	rotated, err := m.accounts.ChangePassword(ctx, id, hash, salt)
	if err != nil {
		m.renderError(err)
		m.in.Pause()
		return nil
	}

	success(m.out, fmt.Sprintf("Password rotated; last changed %s.", rotated.LastChanged.Format("2006-01-02 15:04:05")))
	m.in.Pause()
	return nil
}
