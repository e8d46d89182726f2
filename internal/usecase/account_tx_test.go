package usecase

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/MaximilianoRao/Grupo22-Integrador-Programacion-II/internal/core/domain"
	"github.com/MaximilianoRao/Grupo22-Integrador-Programacion-II/internal/repository/postgres"
)

// These tests drive the orchestrator through the real PostgreSQL repositories
// against a pgxmock pool, so they observe the actual BEGIN/COMMIT/ROLLBACK
// traffic instead of counters on a hand mock.

const (
	insertCredentialSQL = "INSERT INTO accounts.credentials (password_hash,salt,last_changed,reset_required,deleted) VALUES ($1,$2,$3,$4,$5) RETURNING id"
	insertUserSQL       = "INSERT INTO accounts.users (username,email,active,registered_at,credential_id,deleted) VALUES ($1,$2,$3,$4,$5,$6) RETURNING id"
	countUsernameSQL    = "SELECT COUNT(*) FROM accounts.users WHERE deleted = $1 AND username = $2"
	countEmailSQL       = "SELECT COUNT(*) FROM accounts.users WHERE deleted = $1 AND email = $2"
	countReferencesSQL  = "SELECT COUNT(*) FROM accounts.users WHERE credential_id = $1 AND deleted = $2"
	softDeleteUserSQL   = "UPDATE accounts.users SET deleted = $1 WHERE deleted = $2 AND id = $3"
	softDeleteCredSQL   = "UPDATE accounts.credentials SET deleted = $1 WHERE deleted = $2 AND id = $3"
)

var joinedUserColumns = []string{
	"id", "username", "email", "active", "registered_at", "credential_id", "deleted",
	"id", "password_hash", "salt", "last_changed", "reset_required", "deleted",
}

func newTxTestService(t *testing.T) (*AccountService, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("create pgxmock pool: %v", err)
	}
	t.Cleanup(mock.Close)

	svc := NewAccountService(mock, postgres.NewUserRepository(mock), postgres.NewCredentialRepository(mock), nil)
	svc.now = func() time.Time { return fixedNow }
	return svc, mock
}

func expectQuery(mock pgxmock.PgxPoolIface, sql string) *pgxmock.ExpectedQuery {
	return mock.ExpectQuery(regexp.QuoteMeta(sql))
}

func expectExec(mock pgxmock.PgxPoolIface, sql string) *pgxmock.ExpectedExec {
	return mock.ExpectExec(regexp.QuoteMeta(sql))
}

func TestCreateWithCredential_CommitsPair(t *testing.T) {
	svc, mock := newTxTestService(t)

	mock.ExpectBegin()
	expectQuery(mock, countUsernameSQL).
		WithArgs(false, "alice").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(0)))
	expectQuery(mock, countEmailSQL).
		WithArgs(false, "alice@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(0)))
	expectQuery(mock, insertCredentialSQL).
		WithArgs("h1", "s1", fixedNow, false, false).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(7)))
	expectQuery(mock, insertUserSQL).
		WithArgs("alice", "alice@example.com", false, fixedNow, int64(7), false).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(3)))
	mock.ExpectCommit()

	created, err := svc.CreateWithCredential(
		context.Background(),
		domain.User{Username: "alice", Email: "alice@example.com"},
		domain.Credential{PasswordHash: "h1", Salt: "s1"},
	)
	if err != nil {
		t.Fatalf("CreateWithCredential returned error: %v", err)
	}
	if created.ID != 3 || created.CredentialID != 7 {
		t.Fatalf("unexpected created user: %+v", created)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateWithCredential_RollsBackWhenUserInsertFails(t *testing.T) {
	svc, mock := newTxTestService(t)

	driverErr := errors.New("connection reset")

	mock.ExpectBegin()
	expectQuery(mock, countUsernameSQL).
		WithArgs(false, "alice").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(0)))
	expectQuery(mock, countEmailSQL).
		WithArgs(false, "alice@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(0)))
	expectQuery(mock, insertCredentialSQL).
		WithArgs("h1", "s1", fixedNow, false, false).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(7)))
	expectQuery(mock, insertUserSQL).
		WithArgs("alice", "alice@example.com", false, fixedNow, int64(7), false).
		WillReturnError(driverErr)
	mock.ExpectRollback()

	_, err := svc.CreateWithCredential(
		context.Background(),
		domain.User{Username: "alice", Email: "alice@example.com"},
		domain.Credential{PasswordHash: "h1", Salt: "s1"},
	)
	if !errors.Is(err, driverErr) {
		t.Fatalf("expected driver error to propagate, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeleteCascading_CommitsBothSoftDeletes(t *testing.T) {
	svc, mock := newTxTestService(t)

	registered := fixedNow.Add(-72 * time.Hour)
	lastChanged := fixedNow.Add(-24 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT u.id, u.username").
		WithArgs(false, int64(3)).
		WillReturnRows(pgxmock.NewRows(joinedUserColumns).AddRow(
			int64(3), "alice", "alice@example.com", true, registered, int64(7), false,
			int64(7), "h1", "s1", lastChanged, false, false,
		))
	expectExec(mock, softDeleteUserSQL).
		WithArgs(true, false, int64(3)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	expectExec(mock, softDeleteCredSQL).
		WithArgs(true, false, int64(7)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	if err := svc.DeleteCascading(context.Background(), 3); err != nil {
		t.Fatalf("DeleteCascading returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeleteCredential_RollsBackWhenReferenced(t *testing.T) {
	svc, mock := newTxTestService(t)

	mock.ExpectBegin()
	expectQuery(mock, countReferencesSQL).
		WithArgs(int64(7), false).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))
	mock.ExpectRollback()

	if err := svc.DeleteCredential(context.Background(), 7); !errors.Is(err, ErrCredentialInUse) {
		t.Fatalf("expected ErrCredentialInUse, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
