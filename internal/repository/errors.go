package repository

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist or is soft-deleted.
	ErrNotFound = errors.New("repository: not found")
	// ErrConflict indicates a uniqueness constraint rejected the write. The
	// database constraint is the authoritative enforcement; in-transaction
	// pre-checks are best-effort only.
	ErrConflict = errors.New("repository: conflict")
)
