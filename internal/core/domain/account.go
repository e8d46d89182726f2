package domain

import "time"

// Record carries the surrogate identity and soft-delete flag shared by every
// persisted entity. Entities embed it instead of extending a base type.
type Record struct {
	ID      int64
	Deleted bool
}

// Credential mirrors the persisted representation in the credentials table.
// The hash and salt are opaque strings supplied by the caller; no hashing is
// performed anywhere in this system.
type Credential struct {
	Record
	PasswordHash  string
	Salt          string
	LastChanged   time.Time
	ResetRequired bool
}

// User mirrors the persisted representation in the users table. Every live
// user owns exactly one live credential, referenced by CredentialID. The
// credential carries no back-reference to its owner.
type User struct {
	Record
	Username     string
	Email        string
	Active       bool
	RegisteredAt time.Time
	CredentialID int64

	// Credential is the eagerly joined owned credential. Reads that return a
	// User always resolve it; a live user without one is an integrity fault.
	Credential *Credential
}
