package usecase

import "errors"

var (
	// ErrUserNotFound indicates no live user exists for the requested id or lookup value.
	ErrUserNotFound = errors.New("user not found")
	// ErrCredentialNotFound indicates no live credential exists for the requested id.
	ErrCredentialNotFound = errors.New("credential not found")
	// ErrUsernameTaken indicates another live user already holds the username.
	ErrUsernameTaken = errors.New("username already in use")
	// ErrEmailTaken indicates another live user already holds the email.
	ErrEmailTaken = errors.New("email already in use")
	// ErrCredentialInUse rejects direct deletion of a credential still owned by a live user.
	ErrCredentialInUse = errors.New("credential is referenced by a live user")
)
