package login

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidHandle is wrapped when a handle is not of the form @local@host.
	ErrInvalidHandle = errors.New("invalid handle")

	// ErrAlreadyLoggedIn is wrapped when a token is already cached for a handle.
	ErrAlreadyLoggedIn = errors.New("already logged in")

	// ErrNotLoggedIn is wrapped when no token is cached for a handle.
	ErrNotLoggedIn = errors.New("not logged in")
)

// ValidationError reports a problem with the user's input or the local state
// it refers to. No side effects have happened when one is returned.
type ValidationError struct {
	Handle  string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%v: %s", e.Err, e.Handle)
}

// Unwrap returns the underlying sentinel error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}
