package callback

import "fmt"

// BindError is returned by Start when the listening socket cannot be bound.
type BindError struct {
	Addr string
	Err  error
}

// Error implements the error interface.
func (e *BindError) Error() string {
	return fmt.Sprintf("failed to start callback server on %s: %v", e.Addr, e.Err)
}

// Unwrap returns the underlying error.
func (e *BindError) Unwrap() error {
	return e.Err
}
