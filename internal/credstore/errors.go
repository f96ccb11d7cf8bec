package credstore

import "fmt"

// IOError is returned when a cache file cannot be read, decoded, written
// or have its permissions set.
type IOError struct {
	// Op is the operation that failed, e.g. "read", "decode", "write", "chmod".
	Op string

	// Path is the file involved.
	Path string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *IOError) Error() string {
	return fmt.Sprintf("credential cache %s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *IOError) Unwrap() error {
	return e.Err
}
