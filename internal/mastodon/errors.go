package mastodon

import (
	"fmt"
	"unicode/utf8"
)

// APIError is returned when a request to the instance fails: the transport
// failed, the instance answered with a non-2xx status, or the body could not
// be decoded into the expected shape.
type APIError struct {
	// Endpoint is the path that was called, e.g. /oauth/token.
	Endpoint string

	// StatusCode is the HTTP status, or 0 if no response was received.
	StatusCode int

	// Body is the raw response body, if any.
	Body []byte

	// Err is the underlying transport or decoding error, if any.
	Err error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	switch {
	case e.StatusCode == 0:
		return fmt.Sprintf("calling %s: %v", e.Endpoint, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("decoding response from %s (status %d): %v", e.Endpoint, e.StatusCode, e.Err)
	default:
		return fmt.Sprintf("API %s returned status %d: %s", e.Endpoint, e.StatusCode, sanitizeResponseBody(e.Body))
	}
}

// Unwrap returns the underlying error.
func (e *APIError) Unwrap() error {
	return e.Err
}

// sanitizeResponseBody truncates and sanitizes a response body for
// inclusion in error messages. Limits to 256 bytes and replaces
// non-printable characters to prevent terminal injection.
func sanitizeResponseBody(body []byte) string {
	const maxLen = 256
	if len(body) > maxLen {
		body = body[:maxLen]
	}

	var clean []byte
	for len(body) > 0 {
		r, size := utf8.DecodeRune(body)
		if r == utf8.RuneError && size <= 1 {
			clean = append(clean, '?')
			body = body[1:]
			continue
		}

		if r < 0x20 && r != '\n' && r != '\r' && r != '\t' {
			clean = append(clean, '?')
		} else {
			clean = append(clean, body[:size]...)
		}
		body = body[size:]
	}

	return string(clean)
}
