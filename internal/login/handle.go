package login

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var handlePattern = regexp.MustCompile(`^@([^@\s]+)@([^@\s]+)$`)

// Handle is a fediverse account address, @local@host.
type Handle struct {
	Local string
	Host  string
}

// ParseHandle validates s and splits it into its parts. The host is
// lowercased.
func ParseHandle(s string) (Handle, error) {
	m := handlePattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Handle{}, &ValidationError{
			Handle:  s,
			Message: fmt.Sprintf("invalid handle %q: expected the form @user@instance", s),
			Err:     ErrInvalidHandle,
		}
	}

	host := strings.ToLower(m[2])
	u, err := url.Parse("https://" + host)
	if err != nil || u.Host != host || u.Hostname() == "" {
		return Handle{}, &ValidationError{
			Handle:  s,
			Message: fmt.Sprintf("invalid handle %q: %q is not a valid host", s, m[2]),
			Err:     ErrInvalidHandle,
		}
	}

	return Handle{Local: m[1], Host: host}, nil
}

// String returns the canonical @local@host form used as the token cache key.
func (h Handle) String() string {
	return "@" + h.Local + "@" + h.Host
}

// InstanceURL returns the base URL of the account's instance. It is the key
// app registrations are cached under.
func (h Handle) InstanceURL() string {
	return "https://" + h.Host
}
