package mastodon

import (
	"encoding/json"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// DefaultScope is the scope requested when an application does not declare any.
const DefaultScope = "read"

// CreateAppRequest is the body of POST /api/v1/apps.
type CreateAppRequest struct {
	ClientName   string    `json:"client_name"`
	RedirectURIs []string  `json:"redirect_uris"`
	Scopes       ScopeList `json:"scopes,omitempty"`
	Website      string    `json:"website,omitempty"`
}

// ScopeList is a list of OAuth scopes. Mastodon expects scopes in requests as
// a single space separated string, so that is how the list is encoded.
type ScopeList []string

// MarshalJSON encodes the list as a space separated string.
func (s ScopeList) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// String joins the scopes with spaces.
func (s ScopeList) String() string {
	return strings.Join(s, " ")
}

// AppRegistration is an OAuth client registered on one instance.
type AppRegistration struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Website      string   `json:"website,omitempty"`
	Scopes       []string `json:"scopes"`
	RedirectURI  string   `json:"redirect_uri"`
	RedirectURIs []string `json:"redirect_uris"`
	ClientID     string   `json:"client_id"`
	ClientSecret string   `json:"client_secret"`
}

// AllowsRedirect reports whether uri is one of the redirect URIs the
// application was registered with.
func (a *AppRegistration) AllowsRedirect(uri string) bool {
	if a.RedirectURI == uri {
		return true
	}
	for _, u := range a.RedirectURIs {
		if u == uri {
			return true
		}
	}
	// Older instances return all redirect URIs newline separated in redirect_uri.
	for _, u := range strings.Fields(a.RedirectURI) {
		if u == uri {
			return true
		}
	}
	return false
}

// Scope returns the scope string to request for this application.
func (a *AppRegistration) Scope() string {
	if len(a.Scopes) == 0 {
		return DefaultScope
	}
	return ScopeList(a.Scopes).String()
}

// AccessToken is the credential granted to one user by the token endpoint.
type AccessToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Scope       string `json:"scope"`
	CreatedAt   int64  `json:"created_at"`
}

// Created returns the issue time of the token.
func (t *AccessToken) Created() time.Time {
	return time.Unix(t.CreatedAt, 0)
}

// OAuth2Token converts the token for use with an oauth2 token source.
// Mastodon tokens do not expire, so Expiry is left zero.
func (t *AccessToken) OAuth2Token() *oauth2.Token {
	tokenType := t.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}

	return &oauth2.Token{
		AccessToken: t.AccessToken,
		TokenType:   tokenType,
	}
}

// Account is the subset of the Mastodon account entity the CLI displays.
type Account struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Acct        string `json:"acct"`
	DisplayName string `json:"display_name"`
	URL         string `json:"url"`
}
