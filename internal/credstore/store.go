package credstore

import (
	"os"
	"path/filepath"

	"mammut/internal/mastodon"
	"mammut/pkg/logging"
)

// File names inside the storage directory.
const (
	AppsFile   = "apps.json"
	TokensFile = "tokens.json"
)

// Store holds app registrations keyed by instance URL and access tokens
// keyed by account handle.
type Store struct {
	dir    string
	apps   *Cache[mastodon.AppRegistration]
	tokens *Cache[mastodon.AccessToken]
}

// Open creates dir if needed and loads both caches from it.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, DirMode); err != nil {
		return nil, &IOError{Op: "mkdir", Path: dir, Err: err}
	}

	apps, err := OpenCache[mastodon.AppRegistration](filepath.Join(dir, AppsFile))
	if err != nil {
		return nil, err
	}

	tokens, err := OpenCache[mastodon.AccessToken](filepath.Join(dir, TokensFile))
	if err != nil {
		return nil, err
	}

	logging.Debug("CredStore", "Opened store with %d apps (%s) and %d tokens (%s)", apps.Len(), apps.Path(), tokens.Len(), tokens.Path())
	return &Store{dir: dir, apps: apps, tokens: tokens}, nil
}

// Dir returns the storage directory.
func (s *Store) Dir() string {
	return s.dir
}

// GetApp returns the registration for an instance URL.
func (s *Store) GetApp(host string) (*mastodon.AppRegistration, bool) {
	app, ok := s.apps.Get(host)
	if !ok {
		return nil, false
	}
	return &app, true
}

// AddApp stores the registration for an instance URL.
func (s *Store) AddApp(host string, app *mastodon.AppRegistration) error {
	return s.apps.Set(host, *app)
}

// RemoveApp deletes the registration for an instance URL.
func (s *Store) RemoveApp(host string) error {
	return s.apps.Remove(host)
}

// GetToken returns the access token for a handle.
func (s *Store) GetToken(handle string) (*mastodon.AccessToken, bool) {
	token, ok := s.tokens.Get(handle)
	if !ok {
		return nil, false
	}
	return &token, true
}

// AddToken stores the access token for a handle.
func (s *Store) AddToken(handle string, token *mastodon.AccessToken) error {
	return s.tokens.Set(handle, *token)
}

// RemoveToken deletes the access token for a handle.
func (s *Store) RemoveToken(handle string) error {
	return s.tokens.Remove(handle)
}

// Handles returns every handle with a stored token, sorted.
func (s *Store) Handles() []string {
	return s.tokens.Keys()
}

// Hosts returns every instance URL with a stored registration, sorted.
func (s *Store) Hosts() []string {
	return s.apps.Keys()
}
