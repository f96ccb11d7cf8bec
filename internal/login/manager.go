// Package login implements the Mastodon authorization code flow behind the
// login, logout and verify commands.
package login

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"mammut/internal/callback"
	"mammut/internal/mastodon"
	"mammut/pkg/logging"
)

// Store is the credential cache used by the Manager.
type Store interface {
	GetApp(host string) (*mastodon.AppRegistration, bool)
	AddApp(host string, app *mastodon.AppRegistration) error
	GetToken(handle string) (*mastodon.AccessToken, bool)
	AddToken(handle string, token *mastodon.AccessToken) error
	RemoveToken(handle string) error
}

// API is the subset of the Mastodon API the Manager calls.
type API interface {
	RegisterApp(ctx context.Context, instance string, req mastodon.CreateAppRequest) (*mastodon.AppRegistration, error)
	ExchangeCode(ctx context.Context, instance string, app *mastodon.AppRegistration, code string) (*mastodon.AccessToken, error)
	VerifyCredentials(ctx context.Context, instance string, token *mastodon.AccessToken) (*mastodon.Account, error)
}

// Opener opens a URL for the user, normally in the default browser.
type Opener func(url string) error

// Reporter shows progress to the user.
type Reporter interface {
	// Progress prints a single status line.
	Progress(msg string)

	// Waiting shows msg until the returned function is called.
	Waiting(msg string) (stop func())
}

// Options configure a Manager.
type Options struct {
	// CallbackPort is the port for the redirect server. 0 reuses the port of
	// a cached app registration, or picks an ephemeral one. A configured port
	// that cannot be bound fails the login.
	CallbackPort int

	ClientName string
	Website    string
	Scopes     []string

	// Timeout bounds the wait for the browser. 0 waits until ctx is done.
	Timeout time.Duration

	// OpenBrowser hands the authorization URL to the Opener.
	OpenBrowser bool

	// InstanceURL maps a handle to its instance base URL. Defaults to
	// Handle.InstanceURL.
	InstanceURL func(Handle) string
}

// Manager runs logins against Mastodon instances.
type Manager struct {
	store    Store
	api      API
	opener   Opener
	reporter Reporter
	opts     Options
}

// NewManager creates a Manager. A nil opener or reporter disables that
// behaviour.
func NewManager(store Store, api API, opener Opener, reporter Reporter, opts Options) *Manager {
	if reporter == nil {
		reporter = nopReporter{}
	}
	if opts.ClientName == "" {
		opts.ClientName = "mammut"
	}
	if len(opts.Scopes) == 0 {
		opts.Scopes = []string{mastodon.DefaultScope}
	}
	if opts.InstanceURL == nil {
		opts.InstanceURL = Handle.InstanceURL
	}

	return &Manager{
		store:    store,
		api:      api,
		opener:   opener,
		reporter: reporter,
		opts:     opts,
	}
}

// Login authorizes mammut for handle and stores the resulting token.
func (m *Manager) Login(ctx context.Context, handle string) (*mastodon.AccessToken, error) {
	h, err := ParseHandle(handle)
	if err != nil {
		return nil, err
	}
	key := h.String()
	instance := m.opts.InstanceURL(h)

	if _, ok := m.store.GetToken(key); ok {
		return nil, &ValidationError{
			Handle:  key,
			Message: fmt.Sprintf("Already logged in to %s. Run `mammut logout %s` to log out.", key, key),
			Err:     ErrAlreadyLoggedIn,
		}
	}

	app, cached := m.store.GetApp(instance)

	port := m.opts.CallbackPort
	fromApp := false
	if port == 0 && cached {
		port = redirectPort(app.RedirectURI)
		fromApp = port != 0
	}

	srv, err := callback.Start(ctx, port)
	var bindErr *callback.BindError
	if fromApp && errors.As(err, &bindErr) {
		// The app is re-registered below for the new redirect URL.
		logging.Warn("Login", "Port %d of the cached app for %s is in use, using an ephemeral port", port, instance)
		srv, err = callback.Start(ctx, 0)
	}
	if err != nil {
		return nil, err
	}
	defer srv.Stop()

	redirect := srv.RedirectURL()

	if cached && !app.AllowsRedirect(redirect) {
		logging.Info("Login", "Cached app for %s does not allow %s, registering a new one", instance, redirect)
		cached = false
	}

	if !cached {
		m.reporter.Progress("creating new app")
		app, err = m.api.RegisterApp(ctx, instance, mastodon.CreateAppRequest{
			ClientName:   m.opts.ClientName,
			RedirectURIs: []string{redirect},
			Scopes:       m.opts.Scopes,
			Website:      m.opts.Website,
		})
		if err != nil {
			return nil, fmt.Errorf("registering app on %s: %w", instance, err)
		}
		if err := m.store.AddApp(instance, app); err != nil {
			return nil, fmt.Errorf("saving app registration: %w", err)
		}
	} else {
		logging.Debug("Login", "Reusing app %s for %s", app.ClientID, instance)
	}

	// The code is bound to the redirect URI it was issued for, which is the
	// server's, not necessarily every URI the app was registered with.
	exchangeApp := *app
	exchangeApp.RedirectURI = redirect

	state := uuid.NewString()
	srv.ExpectState(state)

	authURL := AuthorizeURL(instance, &exchangeApp, state)
	m.launch(authURL)

	waitCtx := ctx
	if m.opts.Timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, m.opts.Timeout)
		defer cancel()
	}

	stop := m.reporter.Waiting("waiting for signal from browser")
	code, err := srv.Wait(waitCtx)
	stop()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("no authorization received within %s: %w", m.opts.Timeout, err)
		}
		return nil, fmt.Errorf("waiting for authorization: %w", err)
	}

	token, err := m.api.ExchangeCode(ctx, instance, &exchangeApp, code)
	if err != nil {
		return nil, fmt.Errorf("exchanging authorization code: %w", err)
	}

	if err := m.store.AddToken(key, token); err != nil {
		return nil, fmt.Errorf("saving access token: %w", err)
	}

	logging.Info("Login", "Logged in to %s", key)
	return token, nil
}

// Logout forgets the token for handle. The token is not revoked.
func (m *Manager) Logout(handle string) error {
	h, err := ParseHandle(handle)
	if err != nil {
		return err
	}
	key := h.String()

	if _, ok := m.store.GetToken(key); !ok {
		return notLoggedIn(key)
	}

	if err := m.store.RemoveToken(key); err != nil {
		return fmt.Errorf("removing access token: %w", err)
	}

	logging.Info("Login", "Logged out of %s", key)
	return nil
}

// Verify checks the cached token for handle against its instance.
func (m *Manager) Verify(ctx context.Context, handle string) (*mastodon.Account, error) {
	h, err := ParseHandle(handle)
	if err != nil {
		return nil, err
	}
	key := h.String()

	token, ok := m.store.GetToken(key)
	if !ok {
		return nil, notLoggedIn(key)
	}

	account, err := m.api.VerifyCredentials(ctx, m.opts.InstanceURL(h), token)
	if err != nil {
		return nil, fmt.Errorf("verifying credentials for %s: %w", key, err)
	}
	return account, nil
}

// AuthorizeURL builds the URL the user visits to approve app. The instance
// echoes state back on the redirect.
func AuthorizeURL(instance string, app *mastodon.AppRegistration, state string) string {
	conf := &oauth2.Config{
		ClientID:    app.ClientID,
		Endpoint:    mastodon.Endpoint(instance),
		RedirectURL: app.RedirectURI,
		Scopes:      strings.Fields(app.Scope()),
	}

	return conf.AuthCodeURL(state, oauth2.SetAuthURLParam("force_login", "true"))
}

func (m *Manager) launch(authURL string) {
	if m.opts.OpenBrowser && m.opener != nil {
		err := m.opener(authURL)
		if err == nil {
			logging.Debug("Login", "Opened %s", authURL)
			return
		}
		logging.Warn("Login", "Could not open browser: %v", err)
	}

	m.reporter.Progress("Open this URL in your browser to authorize mammut:\n\n  " + authURL + "\n")
}

func notLoggedIn(key string) error {
	return &ValidationError{
		Handle:  key,
		Message: fmt.Sprintf("Not logged in to %s.", key),
		Err:     ErrNotLoggedIn,
	}
}

// redirectPort returns the port of a localhost redirect URI, or 0.
func redirectPort(redirectURI string) int {
	for _, raw := range strings.Fields(redirectURI) {
		u, err := url.Parse(raw)
		if err != nil || u.Hostname() != "localhost" {
			continue
		}
		if port, err := strconv.Atoi(u.Port()); err == nil && port > 0 && port <= 65535 {
			return port
		}
	}
	return 0
}

type nopReporter struct{}

func (nopReporter) Progress(string) {}

func (nopReporter) Waiting(string) func() { return func() {} }
