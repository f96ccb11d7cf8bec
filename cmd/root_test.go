package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mammut/internal/callback"
	"mammut/internal/config"
	"mammut/internal/credstore"
	"mammut/internal/login"
	"mammut/internal/mastodon"
)

func TestSetVersion(t *testing.T) {
	testVersion := "1.2.3-test"
	SetVersion(testVersion)

	assert.Equal(t, testVersion, rootCmd.Version)
	assert.Equal(t, testVersion, GetVersion())
}

func TestRootCommand(t *testing.T) {
	assert.Equal(t, "mammut", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
	assert.True(t, rootCmd.SilenceUsage)
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("verbose"))
	assert.Equal(t, "v", rootCmd.PersistentFlags().Lookup("verbose").Shorthand)
}

func TestVersionTemplate(t *testing.T) {
	testCmd := &cobra.Command{
		Use:     "test",
		Version: "1.0.0",
	}
	testCmd.SetVersionTemplate(`{{printf "mammut version %s\n" .Version}}`)

	var buf bytes.Buffer
	testCmd.SetOut(&buf)
	testCmd.SetArgs([]string{"--version"})
	require.NoError(t, testCmd.Execute())

	assert.Equal(t, "mammut version 1.0.0\n", buf.String())
}

func TestSubcommands(t *testing.T) {
	found := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		found[c.Name()] = true
	}

	for _, expected := range []string{"version", "login", "logout", "status", "verify"} {
		assert.True(t, found[expected], "expected subcommand %s to be registered", expected)
	}
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: ExitCodeSuccess},
		{name: "generic", err: errors.New("boom"), want: ExitCodeError},
		{name: "validation", err: &login.ValidationError{Err: login.ErrInvalidHandle}, want: ExitCodeValidation},
		{name: "config", err: config.ValidationErrors{{Field: "callbackPort"}}, want: ExitCodeValidation},
		{name: "api", err: fmt.Errorf("exchanging: %w", &mastodon.APIError{Endpoint: mastodon.TokenPath, StatusCode: 400}), want: ExitCodeNetwork},
		{name: "transport", err: &mastodon.APIError{Endpoint: mastodon.AppsPath, Err: errors.New("connection refused")}, want: ExitCodeNetwork},
		{name: "storage", err: fmt.Errorf("saving: %w", &credstore.IOError{Op: "write", Path: "tokens.json", Err: os.ErrPermission}), want: ExitCodeStorage},
		{name: "bind", err: &callback.BindError{Addr: "127.0.0.1:4000", Err: errors.New("address in use")}, want: ExitCodeBind},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, getExitCode(tt.err))
		})
	}
}

type fakeAPI struct {
	codes []string
}

func (f *fakeAPI) RegisterApp(_ context.Context, _ string, req mastodon.CreateAppRequest) (*mastodon.AppRegistration, error) {
	return &mastodon.AppRegistration{
		ID:           "1",
		Name:         req.ClientName,
		Scopes:       req.Scopes,
		RedirectURI:  req.RedirectURIs[0],
		RedirectURIs: req.RedirectURIs,
		ClientID:     "cid",
		ClientSecret: "secret",
	}, nil
}

func (f *fakeAPI) ExchangeCode(_ context.Context, _ string, _ *mastodon.AppRegistration, code string) (*mastodon.AccessToken, error) {
	f.codes = append(f.codes, code)
	return &mastodon.AccessToken{AccessToken: "tok", TokenType: "Bearer", Scope: "read", CreatedAt: 1700000000}, nil
}

func (f *fakeAPI) VerifyCredentials(_ context.Context, _ string, token *mastodon.AccessToken) (*mastodon.Account, error) {
	if token.AccessToken != "tok" {
		return nil, &mastodon.APIError{Endpoint: mastodon.VerifyCredentialsPath, StatusCode: http.StatusUnauthorized}
	}
	return &mastodon.Account{ID: "42", Username: "me", Acct: "me", DisplayName: "Me", URL: "https://example.com/@me"}, nil
}

// setupCLI points mammut at a temporary home directory and replaces the
// browser and the instance with fakes.
func setupCLI(t *testing.T) (string, *fakeAPI) {
	t.Helper()

	home := t.TempDir()
	t.Setenv("MAMMUT_HOME", home)

	api := &fakeAPI{}
	originalAPI, originalOpen := newAPI, openURL
	newAPI = func() login.API { return api }
	openURL = func(authURL string) error {
		u, err := url.Parse(authURL)
		if err != nil {
			return err
		}
		q := u.Query()
		resp, err := http.Get(q.Get("redirect_uri") + "?" + url.Values{"code": {"XYZ"}, "state": {q.Get("state")}}.Encode())
		if err != nil {
			return err
		}
		return resp.Body.Close()
	}
	t.Cleanup(func() {
		newAPI, openURL = originalAPI, originalOpen
		verbose = false
	})

	return home, api
}

func executeCommand(args ...string) (string, error) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestLoginCommand(t *testing.T) {
	home, api := setupCLI(t)

	out, err := executeCommand("login", "@me@example.com")
	require.NoError(t, err, out)

	assert.Contains(t, out, "creating new app")
	assert.Contains(t, out, "waiting for signal from browser")
	assert.Contains(t, out, "Logged in to @me@example.com")
	assert.Equal(t, []string{"XYZ"}, api.codes)

	store, err := credstore.Open(home)
	require.NoError(t, err)
	token, ok := store.GetToken("@me@example.com")
	require.True(t, ok)
	assert.Equal(t, "tok", token.AccessToken)
	_, ok = store.GetApp("https://example.com")
	assert.True(t, ok)

	out, err = executeCommand("login", "@me@example.com")
	require.Error(t, err)
	assert.Equal(t, ExitCodeValidation, getExitCode(err))
	assert.Contains(t, out, "Already logged in to @me@example.com")
}

func TestRootCommand_HandleShorthand(t *testing.T) {
	_, api := setupCLI(t)

	out, err := executeCommand("@me@example.com")
	require.NoError(t, err, out)
	assert.Equal(t, []string{"XYZ"}, api.codes)
}

func TestLoginCommand_InvalidHandle(t *testing.T) {
	setupCLI(t)

	_, err := executeCommand("login", "not-a-handle")
	require.Error(t, err)
	assert.Equal(t, ExitCodeValidation, getExitCode(err))
}

func TestLoginCommand_RequiresHandle(t *testing.T) {
	setupCLI(t)
	original := stdinIsTerminal
	stdinIsTerminal = func() bool { return false }
	defer func() { stdinIsTerminal = original }()

	_, err := executeCommand("login")
	require.Error(t, err)
	assert.Equal(t, ExitCodeValidation, getExitCode(err))
	assert.Contains(t, err.Error(), "a handle is required")

	_, err = executeCommand("login", "@a@example.com", "@b@example.com")
	require.Error(t, err)
	assert.Equal(t, ExitCodeError, getExitCode(err))
}

func TestLogoutCommand(t *testing.T) {
	home, _ := setupCLI(t)

	_, err := executeCommand("logout", "@me@example.com")
	require.Error(t, err)
	assert.Equal(t, ExitCodeValidation, getExitCode(err))

	store, err := credstore.Open(home)
	require.NoError(t, err)
	require.NoError(t, store.AddToken("@me@example.com", &mastodon.AccessToken{AccessToken: "tok"}))

	out, err := executeCommand("logout", "@me@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out of @me@example.com")

	data, err := os.ReadFile(filepath.Join(home, credstore.TokensFile))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "@me@example.com")
}

func TestStatusCommand(t *testing.T) {
	home, _ := setupCLI(t)

	out, err := executeCommand("status")
	require.NoError(t, err)
	assert.Contains(t, out, "No accounts logged in")

	store, err := credstore.Open(home)
	require.NoError(t, err)
	require.NoError(t, store.AddApp("https://example.com", &mastodon.AppRegistration{ClientID: "cid"}))
	require.NoError(t, store.AddToken("@me@example.com", &mastodon.AccessToken{AccessToken: "tok", Scope: "read", CreatedAt: 1700000000}))
	require.NoError(t, store.AddToken("@you@other.example", &mastodon.AccessToken{AccessToken: "tok2", Scope: "read"}))

	out, err = executeCommand("status")
	require.NoError(t, err)
	assert.Contains(t, out, "@me@example.com")
	assert.Contains(t, out, "https://example.com")
	assert.Contains(t, out, "2023-11-14T22:13:20Z")
	assert.Contains(t, out, "@you@other.example")
	assert.Contains(t, out, "missing")
	assert.Contains(t, out, "Registered on: https://example.com")
	assert.Less(t, strings.Index(out, "@me@example.com"), strings.Index(out, "@you@other.example"))
}

func TestStatusCommand_CorruptCache(t *testing.T) {
	home, _ := setupCLI(t)
	require.NoError(t, os.WriteFile(filepath.Join(home, credstore.TokensFile), []byte("{"), 0600))

	_, err := executeCommand("status")
	require.Error(t, err)
	assert.Equal(t, ExitCodeStorage, getExitCode(err))
}

func TestVerifyCommand(t *testing.T) {
	home, _ := setupCLI(t)

	store, err := credstore.Open(home)
	require.NoError(t, err)
	require.NoError(t, store.AddToken("@me@example.com", &mastodon.AccessToken{AccessToken: "tok"}))
	require.NoError(t, store.AddToken("@stale@example.com", &mastodon.AccessToken{AccessToken: "old"}))

	out, err := executeCommand("verify", "@me@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "Token for @me@example.com is valid")
	assert.Contains(t, out, "Account:  me")
	assert.Contains(t, out, "Profile:  https://example.com/@me")

	_, err = executeCommand("verify", "@stale@example.com")
	require.Error(t, err)
	assert.Equal(t, ExitCodeNetwork, getExitCode(err))
}

func TestInvalidConfig(t *testing.T) {
	setupCLI(t)
	t.Setenv("MAMMUT_CALLBACK_PORT", "99999")

	_, err := executeCommand("status")
	require.Error(t, err)
	assert.Equal(t, ExitCodeValidation, getExitCode(err))
}

func TestLogLevelFromConfig(t *testing.T) {
	setupCLI(t)
	t.Setenv("MAMMUT_LOG_LEVEL", "debug")

	out, err := executeCommand("status")
	require.NoError(t, err)
	assert.Contains(t, out, "Opened store with 0 apps")

	t.Setenv("MAMMUT_LOG_LEVEL", "loud")
	_, err = executeCommand("status")
	require.Error(t, err)
	assert.Equal(t, ExitCodeValidation, getExitCode(err))
}
