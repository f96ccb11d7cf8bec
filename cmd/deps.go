package cmd

import (
	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"mammut/internal/config"
	"mammut/internal/credstore"
	"mammut/internal/login"
	"mammut/internal/mastodon"
	"mammut/pkg/logging"
)

// Replaced in tests.
var (
	openURL login.Opener = browser.OpenURL
	newAPI               = func() login.API { return mastodon.NewClient(nil) }
)

// env is everything a command needs, built from the configuration.
type env struct {
	config  config.MammutConfig
	store   *credstore.Store
	manager *login.Manager
}

// setup loads the configuration, opens the credential cache and wires the
// login manager.
func setup(cmd *cobra.Command) (*env, error) {
	cfg, err := config.LoadConfig("")
	if err != nil {
		return nil, err
	}

	if !verbose && cfg.LogLevel != "" {
		if level, err := logging.ParseLevel(cfg.LogLevel); err == nil {
			logging.InitForCLI(level, cmd.ErrOrStderr())
		}
	}

	store, err := credstore.Open(cfg.Home)
	if err != nil {
		return nil, err
	}

	manager := login.NewManager(store, newAPI(), openURL, newConsoleReporter(cmd.OutOrStdout()), login.Options{
		CallbackPort: cfg.CallbackPort,
		ClientName:   cfg.ClientName,
		Website:      cfg.Website,
		Scopes:       cfg.Scopes,
		Timeout:      cfg.LoginTimeout,
		OpenBrowser:  cfg.OpenBrowser,
	})

	return &env{config: cfg, store: store, manager: manager}, nil
}
