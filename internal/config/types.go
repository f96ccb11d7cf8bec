package config

import "time"

// MammutConfig is the top-level configuration structure for mammut.
type MammutConfig struct {
	// Home is the directory holding config.yaml and the credential caches.
	Home string `yaml:"-" env:"MAMMUT_HOME"`

	// CallbackPort is the port the local redirect server binds. 0 picks an
	// ephemeral port, or the port of a previously registered app.
	CallbackPort int `yaml:"callbackPort,omitempty" env:"MAMMUT_CALLBACK_PORT"`

	// ClientName is the application name registered on instances.
	ClientName string `yaml:"clientName,omitempty" env:"MAMMUT_CLIENT_NAME"`

	// Website is the optional application website registered on instances.
	Website string `yaml:"website,omitempty" env:"MAMMUT_WEBSITE"`

	// Scopes are requested when registering an app and authorizing.
	Scopes []string `yaml:"scopes,omitempty" env:"MAMMUT_SCOPES" envSeparator:","`

	// LoginTimeout bounds the wait for the browser redirect. 0 waits forever.
	LoginTimeout time.Duration `yaml:"loginTimeout,omitempty" env:"MAMMUT_LOGIN_TIMEOUT"`

	// OpenBrowser launches the authorization URL in the default browser.
	OpenBrowser bool `yaml:"openBrowser" env:"MAMMUT_OPEN_BROWSER"`

	// LogLevel sets the stderr log level (debug, info, warn, error) when
	// --verbose is not given. Empty keeps the quiet default.
	LogLevel string `yaml:"logLevel,omitempty" env:"MAMMUT_LOG_LEVEL"`
}
