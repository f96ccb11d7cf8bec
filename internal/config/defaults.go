package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultHomeDirName is the home directory name under the user's home.
	DefaultHomeDirName = ".mammut"

	// DefaultClientName is the client_name sent when registering apps.
	DefaultClientName = "mammut"

	// DefaultScope is requested when no scopes are configured.
	DefaultScope = "read"
)

// osUserHomeDir is replaced in tests.
var osUserHomeDir = os.UserHomeDir

// DefaultHome returns ~/.mammut.
func DefaultHome() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine user home directory: %w", err)
	}
	return filepath.Join(homeDir, DefaultHomeDirName), nil
}

// GetDefaultConfig returns the built-in configuration. Home is left empty
// and resolved by LoadConfig.
func GetDefaultConfig() MammutConfig {
	return MammutConfig{
		CallbackPort: 0,
		ClientName:   DefaultClientName,
		Scopes:       []string{DefaultScope},
		LoginTimeout: 0,
		OpenBrowser:  true,
	}
}
