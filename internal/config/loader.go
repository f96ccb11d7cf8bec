package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"mammut/pkg/logging"
)

const (
	configFileName = "config.yaml"
	envFileName    = ".env"
)

// LoadConfig resolves the configuration. If home is empty it is taken from
// MAMMUT_HOME, falling back to DefaultHome. config.yaml in home is applied
// over the defaults and the environment is applied last. Variables from a
// .env file in home fill in for those not set in the process environment.
func LoadConfig(home string) (MammutConfig, error) {
	var err error
	if home == "" {
		home, err = resolveHome()
		if err != nil {
			return MammutConfig{}, err
		}
	}

	config := GetDefaultConfig()

	configFilePath := filepath.Join(home, configFileName)
	// #nosec G304 -- path is the mammut home directory chosen by the user
	data, err := os.ReadFile(configFilePath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logging.Debug("ConfigLoader", "No config.yaml found at %s, using defaults", configFilePath)
	case err != nil:
		return MammutConfig{}, fmt.Errorf("error reading config from %s: %w", configFilePath, err)
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return MammutConfig{}, fmt.Errorf("error loading config from %s: %w", configFilePath, err)
		}
		logging.Debug("ConfigLoader", "Loaded configuration from %s", configFilePath)
	}

	environment, err := loadEnvironment(filepath.Join(home, envFileName))
	if err != nil {
		return MammutConfig{}, err
	}

	if err := env.ParseWithOptions(&config, env.Options{Environment: environment}); err != nil {
		return MammutConfig{}, fmt.Errorf("error parsing environment: %w", err)
	}

	// The resolved home wins over MAMMUT_HOME when one was passed explicitly.
	config.Home = home

	if err := config.Validate(); err != nil {
		return MammutConfig{}, err
	}

	return config, nil
}

func resolveHome() (string, error) {
	var fromEnv struct {
		Home string `env:"MAMMUT_HOME"`
	}
	if err := env.Parse(&fromEnv); err != nil {
		return "", fmt.Errorf("error parsing environment: %w", err)
	}
	if fromEnv.Home != "" {
		return fromEnv.Home, nil
	}
	return DefaultHome()
}

// loadEnvironment returns the process environment merged over the variables
// of the .env file at path, if there is one.
func loadEnvironment(path string) (map[string]string, error) {
	environment := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			environment[k] = v
		}
	}

	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return environment, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", path, err)
	}
	if info.Mode().Perm()&0o077 != 0 {
		logging.Warn("ConfigLoader", "%s has insecure permissions %04o; recommended 0600", path, info.Mode().Perm())
	}

	fromFile, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("error loading %s: %w", path, err)
	}

	for k, v := range fromFile {
		if _, ok := environment[k]; !ok {
			environment[k] = v
		}
	}
	logging.Debug("ConfigLoader", "Loaded %d variables from %s", len(fromFile), path)
	return environment, nil
}
