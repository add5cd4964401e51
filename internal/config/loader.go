package config

import (
	"errors"
	"fmt"
	"os"
)

// ErrConfigExists is returned by WriteDefault when the file is present.
var ErrConfigExists = errors.New("config file already exists")

// Load resolves the configuration and validates it.
func Load(path string, dotenv ...string) (*Config, error) {
	cfg, err := Resolve(path, dotenv...)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Resolve layers the configuration sources: defaults, then the YAML file at
// path (or DefaultFile when path is empty and it exists), then .env files,
// then PSIBRIDGE_* variables. The result is not validated, so callers can
// apply further overrides first.
func Resolve(path string, dotenv ...string) (*Config, error) {
	cfg := DefaultConfig()
	file := path
	if file == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			file = DefaultFile
		}
	}
	if file != "" {
		loaded, err := LoadFromFile(file)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if len(dotenv) == 0 {
		dotenv = []string{".env"}
	}
	if err := LoadDotEnv(dotenv...); err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// WriteDefault writes the built-in configuration to path, or to DefaultFile
// when path is empty, and returns the path written. An existing file is
// only replaced with force.
func WriteDefault(path string, force bool) (string, error) {
	if path == "" {
		path = DefaultFile
	}
	if _, err := os.Stat(path); err == nil && !force {
		return "", fmt.Errorf("%w: %s", ErrConfigExists, path)
	}
	if err := DefaultConfig().SaveToFile(path); err != nil {
		return "", err
	}
	return path, nil
}
