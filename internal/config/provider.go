// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ppowo/gmw/internal/issue"
)

const (
	// AppName is the application name.
	AppName = "gmw"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// EnvConfigPath names the environment variable that points at a config file.
	EnvConfigPath = "GMW_CONFIG"
)

// searchExtensions is the lookup order inside the config directory.
var searchExtensions = []string{".cue", ".yaml", ".yml", ".toml"}

// ErrConfigNotFound is returned when no configuration file exists.
var ErrConfigNotFound = errors.New("configuration file not found")

type (
	// LoadOptions defines explicit configuration loading inputs.
	LoadOptions struct {
		// ConfigFilePath forces loading from a specific config file when set.
		ConfigFilePath string
		// ConfigDirPath overrides the config directory lookup when set.
		ConfigDirPath string
	}

	// Provider loads configuration from explicit options.
	Provider interface {
		Load(ctx context.Context, opts LoadOptions) (*Config, error)
	}

	fileProvider struct{}
)

// NewProvider creates a configuration provider that reads from disk.
func NewProvider() Provider {
	return &fileProvider{}
}

// Load resolves the configuration path and parses the file.
func (p *fileProvider) Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	path, err := Resolve(opts)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("load configuration").
			WithSuggestion("Run 'gmw config init' to write a starter file").
			WithSuggestion("Point --config or " + EnvConfigPath + " at an existing file").
			Wrap(err).
			BuildError()
	}

	cfg, err := LoadFile(path)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("load configuration").
			WithResource(path).
			WithSuggestion("Verify the values match the schema shown by 'gmw config init'").
			WithSuggestion("Run 'gmw config validate' for the full list of problems").
			Wrap(err).
			BuildError()
	}
	return cfg, nil
}

// LoadFile reads and parses one configuration file.
func LoadFile(path string) (*Config, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err := Parse(data, format, path)
	if err != nil {
		return nil, err
	}
	cfg.source = path
	return cfg, nil
}

// Resolve returns the configuration file to load: the explicit path, then
// GMW_CONFIG, then the first existing config.{cue,yaml,yml,toml} in the
// configuration directory.
func Resolve(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		return opts.ConfigFilePath, nil
	}
	if env := os.Getenv(EnvConfigPath); env != "" {
		return env, nil
	}

	dir := opts.ConfigDirPath
	if dir == "" {
		var err error
		if dir, err = ConfigDir(); err != nil {
			return "", err
		}
	}
	for _, ext := range searchExtensions {
		candidate := filepath.Join(dir, ConfigFileName+ext)
		if fileExists(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w in %s (looked for %s.{cue,yaml,yml,toml})", ErrConfigNotFound, dir, ConfigFileName)
}

// DefaultPath is the file written by 'gmw config init' when no path is given.
func DefaultPath(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		return opts.ConfigFilePath, nil
	}
	if env := os.Getenv(EnvConfigPath); env != "" {
		return env, nil
	}
	dir := opts.ConfigDirPath
	if dir == "" {
		var err error
		if dir, err = ConfigDir(); err != nil {
			return "", err
		}
	}
	return filepath.Join(dir, ConfigFileName+".yaml"), nil
}

// ConfigDir returns $XDG_CONFIG_HOME/gmw, defaulting to ~/.config/gmw.
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, AppName), nil
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
