// Package config loads numeracrypt settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/provide-io/numeracrypt/go/numeracrypt/internal/store"
	"github.com/provide-io/numeracrypt/go/numeracrypt/pkg/utils/permissions"
)

// Environment variables read by Load.
const (
	EnvKeyStorageDirectory = "KEY_STORAGE_DIRECTORY"
	EnvKeyFileExtension    = "KEY_FILE_EXTENSION"
	EnvKeyFileMode         = "KEY_FILE_MODE"
	EnvLogLevel            = "NUMERACRYPT_LOG_LEVEL"
	EnvLogPath             = "NUMERACRYPT_LOG_PATH"
	EnvJSONLog             = "NUMERACRYPT_JSON_LOG"
	EnvKey                 = "NUMERACRYPT_KEY"

	DefaultEnvFile          = ".env"
	DefaultKeyFileExtension = "nkey"
)

// Config is everything numeracrypt takes from its environment.
type Config struct {
	KeyStorageDirectory string
	KeyFileExtension    string
	KeyFileMode         os.FileMode

	LogLevel string
	LogPath  string
	JSONLog  bool

	// Key is used when no key is passed on the command line.
	Key string

	// Warnings collects fallbacks taken while loading, for the caller to log.
	Warnings []string
}

// Load reads envFile into the process environment without overriding
// variables that are already set, then builds a Config. With an empty
// envFile, ./.env is loaded if it exists.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	} else if _, err := os.Stat(DefaultEnvFile); err == nil {
		if err := godotenv.Load(DefaultEnvFile); err != nil {
			return nil, fmt.Errorf("failed to load env file %s: %w", DefaultEnvFile, err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat %s: %w", DefaultEnvFile, err)
	}

	return FromEnv()
}

// FromEnv builds a Config from the current process environment.
func FromEnv() (*Config, error) {
	cfg := &Config{
		LogLevel: os.Getenv(EnvLogLevel),
		LogPath:  os.Getenv(EnvLogPath),
		JSONLog:  os.Getenv(EnvJSONLog) == "1",
		Key:      strings.TrimSpace(os.Getenv(EnvKey)),
	}

	if dir := os.Getenv(EnvKeyStorageDirectory); dir != "" {
		cfg.KeyStorageDirectory = os.ExpandEnv(dir)
	} else {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to determine working directory: %w", err)
		}
		cfg.KeyStorageDirectory = cwd
		cfg.Warnings = append(cfg.Warnings,
			EnvKeyStorageDirectory+" is not set, using the current working directory")
	}

	if ext := strings.TrimPrefix(os.Getenv(EnvKeyFileExtension), "."); ext != "" {
		cfg.KeyFileExtension = ext
	} else {
		cfg.KeyFileExtension = DefaultKeyFileExtension
		cfg.Warnings = append(cfg.Warnings,
			EnvKeyFileExtension+" is not set, using ."+DefaultKeyFileExtension)
	}

	mode, err := permissions.ParseOctalString(os.Getenv(EnvKeyFileMode))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", EnvKeyFileMode, err)
	}
	cfg.KeyFileMode = mode
	if !permissions.IsOwnerOnly(mode) {
		cfg.Warnings = append(cfg.Warnings,
			fmt.Sprintf("%s %s lets other users read stored keys", EnvKeyFileMode, permissions.FormatOctal(mode)))
	}

	return cfg, nil
}

// KeyStoreConfig is the part of cfg the key store needs.
func (c *Config) KeyStoreConfig() store.KeyStoreConfig {
	return store.KeyStoreConfig{
		Directory: c.KeyStorageDirectory,
		Extension: c.KeyFileExtension,
		FileMode:  c.KeyFileMode,
	}
}
