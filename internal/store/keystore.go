package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/provide-io/numeracrypt/go/numeracrypt/pkg/utils/permissions"
)

// KeyTimestampFormat is the YYYYMMDDHHMMSS suffix of key file names.
const KeyTimestampFormat = "20060102150405"

// KeyStoreConfig says where keys go and what they are called.
type KeyStoreConfig struct {
	Directory string
	Extension string
	FileMode  os.FileMode
}

// KeyStore writes key values to key_<timestamp>.<extension> files.
type KeyStore struct {
	cfg    KeyStoreConfig
	now    func() time.Time
	logger hclog.Logger
}

// NewKeyStore returns a KeyStore for cfg. Missing fields fall back to the
// current directory, the "nkey" extension and owner-only permissions.
func NewKeyStore(cfg KeyStoreConfig, logger hclog.Logger) *KeyStore {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	cfg.Extension = strings.TrimPrefix(cfg.Extension, ".")
	if cfg.Extension == "" {
		cfg.Extension = "nkey"
	}
	if cfg.Directory == "" {
		cfg.Directory = "."
	}
	if cfg.FileMode == 0 {
		cfg.FileMode = permissions.DefaultKeyFilePerms
	}
	return &KeyStore{cfg: cfg, now: time.Now, logger: logger}
}

// Config returns the effective configuration.
func (s *KeyStore) Config() KeyStoreConfig { return s.cfg }

// FileName returns the key file name for t.
func (s *KeyStore) FileName(t time.Time) string {
	return fmt.Sprintf("key_%s.%s", t.Format(KeyTimestampFormat), s.cfg.Extension)
}

// Store writes value into a new file under dir, or the configured directory
// when dir is empty, and returns the file's path. The directory is created
// if needed. An existing file with the same name is never overwritten.
func (s *KeyStore) Store(dir, value string) (string, error) {
	if dir == "" {
		dir = s.cfg.Directory
	}

	if err := os.MkdirAll(dir, permissions.DirFor(s.cfg.FileMode)); err != nil {
		return "", fmt.Errorf("failed to create key directory %s: %w", dir, err)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve key directory %s: %w", dir, err)
	}
	path := filepath.Join(abs, s.FileName(s.now()))

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, s.cfg.FileMode)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("key file %s already exists: %w", path, err)
		}
		return "", fmt.Errorf("failed to create key file %s: %w", path, err)
	}

	if _, err := f.WriteString(value); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to write key file %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close key file %s: %w", path, err)
	}

	s.logger.Info("🔑 Key stored", "path", path, "mode", permissions.FormatOctal(s.cfg.FileMode))
	return path, nil
}
