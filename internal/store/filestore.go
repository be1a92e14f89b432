// Package store provides the filesystem and key persistence collaborators.
package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/hashicorp/go-hclog"
	ncerrors "github.com/provide-io/numeracrypt/go/numeracrypt/pkg/errors"
	"github.com/provide-io/numeracrypt/go/numeracrypt/pkg/utils/permissions"
)

// FileStore reads and rewrites UTF-8 text files on the local filesystem.
type FileStore struct {
	logger hclog.Logger
}

// NewFileStore returns a FileStore that logs through logger (nil is allowed).
func NewFileStore(logger hclog.Logger) *FileStore {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &FileStore{logger: logger}
}

// Exists reports whether path exists.
func (s *FileStore) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsDirectory reports whether path exists and is a directory.
func (s *FileStore) IsDirectory(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func (s *FileStore) statFile(path string) (fs.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ncerrors.ErrNotFound, path)
		}
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ncerrors.ErrIsADirectory, path)
	}
	return info, nil
}

// ReadText returns the contents of path, which must be valid UTF-8.
func (s *FileStore) ReadText(path string) (string, error) {
	if _, err := s.statFile(path); err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	if !utf8.Valid(data) {
		return "", fmt.Errorf("%s: %w", path, &ncerrors.DecodeError{
			Offset: invalidUTF8Offset(data),
			Reason: "file is not valid UTF-8",
		})
	}

	s.logger.Trace("📖 Read file", "path", path, "size", len(data))
	return string(data), nil
}

func invalidUTF8Offset(data []byte) int {
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return len(data)
}

// WriteText replaces the contents of an existing file. The new contents go
// to a temporary file in the same directory first, which is then renamed
// over path, so a crash leaves either the old or the new contents. The
// file's permission bits are preserved.
func (s *FileStore) WriteText(path, text string) error {
	info, err := s.statFile(path)
	if err != nil {
		return err
	}
	return s.replace(path, text, info.Mode().Perm())
}

// SaveText is WriteText for output files: path is created with perm if it
// does not exist yet.
func (s *FileStore) SaveText(path, text string, perm os.FileMode) error {
	info, err := s.statFile(path)
	switch {
	case err == nil:
		perm = info.Mode().Perm()
	case !errors.Is(err, ncerrors.ErrNotFound):
		return err
	}
	return s.replace(path, text, perm)
}

func (s *FileStore) replace(path, text string, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}
	tmpPath := tmp.Name()

	cleanup := func() {
		if rmErr := os.Remove(tmpPath); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			s.logger.Debug("Failed to remove temp file", "path", tmpPath, "error", rmErr)
		}
	}

	if _, err := tmp.WriteString(text); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("failed to close temp file for %s: %w", path, err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		cleanup()
		return fmt.Errorf("failed to set mode %s on %s: %w",
			permissions.FormatOctal(perm), tmpPath, err)
	}

	if err := atomicReplace(tmpPath, path, s.logger); err != nil {
		cleanup()
		return err
	}
	return nil
}

// ListFiles returns the regular files directly inside dir, sorted by name.
func (s *FileStore) ListFiles(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ncerrors.ErrNotFound, dir)
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ncerrors.ErrNotADirectory, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	files := []string{}
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	return files, nil
}
