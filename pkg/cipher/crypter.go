package cipher

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/provide-io/numeracrypt/go/numeracrypt/pkg/codec"
	ncerrors "github.com/provide-io/numeracrypt/go/numeracrypt/pkg/errors"
	"github.com/provide-io/numeracrypt/go/numeracrypt/pkg/key"
)

// FileStore is the filesystem surface the crypter needs.
type FileStore interface {
	ReadText(path string) (string, error)
	WriteText(path, text string) error
	ListFiles(dir string) ([]string, error)
}

// DirResult lists what a directory run touched.
type DirResult struct {
	Processed []string
	Skipped   []string
}

// Crypter runs the engine over strings, files and directories.
type Crypter struct {
	engine      *Engine
	files       FileStore
	logger      hclog.Logger
	fingerprint string
}

// New validates keyValue and builds a Crypter for it. files may be nil when
// only the text operations are used.
func New(keyValue string, files FileStore, logger hclog.Logger) (*Crypter, error) {
	return NewWithKey(key.FromValue(keyValue), files, logger)
}

// NewWithKey is New for an existing Key; the key's own max length applies.
func NewWithKey(k *key.Key, files FileStore, logger hclog.Logger) (*Crypter, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	if !k.Validate() {
		return nil, fmt.Errorf("%w: please use a valid key", ncerrors.ErrInvalidKeyFormat)
	}

	engine, err := NewEngineFromKey(k)
	if err != nil {
		return nil, err
	}

	c := &Crypter{
		engine:      engine,
		files:       files,
		logger:      logger,
		fingerprint: k.Fingerprint(),
	}
	logger.Debug("🔑 Key loaded", "fingerprint", c.fingerprint, "rounds", engine.Rounds())
	return c, nil
}

// Fingerprint identifies the key in use.
func (c *Crypter) Fingerprint() string { return c.fingerprint }

// EncryptText returns the Base91 ciphertext of text.
func (c *Crypter) EncryptText(text string) (string, error) {
	if text == "" {
		c.logger.Warn("⚠️ Nothing to encrypt, value is empty")
		return "", ncerrors.ErrEmptyInput
	}

	points := codec.ToCodePoints(text)
	encrypted := c.engine.Encrypt(points)

	rendered, err := codec.FromCodePoints(encrypted)
	if err != nil {
		return "", err
	}

	c.logger.Trace("🔒 Encrypted value", "chars", len(points), "rounds", c.engine.Rounds())
	return codec.EncodeBase91(rendered), nil
}

// DecryptText reverses EncryptText. Surrounding whitespace, such as a trailing
// newline added by an editor, is ignored.
func (c *Crypter) DecryptText(ciphertext string) (string, error) {
	ciphertext = strings.TrimSpace(ciphertext)
	if ciphertext == "" {
		c.logger.Warn("⚠️ Nothing to decrypt, value is empty")
		return "", ncerrors.ErrEmptyInput
	}

	decoded, err := codec.DecodeBase91(ciphertext)
	if err != nil {
		return "", err
	}

	points := codec.ToCodePoints(decoded)
	decrypted := c.engine.Decrypt(points)

	plain, err := codec.FromCodePoints(decrypted)
	if err != nil {
		return "", err
	}

	c.logger.Trace("🔓 Decrypted value", "chars", len(points), "rounds", c.engine.Rounds())
	return plain, nil
}

// EncryptFile encrypts path in place. There is no backup.
func (c *Crypter) EncryptFile(path string) error {
	return c.transformFile(path, c.EncryptText, "encrypt")
}

// DecryptFile decrypts path in place.
func (c *Crypter) DecryptFile(path string) error {
	return c.transformFile(path, c.DecryptText, "decrypt")
}

// EncryptDir encrypts every regular file directly inside dir.
func (c *Crypter) EncryptDir(dir string) (*DirResult, error) {
	return c.transformDir(dir, c.EncryptText, "encrypt")
}

// DecryptDir decrypts every regular file directly inside dir.
func (c *Crypter) DecryptDir(dir string) (*DirResult, error) {
	return c.transformDir(dir, c.DecryptText, "decrypt")
}

func (c *Crypter) requireFiles() error {
	if c.files == nil {
		return errors.New("crypter has no file store")
	}
	return nil
}

func (c *Crypter) transformFile(path string, transform func(string) (string, error), op string) error {
	if err := c.requireFiles(); err != nil {
		return err
	}

	text, err := c.files.ReadText(path)
	if err != nil {
		return err
	}

	out, err := transform(text)
	if err != nil {
		return fmt.Errorf("failed to %s %s: %w", op, path, err)
	}

	if err := c.files.WriteText(path, out); err != nil {
		return err
	}

	c.logger.Info("✅ File processed", "op", op, "path", path, "fingerprint", c.fingerprint)
	return nil
}

// transformDir walks the files one at a time. The first failure stops the
// run; files already rewritten stay rewritten. Empty files are skipped.
func (c *Crypter) transformDir(dir string, transform func(string) (string, error), op string) (*DirResult, error) {
	if err := c.requireFiles(); err != nil {
		return nil, err
	}

	files, err := c.files.ListFiles(dir)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("📁 Directory listed", "op", op, "dir", dir, "files", len(files))

	result := &DirResult{}
	for _, path := range files {
		err := c.transformFile(path, transform, op)
		if errors.Is(err, ncerrors.ErrEmptyInput) {
			c.logger.Warn("⚠️ Skipping empty file", "path", path)
			result.Skipped = append(result.Skipped, path)
			continue
		}
		if err != nil {
			c.logger.Error("❌ Directory run aborted", "op", op, "path", path,
				"processed", len(result.Processed), "error", err)
			return result, err
		}
		result.Processed = append(result.Processed, path)
	}

	c.logger.Info("✅ Directory processed", "op", op, "dir", dir,
		"processed", len(result.Processed), "skipped", len(result.Skipped))
	return result, nil
}
