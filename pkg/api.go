// Package pkg is the one-call API over the numeracrypt packages.
package pkg

import (
	"github.com/hashicorp/go-hclog"
	"github.com/provide-io/numeracrypt/go/numeracrypt/internal/store"
	"github.com/provide-io/numeracrypt/go/numeracrypt/pkg/cipher"
	"github.com/provide-io/numeracrypt/go/numeracrypt/pkg/key"
	"github.com/provide-io/numeracrypt/go/numeracrypt/pkg/logging"
)

func newCrypter(keyValue, logLevel string) (*cipher.Crypter, error) {
	var logger hclog.Logger
	if logLevel == "" {
		logger = hclog.NewNullLogger()
	} else {
		logger = logging.NewLogger("numeracrypt", logLevel, nil)
	}
	return cipher.New(keyValue, store.NewFileStore(logger), logger)
}

func EncryptText(keyValue, text string) (string, error) {
	c, err := newCrypter(keyValue, "")
	if err != nil {
		return "", err
	}
	return c.EncryptText(text)
}

func DecryptText(keyValue, ciphertext string) (string, error) {
	c, err := newCrypter(keyValue, "")
	if err != nil {
		return "", err
	}
	return c.DecryptText(ciphertext)
}

func EncryptFile(keyValue, path string) error {
	return EncryptFileWithLogLevel(keyValue, path, "")
}

func EncryptFileWithLogLevel(keyValue, path, logLevel string) error {
	c, err := newCrypter(keyValue, logLevel)
	if err != nil {
		return err
	}
	return c.EncryptFile(path)
}

func DecryptFile(keyValue, path string) error {
	return DecryptFileWithLogLevel(keyValue, path, "")
}

func DecryptFileWithLogLevel(keyValue, path, logLevel string) error {
	c, err := newCrypter(keyValue, logLevel)
	if err != nil {
		return err
	}
	return c.DecryptFile(path)
}

// EncryptDir encrypts the regular files directly inside dir and returns the
// paths it changed.
func EncryptDir(keyValue, dir string) ([]string, error) {
	c, err := newCrypter(keyValue, "")
	if err != nil {
		return nil, err
	}
	res, err := c.EncryptDir(dir)
	if res == nil {
		return nil, err
	}
	return res.Processed, err
}

// DecryptDir is the inverse of EncryptDir.
func DecryptDir(keyValue, dir string) ([]string, error) {
	c, err := newCrypter(keyValue, "")
	if err != nil {
		return nil, err
	}
	res, err := c.DecryptDir(dir)
	if res == nil {
		return nil, err
	}
	return res.Processed, err
}

func GenerateKey(salt string, rounds, maxLength int) (string, error) {
	k, err := key.Generate(salt, rounds, maxLength)
	if err != nil {
		return "", err
	}
	return k.Value(), nil
}

func ValidateKey(value string) bool {
	return key.Validate(value)
}

func KeyFingerprint(value string) string {
	return key.Fingerprint(value)
}
