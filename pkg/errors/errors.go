// Package errors defines the error kinds shared by the codec, key and cipher packages.
package errors

import (
	"errors"
	"fmt"
)

var (
	// Key errors 🔑
	ErrInvalidKeyFormat = errors.New("❌ invalid key format")
	ErrInvalidRounds    = errors.New("❌ rounds must be at least 5")
	ErrInvalidMaxLength = errors.New("❌ max length must be at least 64")
	ErrKeyAssembled     = errors.New("❌ key is already assembled")

	// Input errors 📄
	ErrEmptyInput = errors.New("❌ value is empty")

	// Filesystem errors 📂
	ErrNotFound      = errors.New("❌ path does not exist")
	ErrIsADirectory  = errors.New("❌ path is a directory")
	ErrNotADirectory = errors.New("❌ path is not a directory")

	// Codec errors 🔤
	ErrDecode   = errors.New("❌ malformed base91 input")
	ErrEncoding = errors.New("❌ code point out of range")
)

// DecodeError reports where a Base91 string stopped making sense.
type DecodeError struct {
	Offset int
	Symbol rune
	Reason string
}

func (e *DecodeError) Error() string {
	if e.Symbol != 0 {
		return fmt.Sprintf("%v: %s %q at offset %d", ErrDecode, e.Reason, e.Symbol, e.Offset)
	}
	return fmt.Sprintf("%v: %s at offset %d", ErrDecode, e.Reason, e.Offset)
}

func (e *DecodeError) Unwrap() error {
	return ErrDecode
}

// EncodingError carries the integer that has no character form.
type EncodingError struct {
	Value string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("%v: %s", ErrEncoding, e.Value)
}

func (e *EncodingError) Unwrap() error {
	return ErrEncoding
}
