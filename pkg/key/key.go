// Package key generates, validates and disassembles NumeraCrypt keys.
//
// An assembled key has the form "<rounds>/<payload>". The payload is the
// Base91 encoding of the decimal text of a salted random integer. Only the
// payload's characters reach the cipher; the integer itself is not kept.
package key

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"regexp"
	"strconv"
	"unicode/utf8"

	"github.com/provide-io/numeracrypt/go/numeracrypt/pkg/codec"
	ncerrors "github.com/provide-io/numeracrypt/go/numeracrypt/pkg/errors"
)

const (
	MinRounds    = 5
	MinMaxLength = 64

	DefaultRounds    = 5
	DefaultMaxLength = 64
)

var prefixPattern = regexp.MustCompile(`^(\d+)/`)

// Seed is the code points of a key payload, cycled over the input by the cipher.
type Seed []int

// Storer persists an assembled key value and returns where it went.
type Storer interface {
	Store(dir, value string) (string, error)
}

// Key holds the generation parameters and, once assembled, the key value.
type Key struct {
	salt      string
	rounds    int
	maxLength int
	value     string
}

// New returns an unassembled key that Generate will fill in.
func New(salt string, rounds, maxLength int) (*Key, error) {
	if rounds < MinRounds {
		return nil, fmt.Errorf("%w: got %d", ncerrors.ErrInvalidRounds, rounds)
	}
	if maxLength < MinMaxLength {
		return nil, fmt.Errorf("%w: got %d", ncerrors.ErrInvalidMaxLength, maxLength)
	}
	return &Key{salt: salt, rounds: rounds, maxLength: maxLength}, nil
}

// Wrap takes an already assembled value. maxLength is what Validate checks
// the payload against.
func Wrap(value string, maxLength int) (*Key, error) {
	k, err := New("", DefaultRounds, maxLength)
	if err != nil {
		return nil, err
	}
	k.value = value
	return k, nil
}

// FromValue wraps value with the default max length.
func FromValue(value string) *Key {
	return &Key{rounds: DefaultRounds, maxLength: DefaultMaxLength, value: value}
}

// Generate builds and assembles a key in one step using crypto/rand.
func Generate(salt string, rounds, maxLength int) (*Key, error) {
	k, err := New(salt, rounds, maxLength)
	if err != nil {
		return nil, err
	}
	if _, err := k.Generate(); err != nil {
		return nil, err
	}
	return k, nil
}

// Value returns the assembled key, or "" before generation.
func (k *Key) Value() string { return k.value }

// Rounds returns the configured round count. For a wrapped key the
// authoritative count is the value's prefix; see Disassemble.
func (k *Key) Rounds() int { return k.rounds }

// MaxLength returns the minimum payload length Validate accepts.
func (k *Key) MaxLength() int { return k.maxLength }

// Generate assembles the key from crypto/rand.
func (k *Key) Generate() (string, error) {
	return k.GenerateFrom(rand.Reader)
}

// GenerateFrom assembles the key using r as the randomness source.
func (k *Key) GenerateFrom(r io.Reader) (string, error) {
	if k.value != "" {
		return "", ncerrors.ErrKeyAssembled
	}

	seed, err := k.randomSeed(r)
	if err != nil {
		return "", err
	}

	payload, err := codec.EncodeValue(codec.CodePoint{N: seed})
	if err != nil {
		return "", fmt.Errorf("encoding key payload: %w", err)
	}

	k.value = strconv.Itoa(k.rounds) + "/" + payload
	return k.value, nil
}

// randomSeed draws a maxLength-digit integer, adds the salt offset and
// clamps the sum back into the digit range.
func (k *Key) randomSeed(r io.Reader) (*big.Int, error) {
	ten := big.NewInt(10)
	lower := new(big.Int).Exp(ten, big.NewInt(int64(k.maxLength-1)), nil)
	upper := new(big.Int).Exp(ten, big.NewInt(int64(k.maxLength)), nil)
	upper.Sub(upper, big.NewInt(1))

	span := new(big.Int).Sub(upper, lower)
	span.Add(span, big.NewInt(1))

	n, err := randomBelow(r, span)
	if err != nil {
		return nil, fmt.Errorf("drawing random seed: %w", err)
	}
	n.Add(n, lower)
	n.Add(n, big.NewInt(SaltOffset(k.salt)))

	if n.Cmp(lower) < 0 {
		n.Set(lower)
	}
	if n.Cmp(upper) > 0 {
		n.Set(upper)
	}
	return n, nil
}

// randomBelow draws uniformly from [0, bound) by rejection sampling on the
// bytes of r.
func randomBelow(r io.Reader, bound *big.Int) (*big.Int, error) {
	bitLen := bound.BitLen()
	buf := make([]byte, (bitLen+7)/8)
	topBits := uint(bitLen % 8)
	if topBits == 0 {
		topBits = 8
	}

	n := new(big.Int)
	for {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		buf[0] &= uint8(int(1<<topBits) - 1)
		n.SetBytes(buf)
		if n.Cmp(bound) < 0 {
			return n, nil
		}
	}
}

// SaltOffset sums the code points of salt.
func SaltOffset(salt string) int64 {
	var sum int64
	for _, r := range salt {
		sum += int64(r)
	}
	return sum
}

// split returns the numeric prefix and the payload that follows the first slash.
func split(value string) (string, string, bool) {
	m := prefixPattern.FindStringSubmatch(value)
	if m == nil {
		return "", "", false
	}
	return m[1], value[len(m[0]):], true
}

// Validate reports whether the key is well formed. It never fails loudly.
func (k *Key) Validate() bool {
	if k == nil || k.value == "" {
		return false
	}

	prefix, payload, ok := split(k.value)
	if !ok {
		return false
	}

	rounds, err := strconv.Atoi(prefix)
	if err != nil || rounds <= 0 {
		return false
	}

	return utf8.RuneCountInString(payload) >= k.maxLength
}

// Validate checks value with the default max length.
func Validate(value string) bool {
	return FromValue(value).Validate()
}

// Disassemble splits the key into its seed and round count. The seed is the
// raw code points of the payload text, not its Base91 decoding.
func (k *Key) Disassemble() (Seed, int, error) {
	if k == nil || k.value == "" {
		return nil, 0, fmt.Errorf("%w: no key value to disassemble", ncerrors.ErrInvalidKeyFormat)
	}

	prefix, payload, ok := split(k.value)
	if !ok {
		return nil, 0, fmt.Errorf("%w: rounds prefix missing", ncerrors.ErrInvalidKeyFormat)
	}

	rounds, err := strconv.Atoi(prefix)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: rounds prefix %q: %v", ncerrors.ErrInvalidKeyFormat, prefix, err)
	}

	return Seed(codec.ToCodePoints(payload)), rounds, nil
}

// Persist validates the key and hands its value to store. An empty dir lets
// the store pick its configured directory.
func (k *Key) Persist(store Storer, dir string) (string, error) {
	if k == nil || k.value == "" {
		return "", fmt.Errorf("%w: no key value to persist", ncerrors.ErrInvalidKeyFormat)
	}
	if !k.Validate() {
		return "", fmt.Errorf("%w: refusing to persist", ncerrors.ErrInvalidKeyFormat)
	}
	return store.Store(dir, k.value)
}

// Payload returns the part of the value after "<rounds>/".
func (k *Key) Payload() string {
	_, payload, ok := split(k.value)
	if !ok {
		return ""
	}
	return payload
}
