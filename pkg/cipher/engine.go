// Package cipher implements the NumeraCrypt round cipher.
//
// Every round adds a per-position offset derived from the round index and one
// seed entry:
//
//	offset(r, k) = ((r * (2k + 1)) XOR (r + k)) mod 256
//
// Offsets never depend on the data, so all rounds collapse into a single
// keystream entry per seed position: the sum of the offsets of every round,
// mod 256. Engine uses that keystream. ApplyRounds and ReverseRounds keep the
// round-by-round form.
package cipher

import (
	"fmt"

	ncerrors "github.com/provide-io/numeracrypt/go/numeracrypt/pkg/errors"
	"github.com/provide-io/numeracrypt/go/numeracrypt/pkg/key"
)

// Offset is the amount round r adds at a position whose seed entry is k.
func Offset(r, k int) int {
	return mod256((r * (2*k + 1)) ^ (r + k))
}

func mod256(x int) int {
	x %= 256
	if x < 0 {
		x += 256
	}
	return x
}

// Keystream returns, for each seed position, the sum of every round's offset mod 256.
func Keystream(seed key.Seed, rounds int) []int {
	stream := make([]int, len(seed))
	for j, k := range seed {
		sum := 0
		for r := 0; r < rounds; r++ {
			sum = mod256(sum + Offset(r, k))
		}
		stream[j] = sum
	}
	return stream
}

// Engine applies a fixed (seed, rounds) pair to code-point sequences.
type Engine struct {
	seed   key.Seed
	rounds int
	stream []int
}

// NewEngine precomputes the keystream for seed and rounds.
func NewEngine(seed key.Seed, rounds int) (*Engine, error) {
	if len(seed) == 0 {
		return nil, fmt.Errorf("%w: empty key payload", ncerrors.ErrInvalidKeyFormat)
	}
	if rounds < 0 {
		return nil, fmt.Errorf("%w: negative round count %d", ncerrors.ErrInvalidKeyFormat, rounds)
	}

	s := make(key.Seed, len(seed))
	copy(s, seed)

	return &Engine{
		seed:   s,
		rounds: rounds,
		stream: Keystream(s, rounds),
	}, nil
}

// NewEngineFromKey disassembles k and builds an Engine from it.
func NewEngineFromKey(k *key.Key) (*Engine, error) {
	seed, rounds, err := k.Disassemble()
	if err != nil {
		return nil, err
	}
	return NewEngine(seed, rounds)
}

// Rounds returns the number of rounds the keystream folds together.
func (e *Engine) Rounds() int { return e.rounds }

// Keystream returns a copy of the precomputed keystream.
func (e *Engine) Keystream() []int {
	out := make([]int, len(e.stream))
	copy(out, e.stream)
	return out
}

// Encrypt returns points with the keystream added. The input is left untouched.
// Values above 255 wrap, so only 0..255 survive a round trip.
func (e *Engine) Encrypt(points []int) []int {
	out := make([]int, len(points))
	for i, p := range points {
		out[i] = mod256(p + e.stream[i%len(e.stream)])
	}
	return out
}

// Decrypt returns points with the keystream subtracted.
func (e *Engine) Decrypt(points []int) []int {
	out := make([]int, len(points))
	for i, p := range points {
		out[i] = mod256(p - e.stream[i%len(e.stream)])
	}
	return out
}

// Context returns a Context over a copy of points bound to this engine's key.
func (e *Engine) Context(points []int) *Context {
	cp := make([]int, len(points))
	copy(cp, points)
	return &Context{Points: cp, Seed: e.seed, Rounds: e.rounds}
}
