package cipher

import (
	"github.com/provide-io/numeracrypt/go/numeracrypt/pkg/key"
)

// Context pairs a code-point sequence with the key material that transforms it.
type Context struct {
	Points []int
	Seed   key.Seed
	Rounds int
}

// keyByte returns the seed entry for position i, wrapping around the seed.
func (c *Context) keyByte(i int) int {
	return c.Seed[i%len(c.Seed)]
}

// Round is a single additive pass over every position of a Context.
type Round struct {
	Index int
}

// Apply adds this round's offset to every position.
func (r Round) Apply(ctx *Context) {
	for i, p := range ctx.Points {
		ctx.Points[i] = mod256(p + Offset(r.Index, ctx.keyByte(i)))
	}
}

// Reverse subtracts this round's offset from every position.
func (r Round) Reverse(ctx *Context) {
	for i, p := range ctx.Points {
		ctx.Points[i] = mod256(p - Offset(r.Index, ctx.keyByte(i)))
	}
}

// ApplyRounds runs rounds 0..Rounds-1 over ctx in place.
func ApplyRounds(ctx *Context) {
	if len(ctx.Seed) == 0 {
		return
	}
	for r := 0; r < ctx.Rounds; r++ {
		Round{Index: r}.Apply(ctx)
	}
}

// ReverseRounds undoes ApplyRounds. Rounds are visited in the same ascending
// order: offsets never depend on the data, so the order of subtraction does
// not matter.
func ReverseRounds(ctx *Context) {
	if len(ctx.Seed) == 0 {
		return
	}
	for r := 0; r < ctx.Rounds; r++ {
		Round{Index: r}.Reverse(ctx)
	}
}
