// Package codec converts between text, code-point sequences and Base91.
//
// A Value is one of three shapes: Text, a single CodePoint, or a CodePoints
// sequence. String and Points convert any of them. Single integers follow an
// asymmetric rule: 0..255 become one character, anything larger becomes its
// decimal text. Key generation relies on that rule to make a large numeric
// seed printable.
package codec

import (
	"math/big"
	"strconv"
	"unicode/utf8"

	ncerrors "github.com/provide-io/numeracrypt/go/numeracrypt/pkg/errors"
)

// MaxByteCodePoint is the largest integer that renders as a single character.
const MaxByteCodePoint = 255

// Value is Text, CodePoint or CodePoints.
type Value interface {
	isValue()
}

// Text is a string value.
type Text string

// CodePoint is a single, possibly very large, integer.
type CodePoint struct {
	N *big.Int
}

// CodePoints is an ordered code-point sequence.
type CodePoints []int

func (Text) isValue()       {}
func (CodePoint) isValue()  {}
func (CodePoints) isValue() {}

// Int wraps n as a CodePoint.
func Int(n int64) CodePoint {
	return CodePoint{N: big.NewInt(n)}
}

// ToCodePoints returns one code point per character of text.
// Code points above 255 are kept as-is.
func ToCodePoints(text string) []int {
	points := make([]int, 0, utf8.RuneCountInString(text))
	for _, r := range text {
		points = append(points, int(r))
	}
	return points
}

// FromCodePoints renders each integer as one character.
func FromCodePoints(points []int) (string, error) {
	buf := make([]byte, 0, len(points))
	for _, p := range points {
		if p < 0 || p > utf8.MaxRune || !utf8.ValidRune(rune(p)) {
			return "", &ncerrors.EncodingError{Value: strconv.Itoa(p)}
		}
		buf = utf8.AppendRune(buf, rune(p))
	}
	return string(buf), nil
}

// FromCodePoint applies the single-integer rule.
func FromCodePoint(n *big.Int) (string, error) {
	if n == nil || n.Sign() < 0 {
		return "", &ncerrors.EncodingError{Value: n.String()}
	}
	if n.IsInt64() && n.Int64() <= MaxByteCodePoint {
		return string(rune(n.Int64())), nil
	}
	return n.String(), nil
}

// String renders any Value as text.
func String(v Value) (string, error) {
	switch t := v.(type) {
	case Text:
		return string(t), nil
	case CodePoint:
		return FromCodePoint(t.N)
	case CodePoints:
		return FromCodePoints(t)
	default:
		return "", &ncerrors.EncodingError{Value: "unsupported value"}
	}
}

// Points returns the code-point form of any Value. A CodePoint yields a
// one-element sequence and must fit in an int.
func Points(v Value) ([]int, error) {
	switch t := v.(type) {
	case Text:
		return ToCodePoints(string(t)), nil
	case CodePoint:
		if t.N == nil || !t.N.IsInt64() || t.N.Int64() > utf8.MaxRune {
			return nil, &ncerrors.EncodingError{Value: t.N.String()}
		}
		return []int{int(t.N.Int64())}, nil
	case CodePoints:
		out := make([]int, len(t))
		copy(out, t)
		return out, nil
	default:
		return nil, &ncerrors.EncodingError{Value: "unsupported value"}
	}
}

// EncodeValue renders v as text and Base91-encodes it.
func EncodeValue(v Value) (string, error) {
	s, err := String(v)
	if err != nil {
		return "", err
	}
	return EncodeBase91(s), nil
}
