package codec

import (
	"unicode/utf8"

	ncerrors "github.com/provide-io/numeracrypt/go/numeracrypt/pkg/errors"
)

// encodeStd is the basE91 reference alphabet.
const encodeStd = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789!#$%&()*+,./:;<=>?@[]^_`{|}~\""

// Encoding is a radix-91 alphabet with the reference 13/14-bit packing.
type Encoding struct {
	encode    [91]byte
	decodeMap [256]int16
}

// StdEncoding is the alphabet every NumeraCrypt key and ciphertext uses.
var StdEncoding = NewEncoding(encodeStd)

// NewEncoding builds an Encoding from a 91-symbol alphabet.
// It panics if the alphabet has the wrong length or repeats a symbol.
func NewEncoding(alphabet string) *Encoding {
	if len(alphabet) != 91 {
		panic("codec: encoding alphabet is not 91 bytes long")
	}

	enc := new(Encoding)
	for i := range enc.decodeMap {
		enc.decodeMap[i] = -1
	}
	for i := 0; i < len(alphabet); i++ {
		c := alphabet[i]
		if enc.decodeMap[c] != -1 {
			panic("codec: encoding alphabet contains duplicate symbols")
		}
		enc.encode[i] = c
		enc.decodeMap[c] = int16(i)
	}
	return enc
}

// EncodedLen returns an upper bound on the encoded length of n bytes.
func (enc *Encoding) EncodedLen(n int) int {
	return (n*16+12)/13 + 2
}

// EncodeToString packs src into 13 or 14 bit groups and emits two symbols per group.
func (enc *Encoding) EncodeToString(src []byte) string {
	out := make([]byte, 0, enc.EncodedLen(len(src)))

	var b, n uint
	for _, c := range src {
		b |= uint(c) << n
		n += 8
		if n > 13 {
			v := b & 8191
			if v > 88 {
				b >>= 13
				n -= 13
			} else {
				v = b & 16383
				b >>= 14
				n -= 14
			}
			out = append(out, enc.encode[v%91], enc.encode[v/91])
		}
	}

	if n > 0 {
		out = append(out, enc.encode[b%91])
		if n > 7 || b > 90 {
			out = append(out, enc.encode[b/91])
		}
	}

	return string(out)
}

// DecodeString reverses EncodeToString. Unknown symbols are rejected, and so
// is any input the reference encoder could not have produced, which catches
// truncated trailing blocks.
func (enc *Encoding) DecodeString(s string) ([]byte, error) {
	out := make([]byte, 0, len(s)*14/16+1)

	var b, n uint
	v := -1
	for i := 0; i < len(s); i++ {
		c := enc.decodeMap[s[i]]
		if c < 0 {
			r, _ := utf8.DecodeRuneInString(s[i:])
			return nil, &ncerrors.DecodeError{Offset: i, Symbol: r, Reason: "invalid symbol"}
		}

		if v < 0 {
			v = int(c)
			continue
		}

		v += int(c) * 91
		b |= uint(v) << n
		if v&8191 > 88 {
			n += 13
		} else {
			n += 14
		}
		for {
			out = append(out, byte(b))
			b >>= 8
			n -= 8
			if n <= 7 {
				break
			}
		}
		v = -1
	}

	if v >= 0 {
		out = append(out, byte(b|uint(v)<<n))
	}

	if enc.EncodeToString(out) != s {
		return nil, &ncerrors.DecodeError{Offset: len(s), Reason: "truncated or non-canonical block"}
	}

	return out, nil
}

// EncodeBase91 encodes the UTF-8 bytes of text.
func EncodeBase91(text string) string {
	return StdEncoding.EncodeToString([]byte(text))
}

// DecodeBase91 decodes s and requires the result to be UTF-8 text.
func DecodeBase91(s string) (string, error) {
	raw, err := StdEncoding.DecodeString(s)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(raw) {
		return "", &ncerrors.DecodeError{Offset: 0, Reason: "decoded bytes are not valid UTF-8"}
	}
	return string(raw), nil
}
