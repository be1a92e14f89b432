package key

import (
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Fingerprints use the "algorithm:hexvalue" form, e.g. "blake2b:1f0c...".
const (
	FingerprintAlgorithm = "blake2b"
	fingerprintBytes     = 8
)

// Fingerprint identifies a key value without revealing it.
func Fingerprint(value string) string {
	sum := blake2b.Sum256([]byte(value))
	return FingerprintAlgorithm + ":" + hex.EncodeToString(sum[:fingerprintBytes])
}

// Fingerprint returns the fingerprint of the assembled value.
func (k *Key) Fingerprint() string {
	return Fingerprint(k.value)
}

// MatchFingerprint reports whether value has the given fingerprint.
// A bare hex string is accepted as well as the prefixed form.
func MatchFingerprint(value, fingerprint string) (bool, error) {
	hexPart := fingerprint
	if strings.Contains(fingerprint, ":") {
		parts := strings.SplitN(fingerprint, ":", 2)
		if parts[0] != FingerprintAlgorithm {
			return false, fmt.Errorf("unknown fingerprint algorithm: %s", parts[0])
		}
		hexPart = parts[1]
	}

	actual := Fingerprint(value)
	return strings.EqualFold(actual[len(FingerprintAlgorithm)+1:], hexPart), nil
}
