// Package permissions parses the octal file modes used for persisted keys.
package permissions

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Keys are secrets: owner-only by default.
const (
	DefaultKeyFilePerms os.FileMode = 0o600
	DefaultKeyDirPerms  os.FileMode = 0o700
)

// ParseOctalString parses "600", "0600" or "0o600". An empty string yields
// DefaultKeyFilePerms.
func ParseOctalString(s string) (os.FileMode, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultKeyFilePerms, nil
	}

	digits := strings.TrimPrefix(strings.TrimPrefix(s, "0o"), "0")
	if digits == "" {
		digits = "0"
	}

	val, err := strconv.ParseUint(digits, 8, 32)
	if err != nil {
		return DefaultKeyFilePerms, fmt.Errorf("invalid permission string %q: %w", s, err)
	}
	if val > 0o777 {
		return DefaultKeyFilePerms, fmt.Errorf("invalid permission string %q: only permission bits are allowed", s)
	}

	return os.FileMode(val), nil
}

// FormatOctal formats a mode's permission bits as "0600".
func FormatOctal(perm os.FileMode) string {
	return fmt.Sprintf("0%o", perm.Perm())
}

// IsOwnerOnly reports whether group and other have no access.
func IsOwnerOnly(perm os.FileMode) bool {
	return perm.Perm()&0o077 == 0
}

// DirFor adds the owner execute bit a directory needs to be traversable.
func DirFor(perm os.FileMode) os.FileMode {
	dir := perm.Perm() | 0o700
	if perm&0o040 != 0 {
		dir |= 0o010
	}
	if perm&0o004 != 0 {
		dir |= 0o001
	}
	return dir
}
