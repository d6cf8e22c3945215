package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
)

// DefaultByteLength gives 32 hex characters, enough that collisions are an
// acceptable risk without an explicit uniqueness check.
const DefaultByteLength = 16

var hexPattern = regexp.MustCompile(`^[a-f0-9]+$`)

// Generate mints a session id from numBytes of cryptographically secure
// randomness, encoded as lowercase hex. The id is never derived from time,
// counters or client data.
func Generate(numBytes int) (string, error) {
	if numBytes <= 0 {
		numBytes = DefaultByteLength
	}

	buf := make([]byte, numBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}

	return hex.EncodeToString(buf), nil
}

// IsValid reports whether candidate has the exact shape of a generated id:
// 2*numBytes lowercase hex characters, nothing else. This is the sole gate
// against directory traversal and must run before the candidate is used to
// build any storage path or key.
func IsValid(candidate string, numBytes int) bool {
	if numBytes <= 0 {
		numBytes = DefaultByteLength
	}

	if len(candidate) != numBytes*2 {
		return false
	}

	return hexPattern.MatchString(candidate)
}
