package token

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateProducesValidIds(t *testing.T) {
	seen := make(map[string]bool)

	for i := 0; i < 100; i++ {
		id, err := Generate(DefaultByteLength)
		assert.NoError(t, err)
		assert.Len(t, id, DefaultByteLength*2)
		assert.True(t, IsValid(id, DefaultByteLength), "generated id should validate: %s", id)

		assert.NotContains(t, id, "/")
		assert.NotContains(t, id, "\\")
		assert.NotContains(t, id, "..")

		assert.False(t, seen[id], "generated ids should not repeat")
		seen[id] = true
	}
}

func TestGenerateRespectsByteLength(t *testing.T) {
	id, err := Generate(32)
	assert.NoError(t, err)
	assert.Len(t, id, 64)
	assert.True(t, IsValid(id, 32))
	assert.False(t, IsValid(id, 16))
}

func TestIsValidRejectsMalformedIds(t *testing.T) {
	cases := []struct {
		name      string
		candidate string
	}{
		{"empty", ""},
		{"too short", "abc123"},
		{"too long", strings.Repeat("a", 33)},
		{"one char short", strings.Repeat("a", 31)},
		{"uppercase", strings.ToUpper(strings.Repeat("ab", 16))},
		{"non hex", strings.Repeat("g", 32)},
		{"path separator", "aaaaaaaaaaaaaaa/aaaaaaaaaaaaaaaa"},
		{"traversal", "../../../../../../etc/passwd\x00aa"},
		{"embedded traversal", "aaaaaaaaaaaaaa/../aaaaaaaaaaaaaa"},
		{"null byte", "aaaaaaaaaaaaaaaa\x00aaaaaaaaaaaaaaa"},
		{"trailing newline", strings.Repeat("a", 31) + "\n"},
		{"spaces", strings.Repeat("a", 30) + "  "},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.False(t, IsValid(tc.candidate, 16))
		})
	}
}

func TestIsValidAcceptsExactShape(t *testing.T) {
	assert.True(t, IsValid("0123456789abcdef0123456789abcdef", 16))
	assert.True(t, IsValid(strings.Repeat("f", 32), 16))
	assert.True(t, IsValid(strings.Repeat("0", 32), 16))
}
