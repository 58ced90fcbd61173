package shortcode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		alias    string
		expected string
	}{
		{name: "plain alias", alias: "my-link", expected: "my-link"},
		{name: "internal space", alias: "my link", expected: "my-link"},
		{name: "leading and trailing whitespace", alias: "  docs  ", expected: "docs"},
		{name: "multiple internal spaces", alias: "a  b   c", expected: "a-b-c"},
		{name: "tabs and newlines", alias: "a\tb\nc", expected: "a-b-c"},
		{name: "whitespace only", alias: "   \t ", expected: ""},
		{name: "empty", alias: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.alias))
		})
	}
}

func TestGenerateLengthAndAlphabet(t *testing.T) {
	code, err := Generate()
	require.NoError(t, err)
	assert.Len(t, code, Length)

	for _, c := range code {
		assert.True(t, strings.ContainsRune(charset, c), "unexpected character %q in code %q", c, code)
	}
}

func TestGenerateIsNonRepeating(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		code, err := Generate()
		require.NoError(t, err)
		assert.False(t, seen[code], "duplicate code %q after %d generations", code, i)
		seen[code] = true
	}
}
