// Package shortcode produces the short, URL-safe identifiers that form the
// path segment of a short URL. It never talks to storage; uniqueness is the
// registry's concern.
package shortcode

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strings"
)

// charset is the alphabet used for generated codes: alphanumeric, both
// cases, 62 characters. 62^7 leaves collisions negligible for any catalog
// this system is meant to hold.
const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Length is the length of randomly generated codes.
const Length = 7

var whitespaceRun = regexp.MustCompile(`\s+`)

// Normalize turns a caller-chosen alias into a candidate code: surrounding
// whitespace is trimmed and internal whitespace runs collapse to a single
// hyphen. A blank alias normalizes to "", meaning "no alias".
func Normalize(alias string) string {
	trimmed := strings.TrimSpace(alias)
	if trimmed == "" {
		return ""
	}
	return whitespaceRun.ReplaceAllString(trimmed, "-")
}

// Generate returns a random code of Length characters drawn from charset
// using crypto/rand, so codes are non-sequential and non-guessable.
func Generate() (string, error) {
	code := make([]byte, Length)
	for i := range code {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", fmt.Errorf("failed to generate random number: %w", err)
		}
		code[i] = charset[num.Int64()]
	}
	return string(code), nil
}
