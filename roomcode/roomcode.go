// Package roomcode generates and normalizes the short codes participants
// share to meet in the same room.
package roomcode

import (
	"crypto/rand"
	"fmt"
	"strings"
)

const (
	Length   = 5
	alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Generate returns a random upper-case alphanumeric code. Codes are not
// checked for uniqueness.
func Generate() (string, error) {
	code := make([]byte, 0, Length)
	buf := make([]byte, Length*2)

	// 252 is the largest multiple of len(alphabet) below 256; bytes above it
	// are rejected to keep the distribution uniform.
	limit := byte(256 - 256%len(alphabet))
	for len(code) < Length {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("read random bytes: %w", err)
		}
		for _, b := range buf {
			if b >= limit {
				continue
			}
			code = append(code, alphabet[int(b)%len(alphabet)])
			if len(code) == Length {
				break
			}
		}
	}
	return string(code), nil
}

// Normalize folds a user-entered code to its canonical form. Codes are
// case-insensitive.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
