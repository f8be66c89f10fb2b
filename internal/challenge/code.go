// Package challenge produces the one-time codes that silence a participant
// during a brutal escalation, and the noisy images that carry them.
package challenge

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// Alphabet is the set codes are drawn from.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// DefaultLength is the code length used by the escalation registry.
const DefaultLength = 8

var alphabetSize = big.NewInt(int64(len(Alphabet)))

// Generate returns a random code of the given length with every character
// drawn uniformly from Alphabet.
func Generate(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("challenge: invalid code length %d", length)
	}
	var b strings.Builder
	b.Grow(length)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", fmt.Errorf("challenge: read random: %w", err)
		}
		b.WriteByte(Alphabet[n.Int64()])
	}
	return b.String(), nil
}

// Normalize canonicalizes user input before comparison.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
