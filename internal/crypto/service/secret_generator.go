package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	mathrand "math/rand/v2"
)

// Raw secret size bounds in bytes, before hex encoding.
const (
	minSecretBytes = 32
	maxSecretBytes = 64
)

// RandomSecretGenerator generates hex secrets of a random length between 32 and 64 bytes.
type RandomSecretGenerator struct{}

// NewRandomSecretGenerator creates a new RandomSecretGenerator.
func NewRandomSecretGenerator() *RandomSecretGenerator {
	return &RandomSecretGenerator{}
}

// Generate returns the hex encoding of a fresh random secret.
func (g *RandomSecretGenerator) Generate() (string, error) {
	size := minSecretBytes + mathrand.IntN(maxSecretBytes-minSecretBytes+1) //nolint:gosec // length choice, not key material

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
