package service

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/scrypt"

	cryptoDomain "github.com/allisson/appconfig/internal/crypto/domain"
)

// scrypt cost parameters. They are part of the stored hash contract.
const (
	scryptN = 16384
	scryptR = 8
	scryptP = 1
)

// ScryptHasher implements Hasher with scrypt.
//
// The salt is stored in its hex text form and fed to scrypt as text, so a
// stored value can be re-derived from the string alone.
type ScryptHasher struct{}

// NewScryptHasher creates a new ScryptHasher.
func NewScryptHasher() *ScryptHasher {
	return &ScryptHasher{}
}

// Hash returns "{salt}:{hash}" where hash is the hex scrypt digest of secret.
func (h *ScryptHasher) Hash(secret string, opts HashOptions) (string, error) {
	salt := opts.Salt
	if salt == "" {
		length := opts.Length
		if length <= 0 {
			length = cryptoDomain.DefaultSaltLength
		}

		buf := make([]byte, length)
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("failed to generate salt: %w", err)
		}
		salt = hex.EncodeToString(buf)
	}

	derived, err := scrypt.Key([]byte(secret), []byte(salt), scryptN, scryptR, scryptP, cryptoDomain.HashLength)
	if err != nil {
		return "", fmt.Errorf("failed to derive hash: %w", err)
	}

	return salt + ":" + hex.EncodeToString(derived), nil
}

// Verify re-derives the hash with the stored salt and compares in constant time.
func (h *ScryptHasher) Verify(secret, stored string) bool {
	salt, encoded, ok := strings.Cut(stored, ":")
	if !ok || salt == "" || encoded == "" {
		return false
	}

	expected, err := hex.DecodeString(encoded)
	if err != nil || len(expected) != cryptoDomain.HashLength {
		return false
	}

	derived, err := scrypt.Key([]byte(secret), []byte(salt), scryptN, scryptR, scryptP, cryptoDomain.HashLength)
	if err != nil {
		return false
	}
	defer clear(derived)

	return subtle.ConstantTimeCompare(derived, expected) == 1
}
