package service

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"

	"github.com/allisson/go-pwdhash"

	apperrors "github.com/allisson/appconfig/internal/errors"
)

const (
	// MinSecretLength and MaxSecretLength bound the random bytes of a key.
	MinSecretLength = 16
	MaxSecretLength = 128
	// DefaultSecretLength is used when no length is requested.
	DefaultSecretLength = 32
)

// secretService implements SecretService using Argon2id for key hashing.
type secretService struct {
	hasher *pwdhash.PasswordHasher
}

// GenerateSecret creates a new random key. The length is clamped to
// [MinSecretLength, MaxSecretLength]; zero selects DefaultSecretLength.
func (s *secretService) GenerateSecret(length int) (plainSecret string, hashedSecret string, err error) {
	randomBytes, err := randomBytes(clampLength(length))
	if err != nil {
		return "", "", err
	}

	plainSecret = base64.RawURLEncoding.EncodeToString(randomBytes)

	hashedSecret, err = s.HashSecret(plainSecret)
	if err != nil {
		return "", "", err
	}

	return plainSecret, hashedSecret, nil
}

// HashSecret hashes a plain key using Argon2id.
func (s *secretService) HashSecret(plainSecret string) (hashedSecret string, err error) {
	hashedSecret, err = s.hasher.Hash([]byte(plainSecret))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to hash api key")
	}
	return hashedSecret, nil
}

// CompareSecret performs a constant-time comparison between a plain key and its hash.
func (s *secretService) CompareSecret(plainSecret string, hashedSecret string) bool {
	ok, err := s.hasher.Verify([]byte(plainSecret), hashedSecret)
	if err != nil {
		return false
	}
	return ok
}

// GeneratePublicKey returns the hex of length random bytes, clamped like GenerateSecret.
func (s *secretService) GeneratePublicKey(length int) (string, error) {
	randomBytes, err := randomBytes(clampLength(length))
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(randomBytes), nil
}

func randomBytes(length int) ([]byte, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return nil, apperrors.Wrap(err, "failed to generate random api key")
	}
	return b, nil
}

func clampLength(length int) int {
	if length == 0 {
		return DefaultSecretLength
	}
	return min(max(length, MinSecretLength), MaxSecretLength)
}

// NewSecretService creates a new SecretService instance using Argon2id hashing.
// Uses the Moderate policy for a balance between security and performance.
func NewSecretService() SecretService {
	hasher, err := pwdhash.New(
		pwdhash.WithPolicy(pwdhash.PolicyModerate),
	)
	if err != nil {
		// This should never happen with valid policy
		panic(err)
	}

	return &secretService{
		hasher: hasher,
	}
}
