// Package service provides the API key secret hashing and token signing services.
package service

import (
	"context"
)

// SecretService defines operations for API key generation and validation.
type SecretService interface {
	// GenerateSecret creates a random key of length bytes. Returns both the plain
	// key (embedded in the token handed to the caller) and its argon2id hash
	// (stored in the database).
	GenerateSecret(length int) (plainSecret string, hashedSecret string, err error)

	// HashSecret hashes a plain key using argon2id.
	HashSecret(plainSecret string) (hashedSecret string, err error)

	// CompareSecret compares a plain key against a hashed key in constant time.
	CompareSecret(plainSecret string, hashedSecret string) bool

	// GeneratePublicKey creates the random public identifier of a THIRD_PARTY key.
	GeneratePublicKey(length int) (string, error)
}

// TokenService signs and verifies API key tokens with the rotating JWT key of
// an (app code, namespace) pair.
type TokenService interface {
	// Sign returns an HS256 token whose "kid" header is the signing key version.
	Sign(ctx context.Context, claims *Claims) (string, error)

	// Parse verifies a token with the exact key version named by its "kid".
	Parse(ctx context.Context, appCode, namespace, token string) (*Claims, error)
}
