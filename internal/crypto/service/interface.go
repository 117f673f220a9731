// Package service provides the cryptographic primitives used by the key lifecycle:
// salted verification hashing, authenticated encryption and secret generation.
package service

// HashOptions tunes Hasher.Hash.
type HashOptions struct {
	// Salt is used as-is when set; otherwise a fresh hex salt of Length random bytes is generated.
	Salt string
	// Length is the number of random salt bytes. Zero selects the default.
	Length int
}

// Hasher produces and verifies salted one-way hashes of raw secrets.
type Hasher interface {
	// Hash returns "{salt}:{hash}".
	Hash(secret string, opts HashOptions) (string, error)

	// Verify reports whether secret matches the stored "{salt}:{hash}" value.
	// Malformed stored values never match.
	Verify(secret, stored string) bool
}

// Cipher encrypts JSON-encodable values under a raw secret.
type Cipher interface {
	// Encrypt JSON-encodes value and returns the base64 packed payload
	// [ivLength][iv][ciphertext][hmac]. ivBytes is the random IV input size.
	Encrypt(value any, secret string, ivBytes int) (string, error)

	// Decrypt authenticates the payload, decrypts it and JSON-decodes the result into out.
	Decrypt(payload, secret string, out any) error
}

// SecretGenerator creates raw secrets for new key versions.
type SecretGenerator interface {
	// Generate returns a new hex encoded random secret.
	Generate() (string, error)
}
