// Package domain defines the API keys issued to applications.
//
// The caller receives a signed token carrying the plain key; only an argon2id
// hash of the key is stored. Tokens are signed with the rotating "api-key-jwt"
// key of the (app code, namespace) pair and name the signing key version in
// their "kid" header.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Type separates keys used by the application itself from keys handed to third parties.
type Type string

const (
	TypeInternal   Type = "INTERNAL"
	TypeThirdParty Type = "THIRD_PARTY"
)

// Valid reports whether t is a known key type.
func (t Type) Valid() bool {
	return t == TypeInternal || t == TypeThirdParty
}

// APIKey is a stored API key.
type APIKey struct {
	ID        uuid.UUID
	AppCode   string
	Namespace string
	Type      Type
	// KeyHash is the argon2id hash of the plain key.
	KeyHash string
	// PublicKey identifies a THIRD_PARTY key holder; nil for INTERNAL keys.
	PublicKey   *string
	Description *string
	Active      bool
	RevokedAt   *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time
}

// Issued is an API key together with the token returned to the caller once.
type Issued struct {
	*APIKey
	Token string
}
