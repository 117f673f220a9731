package domain

import (
	"time"

	"github.com/google/uuid"
)

// Key is the durable record of one (type, version) key. It never holds the raw
// secret, only its salted hash; the raw secret lives in the material store.
type Key struct {
	ID             uuid.UUID
	Type           string
	Version        uint
	HashedSecret   string
	HashBytes      int
	Status         Status
	DurationAmount *int
	DurationUnit   *DurationUnit
	ExpireAt       *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      *time.Time
}

// Duration returns the rotation period of the key, or nil when it never expires on its own.
func (k *Key) Duration() *Duration {
	if k.DurationAmount == nil || k.DurationUnit == nil {
		return nil
	}
	return &Duration{Amount: *k.DurationAmount, Unit: *k.DurationUnit}
}

// Expired reports whether the record's own expiry has been reached. The boundary is inclusive.
func (k *Key) Expired(now time.Time) bool {
	return k.ExpireAt != nil && !now.Before(*k.ExpireAt)
}

// GenerateInput describes a new key version to create.
type GenerateInput struct {
	Type      string
	Bytes     int
	UseRotate bool
	Duration  *Duration
}

// RotateOptions controls how GetRotateKey resolves a type.
type RotateOptions struct {
	// Bytes is the hash/IV length used when the lookup bootstraps a new key.
	Bytes int
	// Version pins the lookup to one version instead of the active one.
	Version *uint
	// RenewOnExpire generates a new version instead of failing when the key expired.
	RenewOnExpire bool
	// OnGenerateDuration is the rotation period given to keys created by this lookup.
	OnGenerateDuration *Duration
}

// ExpiredKey carries the previous secret after an in-place renewal. It is handed
// out once per rotation event so the caller can decrypt and re-encrypt stale data.
type ExpiredKey struct {
	ID      uuid.UUID
	Version uint
	Secret  string
}

// RotateKey is the resolved secret of a type.
type RotateKey struct {
	Secret     string
	Version    uint
	KeyID      uuid.UUID
	HashBytes  int
	ExpiredKey *ExpiredKey
}

// DecryptSecret returns the secret that decrypts data sealed before a renewal,
// which is the expired secret when one was handed back.
func (r *RotateKey) DecryptSecret() string {
	if r.ExpiredKey != nil {
		return r.ExpiredKey.Secret
	}
	return r.Secret
}
