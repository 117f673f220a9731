package domain

import (
	"fmt"
	"strings"
	"time"
)

const (
	// NotExpire is the validTo sentinel for material that never expires.
	NotExpire = "NOT_EXPIRE"

	materialSeparator = "|"
	materialFields    = 3
	cacheKeyPrefix    = "KEY"
)

// Material is the raw secret of one key version plus its validity window.
type Material struct {
	ValidFrom time.Time
	ValidTo   *time.Time
	Secret    string
}

// NewMaterial builds material valid from now until expireAt (nil means never).
func NewMaterial(secret string, now time.Time, expireAt *time.Time) Material {
	m := Material{ValidFrom: now.UTC(), Secret: secret}
	if expireAt != nil {
		validTo := expireAt.UTC()
		m.ValidTo = &validTo
	}
	return m
}

// String renders the single-line form "{validFrom}|{validTo or NOT_EXPIRE}|{secret}".
func (m Material) String() string {
	validTo := NotExpire
	if m.ValidTo != nil {
		validTo = m.ValidTo.UTC().Format(time.RFC3339Nano)
	}
	return strings.Join([]string{m.ValidFrom.UTC().Format(time.RFC3339Nano), validTo, m.Secret}, materialSeparator)
}

// Expired reports whether the validity window has closed. The boundary is inclusive.
func (m Material) Expired(now time.Time) bool {
	return m.ValidTo != nil && !now.Before(*m.ValidTo)
}

// NotStarted reports whether the validity window has not opened yet.
func (m Material) NotStarted(now time.Time) bool {
	return now.Before(m.ValidFrom)
}

// ParseMaterial parses the single-line form. Anything that is not exactly three
// fields with valid timestamps and a non-empty secret is rejected.
func ParseMaterial(line string) (*Material, error) {
	parts := strings.Split(strings.TrimSpace(line), materialSeparator)
	if len(parts) != materialFields {
		return nil, fmt.Errorf("%w: expected %d fields, got %d", ErrMaterialMissing, materialFields, len(parts))
	}

	validFrom, err := time.Parse(time.RFC3339Nano, parts[0])
	if err != nil {
		return nil, fmt.Errorf("%w: invalid valid-from: %v", ErrMaterialMissing, err)
	}

	m := &Material{ValidFrom: validFrom, Secret: parts[2]}
	if parts[1] != NotExpire {
		validTo, err := time.Parse(time.RFC3339Nano, parts[1])
		if err != nil {
			return nil, fmt.Errorf("%w: invalid valid-to: %v", ErrMaterialMissing, err)
		}
		m.ValidTo = &validTo
	}

	if m.Secret == "" {
		return nil, fmt.Errorf("%w: empty secret", ErrMaterialMissing)
	}

	return m, nil
}

// MaterialPath is the durable object path of a key version.
func MaterialPath(keyType string, version uint) string {
	return fmt.Sprintf("keys/%s/v_%d.txt", keyType, version)
}

// CacheKey is the cache entry name of a key version.
func CacheKey(keyType string, version uint) string {
	return fmt.Sprintf("%s_%s_%d", cacheKeyPrefix, keyType, version)
}
