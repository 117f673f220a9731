package dto

import (
	"time"

	keyDomain "github.com/allisson/appconfig/internal/key/domain"
)

// KeyResponse represents key metadata in API responses. The secret and its hash are never included.
type KeyResponse struct {
	ID        string     `json:"id"`
	Type      string     `json:"type"`
	Version   uint       `json:"version"`
	HashBytes int        `json:"hash_bytes"`
	Status    string     `json:"status,omitempty"`
	Duration  *string    `json:"duration,omitempty"`
	ExpireAt  *time.Time `json:"expire_at,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// ListKeysResponse wraps the versions of a key type.
type ListKeysResponse struct {
	Data []KeyResponse `json:"data"`
}

// VerifyKeyResponse reports whether the candidate matched.
type VerifyKeyResponse struct {
	Valid bool `json:"valid"`
}

// MapRotateKeyToResponse converts a freshly generated key to an API response.
func MapRotateKeyToResponse(keyType string, rotateKey *keyDomain.RotateKey) KeyResponse {
	return KeyResponse{
		ID:        rotateKey.KeyID.String(),
		Type:      keyType,
		Version:   rotateKey.Version,
		HashBytes: rotateKey.HashBytes,
	}
}

// MapKeyToResponse converts a key record to an API response.
func MapKeyToResponse(key *keyDomain.Key) KeyResponse {
	response := KeyResponse{
		ID:        key.ID.String(),
		Type:      key.Type,
		Version:   key.Version,
		HashBytes: key.HashBytes,
		Status:    key.Status.String(),
		ExpireAt:  key.ExpireAt,
		CreatedAt: &key.CreatedAt,
	}
	if duration := key.Duration(); duration != nil {
		s := duration.String()
		response.Duration = &s
	}
	return response
}

// MapKeysToListResponse converts key records to a list response.
func MapKeysToListResponse(keys []*keyDomain.Key) ListKeysResponse {
	data := make([]KeyResponse, 0, len(keys))
	for _, key := range keys {
		data = append(data, MapKeyToResponse(key))
	}
	return ListKeysResponse{Data: data}
}
