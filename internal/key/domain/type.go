package domain

import (
	"strings"

	"github.com/allisson/appconfig/internal/errors"
)

// Purposes of the logical key types used by the consumers.
const (
	PurposeConfig         = "config"
	PurposeWebhookAuthKey = "webhook-auth-key"
	PurposeAPIKeyJWT      = "api-key-jwt"
)

// maxTypeLength keeps the slug inside the keys.type column.
const maxTypeLength = 191

// NormalizeType slug-normalizes the given parts into a logical key type.
// Letters are lowercased, runs of any other character collapse into a single
// "-", and the parts are joined with "-". The result is safe as a path segment.
func NormalizeType(parts ...string) (string, error) {
	var b strings.Builder
	pendingDash := false

	for _, part := range parts {
		for _, r := range strings.ToLower(part) {
			if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
				if pendingDash && b.Len() > 0 {
					b.WriteByte('-')
				}
				pendingDash = false
				b.WriteRune(r)
				continue
			}
			pendingDash = true
		}
		pendingDash = true
	}

	result := b.String()
	if result == "" {
		return "", errors.Wrap(ErrInvalidParams, "key type is empty after normalization")
	}
	if len(result) > maxTypeLength {
		return "", errors.Wrap(ErrInvalidParams, "key type is too long")
	}
	return result, nil
}

// TypeFor builds the logical key type of a consumer purpose scoped to an app namespace.
func TypeFor(purpose, appCode, namespace string) (string, error) {
	return NormalizeType(purpose, appCode, namespace)
}
