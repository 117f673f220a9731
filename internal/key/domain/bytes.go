package domain

import (
	"math/rand/v2"

	"github.com/allisson/appconfig/internal/errors"
)

// BytesMode selects how a key's hash/IV length is chosen.
type BytesMode string

const (
	BytesModeFixed  BytesMode = "FIXED"
	BytesModeRandom BytesMode = "RANDOM"
)

const (
	// MinBytes is the smallest accepted hash/IV length.
	MinBytes = 16
	// MaxBytes is the largest length the one-byte IV length prefix can encode.
	MaxBytes = 255
	// DefaultBytes is used when no length is configured.
	DefaultBytes = 32
)

// BytesPolicy picks the hash/IV length for new keys.
type BytesPolicy struct {
	Mode  BytesMode
	Fixed int
	From  int
	To    int
}

// Validate checks the policy against the accepted range.
func (p BytesPolicy) Validate() error {
	switch p.Mode {
	case BytesModeFixed:
		if p.Fixed < MinBytes || p.Fixed > MaxBytes {
			return errors.Wrap(ErrInvalidParams, "fixed bytes out of range")
		}
	case BytesModeRandom:
		if p.From < MinBytes || p.To > MaxBytes || p.From > p.To {
			return errors.Wrap(ErrInvalidParams, "random bytes range invalid")
		}
	default:
		return errors.Wrap(ErrInvalidParams, "unknown bytes mode")
	}
	return nil
}

// Pick returns a length for a new key, clamped to [MinBytes, MaxBytes].
func (p BytesPolicy) Pick() int {
	var n int
	switch p.Mode {
	case BytesModeRandom:
		if p.To <= p.From {
			n = p.From
		} else {
			n = p.From + rand.IntN(p.To-p.From+1) //nolint:gosec // length choice, not key material
		}
	default:
		n = p.Fixed
	}
	return ClampBytes(n)
}

// ClampBytes bounds n to [MinBytes, MaxBytes]; zero selects DefaultBytes.
func ClampBytes(n int) int {
	switch {
	case n == 0:
		return DefaultBytes
	case n < MinBytes:
		return MinBytes
	case n > MaxBytes:
		return MaxBytes
	default:
		return n
	}
}
