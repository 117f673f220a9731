// Package dto provides data transfer objects for the key administration API.
package dto

import (
	"errors"

	validation "github.com/jellydator/validation"

	keyDomain "github.com/allisson/appconfig/internal/key/domain"
	customValidation "github.com/allisson/appconfig/internal/validation"
)

// GenerateKeyRequest contains the parameters for generating a new key version.
// Bytes of zero selects the default length. Duration (e.g. "30d") is required when Rotate is set.
type GenerateKeyRequest struct {
	Type     string `json:"type"`
	Bytes    int    `json:"bytes"`
	Rotate   bool   `json:"rotate"`
	Duration string `json:"duration"`
}

// Validate checks if the generate key request is valid.
func (r *GenerateKeyRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Type,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 191),
		),
		validation.Field(&r.Bytes,
			validation.When(r.Bytes != 0, validation.Min(keyDomain.MinBytes), validation.Max(keyDomain.MaxBytes)),
		),
		validation.Field(&r.Duration,
			validation.When(r.Rotate, validation.Required),
			validation.By(durationRule),
		),
	)
}

// RotateDuration returns the parsed rotation period, or nil when the key does not rotate.
func (r *GenerateKeyRequest) RotateDuration() (*keyDomain.Duration, error) {
	if !r.Rotate {
		return nil, nil
	}
	duration, err := keyDomain.ParseDuration(r.Duration)
	if err != nil {
		return nil, err
	}
	return &duration, nil
}

// VerifyKeyRequest contains the candidate secret to check against a key.
type VerifyKeyRequest struct {
	Secret string `json:"secret"`
}

// Validate checks if the verify key request is valid.
func (r *VerifyKeyRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Secret, validation.Required),
	)
}

func durationRule(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, err := keyDomain.ParseDuration(s); err != nil {
		return errors.New("must be an amount followed by one of s, m, h, d, w, M, y")
	}
	return nil
}
