// Package domain defines the key lifecycle domain models, their formats and errors.
package domain

import (
	"github.com/allisson/appconfig/internal/errors"
)

// Stable key error codes surfaced to callers.
const (
	CodeKeyExpired                  = "KEY_EXPIRED"
	CodeKeyInvalidNotStart          = "KEY_INVALID_NOT_START"
	CodeKeyNotExist                 = "KEY_NOT_EXIST"
	CodeKeyGenerateError            = "KEY_GENERATE_ERROR"
	CodeKeyGenerateRotateNoDuration = "KEY_GENERATE_ROTATE_MISSING_DURATION"
	CodeKeyInvalidParams            = "KEY_INVALID_PARAMS"
)

// Key lifecycle error definitions.
var (
	// ErrKeyExpired indicates the key expired and renewal was not requested.
	ErrKeyExpired = errors.Coded(CodeKeyExpired, errors.ErrExpired, "key expired")

	// ErrKeyNotStarted indicates the key material is not valid yet.
	ErrKeyNotStarted = errors.Coded(CodeKeyInvalidNotStart, errors.ErrForbidden, "key is not valid yet")

	// ErrKeyNotExist indicates no key record matches the lookup.
	ErrKeyNotExist = errors.Coded(CodeKeyNotExist, errors.ErrNotFound, "key does not exist")

	// ErrKeyGenerate indicates the key record was created but its material could not be persisted.
	ErrKeyGenerate = errors.Coded(CodeKeyGenerateError, errors.ErrInternal, "failed to persist key material")

	// ErrMissingDuration indicates a rotating key was requested without a rotation duration.
	ErrMissingDuration = errors.Coded(
		CodeKeyGenerateRotateNoDuration,
		errors.ErrInvalidInput,
		"rotating key requires a duration",
	)

	// ErrInvalidParams indicates invalid type, byte length or duration parameters.
	ErrInvalidParams = errors.Coded(CodeKeyInvalidParams, errors.ErrInvalidInput, "invalid key parameters")

	// ErrMaterialMissing indicates the secret material is absent from cache and durable store, or corrupt.
	ErrMaterialMissing = errors.Wrap(errors.ErrNotFound, "key material missing")

	// ErrVersionConflict indicates another writer created the same (type, version) first.
	ErrVersionConflict = errors.Wrap(errors.ErrConflict, "key version already exists")
)
