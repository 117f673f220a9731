package domain

import (
	"github.com/allisson/appconfig/internal/errors"
)

// Stable API key error codes surfaced to callers.
const (
	CodeAPIKeyNotExist                 = "APIKEY_NOT_EXIST"
	CodeAPIKeyPayloadExtractFailed     = "APIKEY_PAYLOAD_EXTRACT_FAILED"
	CodeAPIKeyTypeMismatch             = "APIKEY_TYPE_MISMATCH"
	CodePublicKeyLengthNotConfigurated = "PUBLIC_KEY_LENGTH_IS_NOT_CONFIGURATED"
)

// API key error definitions.
var (
	// ErrAPIKeyNotExist indicates no API key matches the lookup.
	ErrAPIKeyNotExist = errors.Coded(CodeAPIKeyNotExist, errors.ErrNotFound, "api key does not exist")

	// ErrPayloadExtractFailed indicates the token could not be verified or decoded.
	ErrPayloadExtractFailed = errors.Coded(
		CodeAPIKeyPayloadExtractFailed,
		errors.ErrForbidden,
		"api key payload extract failed",
	)

	// ErrTypeMismatch indicates the token was issued for another app or key type.
	ErrTypeMismatch = errors.Coded(CodeAPIKeyTypeMismatch, errors.ErrForbidden, "api key type mismatch")

	// ErrPublicKeyLengthNotConfigured indicates THIRD_PARTY keys need PUBLIC_KEY_LENGTH in the app config.
	ErrPublicKeyLengthNotConfigured = errors.Coded(
		CodePublicKeyLengthNotConfigurated,
		errors.ErrInvalidInput,
		"PUBLIC_KEY_LENGTH is not configured",
	)

	// ErrInvalidType indicates an unknown API key type.
	ErrInvalidType = errors.Wrap(errors.ErrInvalidInput, "invalid api key type")
)
