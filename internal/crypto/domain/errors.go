package domain

import (
	"github.com/allisson/appconfig/internal/errors"
)

// Stable crypto error codes surfaced to callers.
const (
	CodeAuthenticationFailed = "CRYPTO_AUTHENTICATION_FAILED"
	CodeMalformedPayload     = "CRYPTO_MALFORMED_PAYLOAD"
)

// Cryptographic operation error definitions.
//
// Decryption failures never disclose which part of the payload was wrong.
var (
	// ErrAuthenticationFailed indicates the HMAC tag did not match the IV and ciphertext.
	// Decryption is never attempted in that case.
	ErrAuthenticationFailed = errors.Coded(
		CodeAuthenticationFailed,
		errors.ErrInvalidInput,
		"authentication failed - hmac mismatch",
	)

	// ErrMalformedPayload indicates a payload that cannot be decoded or split into its parts.
	ErrMalformedPayload = errors.Coded(CodeMalformedPayload, errors.ErrInvalidInput, "malformed payload")

	// ErrInvalidIVLength indicates an IV length outside 1..255.
	ErrInvalidIVLength = errors.Wrap(errors.ErrInvalidInput, "iv length must be between 1 and 255 bytes")
)
