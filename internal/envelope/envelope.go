// Package envelope binds ciphertext to the key version that produced it.
//
// A sealed value is stored as "{version}_{payload}" where payload is the
// base64 output of the CTR+HMAC cipher. The version lets a later reader
// resolve the exact key material, independent of the currently active version.
package envelope

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/allisson/appconfig/internal/errors"
)

// CodeEnvelopeMalformed is the error code of an unparseable envelope string.
const CodeEnvelopeMalformed = "ENVELOPE_MALFORMED"

const separator = "_"

// ErrMalformed indicates the stored string is not a valid "{version}_{payload}" envelope.
var ErrMalformed = errors.Coded(CodeEnvelopeMalformed, errors.ErrInvalidInput, "malformed envelope")

// Envelope is a ciphertext tagged with its key version.
type Envelope struct {
	Version uint
	Payload string
}

// String renders the stored form "{version}_{payload}".
func (e Envelope) String() string {
	return strconv.FormatUint(uint64(e.Version), 10) + separator + e.Payload
}

// Parse splits a stored envelope on the first separator. The version must be a
// positive integer and the payload must not be empty.
func Parse(s string) (Envelope, error) {
	rawVersion, payload, ok := strings.Cut(s, separator)
	if !ok {
		return Envelope{}, fmt.Errorf("%w: missing version separator", ErrMalformed)
	}

	version, err := strconv.ParseUint(rawVersion, 10, 0)
	if err != nil || version == 0 {
		return Envelope{}, fmt.Errorf("%w: invalid version %q", ErrMalformed, rawVersion)
	}

	if payload == "" {
		return Envelope{}, fmt.Errorf("%w: empty payload", ErrMalformed)
	}

	return Envelope{Version: uint(version), Payload: payload}, nil
}
