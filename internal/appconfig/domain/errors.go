package domain

import (
	"github.com/allisson/appconfig/internal/errors"
)

// Stable config error codes surfaced to callers.
const (
	CodeConfigNotExist        = "CONFIG_NOT_EXIST"
	CodeConfigPropertyInvalid = "CONFIG_PROPERTY_INVALID"
)

// Config error definitions.
var (
	// ErrConfigNotExist indicates no config version matches the lookup.
	ErrConfigNotExist = errors.Coded(CodeConfigNotExist, errors.ErrNotFound, "config does not exist")

	// ErrPropertyInvalid indicates a config property is missing or cannot be converted.
	ErrPropertyInvalid = errors.Coded(CodeConfigPropertyInvalid, errors.ErrInvalidInput, "config property invalid")

	// ErrEmptyValues indicates an attempt to store a config without values.
	ErrEmptyValues = errors.Wrap(errors.ErrInvalidInput, "config values are empty")
)
