// Package domain defines the versioned application configuration models.
//
// Each (app code, namespace) pair owns a lineage of config versions. At most one
// version is in use; its values are stored sealed in an envelope under the
// rotating "config" key of that pair.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Config is one stored version of an application's configuration.
type Config struct {
	// ID is the unique identifier of this version.
	ID uuid.UUID
	// AppCode identifies the owning application.
	AppCode string
	// Namespace separates environments of the same application (e.g. "dev", "prod").
	Namespace string
	// Version increases by one per (AppCode, Namespace).
	Version uint
	// IsUse marks the version served by Get.
	IsUse bool
	// Payload is the sealed envelope of the values, "{keyVersion}_{base64}".
	Payload string
	// Values holds the opened payload in memory only.
	Values Values `json:"-"`
	// CreatedAt is the UTC timestamp when this version was created.
	CreatedAt time.Time
	// UpdatedAt is the UTC timestamp of the last change.
	UpdatedAt time.Time
	// DeletedAt marks when this version was soft-deleted (nil if present).
	DeletedAt *time.Time
}

// Revision is a config version listed in the history, without its payload.
type Revision struct {
	ID        uuid.UUID
	Version   uint
	IsUse     bool
	CreatedAt time.Time
}
