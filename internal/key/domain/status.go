package domain

// Status is the lifecycle state of a key version.
type Status string

const (
	// StatusInactive marks a version superseded by a newer one. It stays decryptable by version.
	StatusInactive Status = "INACTIVE"
	// StatusActive marks the version a type issues for new encryption.
	StatusActive Status = "ACTIVE"
	// StatusRetired marks a version that may no longer be resolved.
	StatusRetired Status = "RETIRED"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusInactive, StatusActive, StatusRetired:
		return true
	default:
		return false
	}
}

// String implements fmt.Stringer.
func (s Status) String() string {
	return string(s)
}
