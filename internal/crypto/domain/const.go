package domain

// Wire constants of the packed ciphertext payload.
const (
	// HMACLength is the size of the HMAC-SHA256 tag appended to every payload.
	HMACLength = 32
	// DerivedIVLength is the AES block size the random IV input is expanded to.
	DerivedIVLength = 16
	// MaxIVLength is the largest raw IV the one-byte length prefix can encode.
	MaxIVLength = 255
	// DefaultSaltLength is the salt size used by the verification hash when none is requested.
	DefaultSaltLength = 32
	// HashLength is the scrypt output size of the verification hash.
	HashLength = 64
)

// Derivation contexts. Changing any of them breaks every stored payload.
var (
	HKDFSalt   = []byte("aes-ctr-iv")
	HKDFInfo   = []byte("v1")
	EncPurpose = "enc"
	MACPurpose = "mac"
)
