package domain

// KeyPolicy is how a consumer asks for its rotating key: the length of newly
// generated keys and the rotation period they get.
type KeyPolicy struct {
	Bytes    BytesPolicy
	Duration Duration
}

// Validate checks the byte policy and the rotation duration.
func (p KeyPolicy) Validate() error {
	if err := p.Bytes.Validate(); err != nil {
		return err
	}
	return p.Duration.Validate()
}

// RotateOptions builds the options consumers resolve their key with. Expired keys
// are renewed on access so stale ciphertext can be opened once and resealed.
func (p KeyPolicy) RotateOptions() RotateOptions {
	duration := p.Duration
	return RotateOptions{
		Bytes:              p.Bytes.Pick(),
		RenewOnExpire:      true,
		OnGenerateDuration: &duration,
	}
}
