package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	cryptoDomain "github.com/allisson/appconfig/internal/crypto/domain"
)

// CTRHMACCipher implements Cipher with AES-256-CTR and an encrypt-then-MAC
// HMAC-SHA256 tag.
//
// Both sub-keys come from the raw secret: encKey = sha256(secret+"enc") and
// macKey = sha256(secret+"mac"). The random IV input of caller chosen length is
// expanded with HKDF-SHA256 to the 16 byte AES block size, and the raw input is
// what travels in the payload:
//
//	base64( [1 byte len][raw iv][ciphertext][32 byte hmac(raw iv || ciphertext)] )
//
// The cipher is stateless and safe for concurrent use.
type CTRHMACCipher struct{}

// NewCTRHMACCipher creates a new CTRHMACCipher.
func NewCTRHMACCipher() *CTRHMACCipher {
	return &CTRHMACCipher{}
}

// Encrypt JSON-encodes value and seals it under secret.
func (c *CTRHMACCipher) Encrypt(value any, secret string, ivBytes int) (string, error) {
	if ivBytes < 1 || ivBytes > cryptoDomain.MaxIVLength {
		return "", cryptoDomain.ErrInvalidIVLength
	}

	plaintext, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("failed to encode value: %w", err)
	}

	rawIV := make([]byte, ivBytes)
	if _, err := rand.Read(rawIV); err != nil {
		return "", fmt.Errorf("failed to generate iv: %w", err)
	}

	encKey, macKey := deriveKeys(secret)
	defer clear(encKey)
	defer clear(macKey)

	stream, err := newStream(encKey, rawIV)
	if err != nil {
		return "", err
	}

	payload := make([]byte, 0, 1+ivBytes+len(plaintext)+cryptoDomain.HMACLength)
	payload = append(payload, byte(ivBytes))
	payload = append(payload, rawIV...)

	ciphertext := make([]byte, len(plaintext))
	stream.XORKeyStream(ciphertext, plaintext)
	payload = append(payload, ciphertext...)
	payload = append(payload, tag(macKey, rawIV, ciphertext)...)

	return base64.StdEncoding.EncodeToString(payload), nil
}

// Decrypt verifies the tag before touching the cipher and decodes the plaintext into out.
func (c *CTRHMACCipher) Decrypt(payload, secret string, out any) error {
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return fmt.Errorf("%w: invalid base64", cryptoDomain.ErrMalformedPayload)
	}
	if len(data) < 1+cryptoDomain.HMACLength {
		return fmt.Errorf("%w: payload too short", cryptoDomain.ErrMalformedPayload)
	}

	ivLen := int(data[0])
	hmacStart := len(data) - cryptoDomain.HMACLength
	// A tampered length prefix is indistinguishable from a forged payload.
	if ivLen == 0 || 1+ivLen > hmacStart {
		return cryptoDomain.ErrAuthenticationFailed
	}

	rawIV := data[1 : 1+ivLen]
	ciphertext := data[1+ivLen : hmacStart]
	received := data[hmacStart:]

	encKey, macKey := deriveKeys(secret)
	defer clear(encKey)
	defer clear(macKey)

	if !hmac.Equal(received, tag(macKey, rawIV, ciphertext)) {
		return cryptoDomain.ErrAuthenticationFailed
	}

	stream, err := newStream(encKey, rawIV)
	if err != nil {
		return err
	}

	plaintext := make([]byte, len(ciphertext))
	stream.XORKeyStream(plaintext, ciphertext)
	defer clear(plaintext)

	if err := json.Unmarshal(plaintext, out); err != nil {
		return fmt.Errorf("%w: invalid plaintext", cryptoDomain.ErrMalformedPayload)
	}
	return nil
}

func deriveKeys(secret string) (encKey, macKey []byte) {
	enc := sha256.Sum256([]byte(secret + cryptoDomain.EncPurpose))
	mac := sha256.Sum256([]byte(secret + cryptoDomain.MACPurpose))
	return enc[:], mac[:]
}

func newStream(encKey, rawIV []byte) (cipher.Stream, error) {
	iv := make([]byte, cryptoDomain.DerivedIVLength)
	reader := hkdf.New(sha256.New, rawIV, cryptoDomain.HKDFSalt, cryptoDomain.HKDFInfo)
	if _, err := io.ReadFull(reader, iv); err != nil {
		return nil, fmt.Errorf("failed to derive iv: %w", err)
	}

	block, err := aes.NewCipher(encKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}
	return cipher.NewCTR(block, iv), nil
}

func tag(macKey, rawIV, ciphertext []byte) []byte {
	mac := hmac.New(sha256.New, macKey)
	mac.Write(rawIV)
	mac.Write(ciphertext)
	return mac.Sum(nil)
}
