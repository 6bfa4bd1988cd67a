// Package cryptox implements the field-level encryption used for sensitive
// profile attributes. Values are encrypted with AES-GCM under a single
// process-wide key and stored as a base64 envelope of nonce || ciphertext,
// so every envelope carries enough material for independent decryption.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"fmt"

	"github.com/austin-tw/ZenFlow-WebSecurity-P4/internal/common"
)

// FieldCipher encrypts and decrypts string fields with AES-GCM.
// It is immutable after construction and safe for concurrent use.
type FieldCipher struct {
	aead cipher.AEAD
}

// NewFieldCipher builds a FieldCipher from the process-wide key.
// The key must be 16, 24 or 32 bytes (AES-128/192/256).
func NewFieldCipher(key []byte) (*FieldCipher, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("field cipher init: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("field cipher init: %w", err)
	}
	return &FieldCipher{aead: aead}, nil
}

// Encrypt seals plaintext under a fresh random nonce. The same input yields
// a different envelope on every call.
func (c *FieldCipher) Encrypt(plaintext string) (string, error) {
	nonce := common.GenerateRandByteArray(c.aead.NonceSize())
	sealed := c.aead.Seal(nil, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(append(nonce, sealed...)), nil
}

// Decrypt opens an envelope produced by Encrypt. An empty envelope decrypts
// to the empty string with no error, so absent fields render as "".
// A malformed or tampered envelope yields common.ErrDecryption.
func (c *FieldCipher) Decrypt(envelope string) (string, error) {
	if envelope == "" {
		return "", nil
	}

	raw, err := base64.StdEncoding.DecodeString(envelope)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrDecryption, err)
	}

	ns := c.aead.NonceSize()
	if len(raw) < ns {
		return "", fmt.Errorf("%w: envelope too short", common.ErrDecryption)
	}

	plaintext, err := c.aead.Open(nil, raw[:ns], raw[ns:], nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrDecryption, err)
	}

	return string(plaintext), nil
}
