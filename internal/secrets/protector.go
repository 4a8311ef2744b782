// Package secrets encrypts and decrypts API keys at rest. Keys are protected
// with AES-256-GCM before being stored in SQLite and unprotected when read.
// The cipher key is derived from a server-managed secret; rotating that secret
// invalidates previously stored ciphertexts, which surface as ErrCryptographic
// on Unprotect.
//
// Plaintext key material must never cross this package boundary into logs.
package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

// ErrCryptographic is returned by Unprotect when the ciphertext was not
// produced by Protect under the current secret (tampered, truncated, or
// written under a rotated secret).
var ErrCryptographic = errors.New("cryptographic failure")

// Protector performs symmetric at-rest encryption of API keys.
// It is immutable after construction and safe for concurrent use.
type Protector struct {
	key []byte
}

// NewProtector derives the AES-256 key from secret via SHA-256.
func NewProtector(secret string) *Protector {
	hashed := sha256.Sum256([]byte(secret))
	return &Protector{key: hashed[:]}
}

// Protect encrypts plaintext and returns a base64 ciphertext suitable for
// storage in a varchar column. A fresh random nonce is used per call, so two
// Protect calls on the same input yield different ciphertexts; only the
// Protect/Unprotect round trip is guaranteed stable.
func (p *Protector) Protect(plaintext string) (string, error) {
	block, err := aes.NewCipher(p.key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	ciphertext := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Unprotect decrypts a ciphertext produced by Protect. Any failure along the
// way (bad base64, short input, authentication failure) maps to
// ErrCryptographic so callers never branch on cipher internals.
func (p *Protector) Unprotect(encoded string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCryptographic, err)
	}
	block, err := aes.NewCipher(p.key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}
	if len(data) < gcm.NonceSize() {
		return "", fmt.Errorf("%w: ciphertext too short", ErrCryptographic)
	}
	nonce, ciphertext := data[:gcm.NonceSize()], data[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCryptographic, err)
	}
	return string(plaintext), nil
}

// MaskKey renders a plaintext key for display. Keys of 8 characters or fewer
// mask entirely; longer keys keep their last four characters. Cosmetic only:
// masking never participates in storage or credential resolution.
func MaskKey(apiKey string) string {
	const prefix = "sk-ant-****"
	if len(apiKey) <= 8 {
		return prefix
	}
	return prefix + apiKey[len(apiKey)-4:]
}
