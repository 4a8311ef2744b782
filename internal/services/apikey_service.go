// Package services – APIKeyService
//
// This file implements the key store's application layer: protect-then-upsert
// on save, decrypt-then-mask on read, and idempotent delete. The masking rule
// is cosmetic only and always derives from plaintext, never from ciphertext.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tbourn/go-apptemplate-backend/internal/repo"
	"github.com/tbourn/go-apptemplate-backend/internal/secrets"
)

// APIKeyService manages per-device API keys. All operations are single-row
// and auto-committing; device records are independent so no multi-row
// transaction is needed.
type APIKeyService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Protector encrypts keys before storage and decrypts on read.
	Protector *secrets.Protector
}

// Save protects the plaintext key and upserts it for deviceID, refreshing
// UpdatedAt on re-save. It returns the masked form of the key just saved.
func (s *APIKeyService) Save(ctx context.Context, deviceID, plaintextKey string) (string, error) {
	encrypted, err := s.Protector.Protect(plaintextKey)
	if err != nil {
		return "", err
	}
	if _, err := repo.UpsertAPIKey(ctx, s.DB, deviceID, encrypted); err != nil {
		return "", err
	}
	return secrets.MaskKey(plaintextKey), nil
}

// Status reports whether a key is stored for deviceID and, if so, its masked
// display form. A missing record is (false, "", nil), not an error.
func (s *APIKeyService) Status(ctx context.Context, deviceID string) (bool, string, error) {
	rec, err := repo.GetAPIKey(ctx, s.DB, deviceID)
	if errors.Is(err, repo.ErrNotFound) {
		return false, "", nil
	}
	if err != nil {
		return false, "", err
	}
	plaintext, err := s.Protector.Unprotect(rec.EncryptedKey)
	if err != nil {
		return false, "", err
	}
	return true, secrets.MaskKey(plaintext), nil
}

// Delete removes the stored key for deviceID. Deleting an absent record
// succeeds and leaves the store unchanged.
func (s *APIKeyService) Delete(ctx context.Context, deviceID string) error {
	return repo.DeleteAPIKey(ctx, s.DB, deviceID)
}
