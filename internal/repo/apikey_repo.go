// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the APIKey model.
//
// All functions are context-aware and accept a *gorm.DB handle. They follow
// the "thin repository" approach: no business logic, only CRUD persistence.
// Encryption happens above this layer; these functions only ever see
// ciphertext.
//
// Error semantics:
//   - When a key is not found, GetAPIKey returns gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - DeleteAPIKey is idempotent: deleting an absent device id is not an error.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-apptemplate-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// UpsertAPIKey writes the encrypted key for deviceID, creating the row on the
// first save and updating ciphertext plus UpdatedAt on subsequent saves. The
// device id uniqueness invariant is preserved: there is never more than one
// row per device.
func UpsertAPIKey(ctx context.Context, db *gorm.DB, deviceID, encryptedKey string) (*domain.APIKey, error) {
	now := time.Now().UTC()

	var existing domain.APIKey
	err := db.WithContext(ctx).
		Where("device_id = ?", deviceID).
		First(&existing).Error

	if err == gorm.ErrRecordNotFound {
		rec := &domain.APIKey{
			ID:           uuid.NewString(),
			DeviceID:     deviceID,
			EncryptedKey: encryptedKey,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if cerr := db.WithContext(ctx).Create(rec).Error; cerr != nil {
			return nil, cerr
		}
		return rec, nil
	}
	if err != nil {
		return nil, err
	}

	existing.EncryptedKey = encryptedKey
	existing.UpdatedAt = now
	if uerr := db.WithContext(ctx).
		Model(&domain.APIKey{}).
		Where("id = ?", existing.ID).
		Updates(map[string]any{"encrypted_key": encryptedKey, "updated_at": now}).Error; uerr != nil {
		return nil, uerr
	}
	return &existing, nil
}

// GetAPIKey fetches the key record for deviceID, or ErrNotFound if absent.
func GetAPIKey(ctx context.Context, db *gorm.DB, deviceID string) (*domain.APIKey, error) {
	var rec domain.APIKey
	err := db.WithContext(ctx).
		Where("device_id = ?", deviceID).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// DeleteAPIKey removes the key record for deviceID. Deleting a device that
// has no record is a no-op, never an error.
func DeleteAPIKey(ctx context.Context, db *gorm.DB, deviceID string) error {
	return db.WithContext(ctx).
		Where("device_id = ?", deviceID).
		Delete(&domain.APIKey{}).Error
}
