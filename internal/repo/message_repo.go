// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the ChatMessage
// model: append, list, count, and bulk delete per device.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-apptemplate-backend/internal/domain"
)

// CreateChatMessage inserts a new message row for deviceID. The timestamp is
// assigned at write time (wall clock, UTC).
func CreateChatMessage(ctx context.Context, db *gorm.DB, deviceID, content string, isUser bool) (*domain.ChatMessage, error) {
	m := &domain.ChatMessage{
		ID:        uuid.NewString(),
		DeviceID:  deviceID,
		Content:   content,
		IsUser:    isUser,
		Timestamp: time.Now().UTC(),
	}
	return m, db.WithContext(ctx).Create(m).Error
}

// ListChatMessages returns all messages for a device ordered deterministically
// (Timestamp ASC, ID ASC). Same-millisecond ties resolve by ID.
func ListChatMessages(ctx context.Context, db *gorm.DB, deviceID string) ([]domain.ChatMessage, error) {
	var out []domain.ChatMessage
	err := db.WithContext(ctx).
		Where("device_id = ?", deviceID).
		Order("timestamp ASC, id ASC").
		Find(&out).Error
	return out, err
}

// CountChatMessages uses a raw COUNT so a missing table surfaces as an error.
func CountChatMessages(ctx context.Context, db *gorm.DB, deviceID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Raw("SELECT COUNT(*) FROM chat_messages WHERE device_id = ?", deviceID).
		Scan(&total).Error
	return total, err
}

// DeleteChatMessages removes every message for deviceID. Rows belonging to
// other devices are untouched. Idempotent: an empty history is not an error.
func DeleteChatMessages(ctx context.Context, db *gorm.DB, deviceID string) error {
	return db.WithContext(ctx).
		Where("device_id = ?", deviceID).
		Delete(&domain.ChatMessage{}).Error
}
