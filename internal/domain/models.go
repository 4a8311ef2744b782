// Package domain defines the persistence models for per-device API keys and
// chat messages. These types are mapped with GORM and form the core data layer
// of the application.
package domain

import (
	"time"
)

// APIKey stores one encrypted Anthropic API key per device. Devices are
// identified by a browser-generated opaque identifier and act as the tenant
// key: at most one row exists per device (enforced by a unique index).
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - DeviceID: client-generated identifier, unique, ≤64 chars.
//   - EncryptedKey: ciphertext produced by the key protector; the plaintext
//     key is never persisted.
//   - CreatedAt / UpdatedAt: set on first save; UpdatedAt refreshed on upsert.
type APIKey struct {
	ID           string    `json:"id"            gorm:"type:char(36);primaryKey"`
	DeviceID     string    `json:"device_id"     gorm:"type:varchar(64);not null;uniqueIndex:ux_api_keys_device"`
	EncryptedKey string    `json:"-"             gorm:"type:varchar(256);not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName returns the database table name for APIKey.
func (APIKey) TableName() string { return "api_keys" }

// ChatMessage represents a single utterance (user or assistant) correlated to
// a device. Rows are append-only and deleted only in bulk per device. There is
// deliberately no foreign key to APIKey: the device id is a loose correlation
// key, not an enforced relation.
//
// Ordering for display sorts by Timestamp ascending; same-millisecond ties
// fall back to ID so listings stay deterministic.
type ChatMessage struct {
	ID        string    `json:"id"        gorm:"type:char(36);primaryKey"`
	DeviceID  string    `json:"device_id" gorm:"type:varchar(64);not null;index:idx_device_msgs,priority:1"`
	Content   string    `json:"content"   gorm:"type:text;not null"`
	IsUser    bool      `json:"is_user"   gorm:"not null"`
	Timestamp time.Time `json:"timestamp" gorm:"index:idx_device_msgs,priority:2"`
}

// TableName returns the database table name for ChatMessage.
func (ChatMessage) TableName() string { return "chat_messages" }
