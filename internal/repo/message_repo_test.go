package repo

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-apptemplate-backend/internal/domain"
)

func newMessageRepoDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("message_repo_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := db.AutoMigrate(&domain.ChatMessage{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func TestCreateChatMessage_SetsFields(t *testing.T) {
	db := newMessageRepoDB(t)

	start := time.Now().UTC().Add(-time.Minute)
	msg, err := CreateChatMessage(context.Background(), db, "dev-1", "hello", true)
	if err != nil {
		t.Fatalf("CreateChatMessage: %v", err)
	}
	if msg.ID == "" || msg.DeviceID != "dev-1" || msg.Content != "hello" || !msg.IsUser {
		t.Fatalf("unexpected message fields: %+v", msg)
	}
	if msg.Timestamp.Before(start) {
		t.Fatalf("Timestamp seems unset: %v", msg.Timestamp)
	}
}

func TestListChatMessages_OrderAscendingAndFilter(t *testing.T) {
	db := newMessageRepoDB(t)
	ctx := context.Background()

	// Seed with known timestamps so order is deterministic.
	t1 := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	seed := []domain.ChatMessage{
		{ID: "m2", DeviceID: "dev-1", Content: "second", IsUser: false, Timestamp: t1.Add(time.Minute)},
		{ID: "m1", DeviceID: "dev-1", Content: "first", IsUser: true, Timestamp: t1},
		{ID: "mx", DeviceID: "dev-2", Content: "other device", IsUser: true, Timestamp: t1},
	}
	for _, m := range seed {
		if err := db.Create(&m).Error; err != nil {
			t.Fatalf("seed %s: %v", m.ID, err)
		}
	}

	got, err := ListChatMessages(ctx, db, "dev-1")
	if err != nil {
		t.Fatalf("ListChatMessages: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 messages for dev-1, got %d", len(got))
	}
	if got[0].Content != "first" || got[1].Content != "second" {
		t.Fatalf("wrong order: [%s, %s]", got[0].Content, got[1].Content)
	}
}

func TestListChatMessages_EqualTimestampsBreakTiesByID(t *testing.T) {
	db := newMessageRepoDB(t)

	ts := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	for _, id := range []string{"b", "a"} {
		m := domain.ChatMessage{ID: id, DeviceID: "dev-1", Content: id, IsUser: true, Timestamp: ts}
		if err := db.Create(&m).Error; err != nil {
			t.Fatalf("seed %s: %v", id, err)
		}
	}

	got, err := ListChatMessages(context.Background(), db, "dev-1")
	if err != nil {
		t.Fatalf("ListChatMessages: %v", err)
	}
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "b" {
		t.Fatalf("expected deterministic id tiebreak, got %+v", got)
	}
}

func TestListChatMessages_EmptyDeviceReturnsEmptySlice(t *testing.T) {
	db := newMessageRepoDB(t)

	got, err := ListChatMessages(context.Background(), db, "nobody")
	if err != nil {
		t.Fatalf("ListChatMessages: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty history, got %d rows", len(got))
	}
}

func TestDeleteChatMessages_ScopedToDevice(t *testing.T) {
	db := newMessageRepoDB(t)
	ctx := context.Background()

	for _, dev := range []string{"dev-1", "dev-1", "dev-2"} {
		if _, err := CreateChatMessage(ctx, db, dev, "msg", true); err != nil {
			t.Fatalf("seed %s: %v", dev, err)
		}
	}

	if err := DeleteChatMessages(ctx, db, "dev-1"); err != nil {
		t.Fatalf("DeleteChatMessages: %v", err)
	}

	n1, err := CountChatMessages(ctx, db, "dev-1")
	if err != nil || n1 != 0 {
		t.Fatalf("dev-1 should be empty: n=%d err=%v", n1, err)
	}
	n2, err := CountChatMessages(ctx, db, "dev-2")
	if err != nil || n2 != 1 {
		t.Fatalf("dev-2 must be untouched: n=%d err=%v", n2, err)
	}
}

func TestDeleteChatMessages_EmptyHistoryIsNoError(t *testing.T) {
	db := newMessageRepoDB(t)

	if err := DeleteChatMessages(context.Background(), db, "nobody"); err != nil {
		t.Fatalf("clearing an empty history must succeed, got %v", err)
	}
}
