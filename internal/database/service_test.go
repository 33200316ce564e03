package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"txn-aggregation-go/internal/models"
	"txn-aggregation-go/internal/store"

	_ "github.com/mattn/go-sqlite3"
)

func setupTestDb(t *testing.T) (*Service, *time.Time, func()) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	// every pooled connection to :memory: would be a separate database
	db.SetMaxOpenConns(1)

	service, err := newServiceFromDB(db)
	if err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}

	now := time.Date(2025, 3, 16, 12, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return now }

	cleanup := func() {
		service.Close()
	}

	return service, &now, cleanup
}

func TestService_GetMissing(t *testing.T) {
	service, _, cleanup := setupTestDb(t)
	defer cleanup()

	_, err := service.Get(context.Background(), store.UserKey("nobody"))
	if !errors.Is(err, store.ErrCacheMiss) {
		t.Fatalf("Expected ErrCacheMiss, got %v", err)
	}
}

func TestService_SetGetOverwrite(t *testing.T) {
	service, _, cleanup := setupTestDb(t)
	defer cleanup()
	ctx := context.Background()

	key := store.UserKey("074092")
	if err := service.Set(ctx, key, []byte(`{"balance":"1"}`), 120*time.Second); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := service.Set(ctx, key, []byte(`{"balance":"2"}`), 120*time.Second); err != nil {
		t.Fatalf("Overwrite failed: %v", err)
	}

	got, err := service.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != `{"balance":"2"}` {
		t.Errorf("Expected overwritten value, got %s", got)
	}

	n, err := service.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 row after overwrite, got %d", n)
	}
}

func TestService_Expiry(t *testing.T) {
	service, now, cleanup := setupTestDb(t)
	defer cleanup()
	ctx := context.Background()

	key := store.UserKey("085123")
	if err := service.Set(ctx, key, []byte("v"), 120*time.Second); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	*now = now.Add(121 * time.Second)
	if _, err := service.Get(ctx, key); !errors.Is(err, store.ErrCacheMiss) {
		t.Fatalf("Expected ErrCacheMiss after TTL, got %v", err)
	}
}

func TestService_CheckpointNeverExpires(t *testing.T) {
	service, now, cleanup := setupTestDb(t)
	defer cleanup()
	ctx := context.Background()

	if err := service.Set(ctx, store.CheckpointKey, []byte("2025-03-16T12:00:00Z"), store.NoExpiration); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	*now = now.Add(30 * 24 * time.Hour)
	got, err := service.Get(ctx, store.CheckpointKey)
	if err != nil {
		t.Fatalf("Expected checkpoint to survive, got %v", err)
	}
	if string(got) != "2025-03-16T12:00:00Z" {
		t.Errorf("Unexpected checkpoint value %s", got)
	}
}

func TestService_PurgeExpired(t *testing.T) {
	service, now, cleanup := setupTestDb(t)
	defer cleanup()
	ctx := context.Background()

	_ = service.Set(ctx, "a", []byte("1"), time.Second)
	_ = service.Set(ctx, "b", []byte("2"), time.Hour)
	_ = service.Set(ctx, "c", []byte("3"), store.NoExpiration)

	*now = now.Add(time.Minute)
	cleaned, err := service.PurgeExpired(ctx)
	if err != nil {
		t.Fatalf("PurgeExpired failed: %v", err)
	}
	if cleaned != 1 {
		t.Errorf("Expected 1 purged row, got %d", cleaned)
	}

	n, _ := service.Count(ctx)
	if n != 2 {
		t.Errorf("Expected 2 remaining rows, got %d", n)
	}
}

func TestNewService_ValidatesConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  models.DatabaseConfig
	}{
		{"empty path", models.DatabaseConfig{Path: "", MaxOpenConns: 1, PingTimeout: time.Second}},
		{"zero open conns", models.DatabaseConfig{Path: "x.db", MaxOpenConns: 0, PingTimeout: time.Second}},
		{"negative idle conns", models.DatabaseConfig{Path: "x.db", MaxOpenConns: 1, MaxIdleConns: -1, PingTimeout: time.Second}},
		{"zero ping timeout", models.DatabaseConfig{Path: "x.db", MaxOpenConns: 1}},
	}
	for _, tt := range tests {
		if _, err := NewService(context.Background(), tt.cfg); err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}
}

func TestNewService_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	cfg := models.DatabaseConfig{
		Path:            path,
		MaxOpenConns:    4,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Minute,
		ConnMaxIdleTime: time.Minute,
		PingTimeout:     time.Second,
	}
	ctx := context.Background()

	first, err := NewService(ctx, cfg)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	if err := first.Set(ctx, store.CheckpointKey, []byte("checkpoint"), store.NoExpiration); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	first.Close()

	second, err := NewService(ctx, cfg)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer second.Close()

	got, err := second.Get(ctx, store.CheckpointKey)
	if err != nil {
		t.Fatalf("Expected checkpoint after reopen, got %v", err)
	}
	if string(got) != "checkpoint" {
		t.Errorf("Unexpected value %s", got)
	}
}
