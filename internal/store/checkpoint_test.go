package store_test

import (
	"context"
	"testing"
	"time"

	"txn-aggregation-go/internal/cache"
	"txn-aggregation-go/internal/store"
)

func TestReadCheckpoint_AbsentIsEpoch(t *testing.T) {
	mem := cache.NewMemoryStore()
	defer mem.Close()

	checkpoint, found, err := store.ReadCheckpoint(context.Background(), mem)
	if err != nil {
		t.Fatalf("ReadCheckpoint failed: %v", err)
	}
	if found {
		t.Error("Expected found=false for empty cache")
	}
	if !checkpoint.Equal(time.Unix(0, 0)) {
		t.Errorf("Expected epoch, got %s", checkpoint)
	}
}

func TestCheckpointRoundTripKeepsNanoseconds(t *testing.T) {
	mem := cache.NewMemoryStore()
	defer mem.Close()
	ctx := context.Background()

	want := time.Date(2025, 3, 16, 12, 0, 0, 123456789, time.FixedZone("CET", 3600))
	if err := store.WriteCheckpoint(ctx, mem, want); err != nil {
		t.Fatalf("WriteCheckpoint failed: %v", err)
	}

	got, found, err := store.ReadCheckpoint(ctx, mem)
	if err != nil || !found {
		t.Fatalf("ReadCheckpoint: found=%v err=%v", found, err)
	}
	if !got.Equal(want) {
		t.Errorf("Expected %s, got %s", want, got)
	}
}
