package extract

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/oesukam/r-incident-query-webapp/core"
)

func TestInMemoryStoreGetSetShouldStoreAndRetrieve(t *testing.T) {
	store := NewInMemoryStore(StoreConfig{TTL: 5 * time.Minute, MaxSize: 16})
	ctx := context.Background()

	records := []core.EmailRecord{{Email: "a@x.com", FullName: "Alice"}}

	if err := store.Set(ctx, "INC-1", records); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := store.Get(ctx, "INC-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(got) != 1 || got[0].Email != "a@x.com" {
		t.Errorf("Expected stored records back, got %v", got)
	}
}

func TestInMemoryStoreGetNonExistentShouldReturnErrNotCached(t *testing.T) {
	store := NewInMemoryStore(StoreConfig{TTL: 5 * time.Minute, MaxSize: 16})

	_, err := store.Get(context.Background(), "nonexistent")
	if !errors.Is(err, core.ErrNotCached) {
		t.Errorf("Expected ErrNotCached, got %v", err)
	}
}

func TestInMemoryStoreExpiryShouldExpireEntriesAfterTTL(t *testing.T) {
	store := NewInMemoryStore(StoreConfig{TTL: 50 * time.Millisecond, MaxSize: 16})
	ctx := context.Background()

	store.Set(ctx, "INC-1", []core.EmailRecord{{Email: "a@x.com"}})

	if _, err := store.Get(ctx, "INC-1"); err != nil {
		t.Error("Entry should exist immediately after Set")
	}

	time.Sleep(80 * time.Millisecond)

	if _, err := store.Get(ctx, "INC-1"); !errors.Is(err, core.ErrNotCached) {
		t.Errorf("Expected ErrNotCached after TTL, got %v", err)
	}
	if store.Len() != 0 {
		t.Errorf("Expected expired entry removed, size %d", store.Len())
	}
}

func TestInMemoryStoreEvictionWhenFull(t *testing.T) {
	store := NewInMemoryStore(StoreConfig{TTL: 5 * time.Minute, MaxSize: 2})
	ctx := context.Background()

	store.Set(ctx, "INC-1", nil)
	store.Set(ctx, "INC-2", nil)
	store.Set(ctx, "INC-3", nil)

	if store.Len() != 2 {
		t.Errorf("Expected size capped at 2, got %d", store.Len())
	}
	if stats := store.Stats(); stats.Evictions != 1 {
		t.Errorf("Expected 1 eviction, got %d", stats.Evictions)
	}
}

func TestInMemoryStoreStats(t *testing.T) {
	store := NewInMemoryStore(StoreConfig{TTL: 5 * time.Minute, MaxSize: 16})
	ctx := context.Background()

	store.Set(ctx, "INC-1", nil)
	store.Get(ctx, "INC-1")
	store.Get(ctx, "missing")
	store.Delete(ctx, "INC-1")

	stats := store.Stats()
	if stats.Hits != 1 || stats.Misses != 1 || stats.Sets != 1 || stats.Deletes != 1 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
}
