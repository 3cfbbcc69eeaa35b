package counter

import (
	"context"
	"testing"
	"time"
)

func TestMemoryTTLExpiry(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryWithClock(func() time.Time { return now })
	ctx := context.Background()

	if err := store.Set(ctx, "searches", 3, time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if n, ok, _ := store.Get(ctx, "searches"); !ok || n != 3 {
		t.Fatalf("Get = %d/%v, want 3/true", n, ok)
	}

	now = now.Add(2 * time.Hour)
	if n, ok, _ := store.Get(ctx, "searches"); ok || n != 0 {
		t.Fatalf("Get after expiry = %d/%v, want 0/false", n, ok)
	}
}

func TestMemoryIncrementOrCreate(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	for want := 1; want <= 3; want++ {
		n, err := store.IncrementOrCreate(ctx, "user:u-1:2025-05-01")
		if err != nil {
			t.Fatalf("IncrementOrCreate: %v", err)
		}
		if n != want {
			t.Fatalf("IncrementOrCreate = %d, want %d", n, want)
		}
	}
}

func TestMemoryIncrementResetsExpired(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryWithClock(func() time.Time { return now })
	ctx := context.Background()

	if err := store.Set(ctx, "k", 9, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	now = now.Add(time.Hour)
	n, err := store.IncrementOrCreate(ctx, "k")
	if err != nil {
		t.Fatalf("IncrementOrCreate: %v", err)
	}
	if n != 1 {
		t.Fatalf("IncrementOrCreate after expiry = %d, want 1", n)
	}
}

func TestMemoryDelete(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	if err := store.Set(ctx, "k", 5, 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "k"); ok {
		t.Fatalf("Get after Delete should report absent")
	}
	if err := store.Delete(ctx, "missing"); err != nil {
		t.Fatalf("Delete of absent key should be nil, got %v", err)
	}
}
