package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestRistrettoCache(t *testing.T) *ristrettoCache {
	t.Helper()
	cfg := RistrettoConfig{
		NumCounters: 100_000,
		MaxCost:     10 << 20, // 10 MB
		BufferItems: 64,
	}
	cache, err := newRistrettoCache(cfg)
	if err != nil {
		t.Fatalf("failed to create ristretto cache: %v", err)
	}
	t.Cleanup(func() {
		_ = cache.Close()
	})
	return cache
}

func TestRistrettoCache_GetSet(t *testing.T) {
	cache := newTestRistrettoCache(t)
	ctx := context.Background()

	key := "decision:abc"
	value := []byte(`{"principalId":"u1"}`)

	if err := cache.Set(ctx, key, value); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// Wait for async set to complete
	cache.wait()

	got, err := cache.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != string(value) {
		t.Errorf("Get returned %q, want %q", got, value)
	}
}

func TestRistrettoCache_GetMiss(t *testing.T) {
	cache := newTestRistrettoCache(t)

	_, err := cache.Get(context.Background(), "absent")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get on missing key = %v, want ErrNotFound", err)
	}
}

func TestRistrettoCache_ValueCopied(t *testing.T) {
	cache := newTestRistrettoCache(t)
	ctx := context.Background()

	value := []byte("original")
	if err := cache.Set(ctx, "k", value); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	value[0] = 'X' // mutate caller's slice after Set

	cache.wait()

	got, err := cache.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != "original" {
		t.Errorf("cached value mutated through caller slice: %q", got)
	}

	got[0] = 'Y' // mutate returned slice
	again, err := cache.Get(ctx, "k")
	if err != nil {
		t.Fatalf("second Get failed: %v", err)
	}
	if string(again) != "original" {
		t.Errorf("cached value mutated through returned slice: %q", again)
	}
}

func TestRistrettoCache_SetWithTTLExpires(t *testing.T) {
	cache := newTestRistrettoCache(t)
	ctx := context.Background()

	if err := cache.SetWithTTL(ctx, "k", []byte("v"), 50*time.Millisecond); err != nil {
		t.Fatalf("SetWithTTL failed: %v", err)
	}
	cache.wait()

	if _, err := cache.Get(ctx, "k"); err != nil {
		t.Fatalf("Get before expiry failed: %v", err)
	}

	time.Sleep(100 * time.Millisecond)

	if _, err := cache.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after expiry = %v, want ErrNotFound", err)
	}
}

func TestRistrettoCache_Delete(t *testing.T) {
	cache := newTestRistrettoCache(t)
	ctx := context.Background()

	if err := cache.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	cache.wait()

	if err := cache.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := cache.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete = %v, want ErrNotFound", err)
	}

	// Deleting a missing key is idempotent.
	if err := cache.Delete(ctx, "absent"); err != nil {
		t.Errorf("Delete on missing key = %v, want nil", err)
	}
}

func TestRistrettoCache_ClosedOperations(t *testing.T) {
	cache := newTestRistrettoCache(t)
	ctx := context.Background()

	if err := cache.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	// Close is idempotent.
	if err := cache.Close(); err != nil {
		t.Errorf("second Close = %v, want nil", err)
	}

	if _, err := cache.Get(ctx, "k"); !errors.Is(err, ErrClosed) {
		t.Errorf("Get after close = %v, want ErrClosed", err)
	}
	if err := cache.Set(ctx, "k", []byte("v")); !errors.Is(err, ErrClosed) {
		t.Errorf("Set after close = %v, want ErrClosed", err)
	}
	if err := cache.Delete(ctx, "k"); !errors.Is(err, ErrClosed) {
		t.Errorf("Delete after close = %v, want ErrClosed", err)
	}
}

func TestRistrettoCache_CanceledContext(t *testing.T) {
	cache := newTestRistrettoCache(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := cache.Get(ctx, "k"); !errors.Is(err, context.Canceled) {
		t.Errorf("Get with canceled context = %v, want context.Canceled", err)
	}
	if err := cache.Set(ctx, "k", []byte("v")); !errors.Is(err, context.Canceled) {
		t.Errorf("Set with canceled context = %v, want context.Canceled", err)
	}
}
