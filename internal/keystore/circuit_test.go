package keystore

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/omarluq/cc-gate/internal/authz"
	"github.com/omarluq/cc-gate/internal/breaker"
)

// faultStore fails every lookup with a store fault.
type faultStore struct {
	calls int
}

func (s *faultStore) QueryByHash(context.Context, string) (authz.KeyRecord, error) {
	s.calls++
	return authz.KeyRecord{}, errors.New("store unavailable")
}

func newTestBreaker(threshold int) *breaker.CircuitBreaker {
	log := zerolog.Nop()
	return breaker.New("keystore", breaker.Config{FailureThreshold: threshold}, &log)
}

func TestBreakerStorePassThrough(t *testing.T) {
	t.Parallel()

	inner := NewMemoryStore()
	inner.Put(authz.KeyRecord{Owner: "alice", ValueHash: "abc123"})
	store := NewBreakerStore(inner, newTestBreaker(3))

	record, err := store.QueryByHash(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("QueryByHash failed: %v", err)
	}
	if record.Owner != "alice" {
		t.Errorf("Owner = %q, want alice", record.Owner)
	}
}

func TestBreakerStoreMissDoesNotTrip(t *testing.T) {
	t.Parallel()

	store := NewBreakerStore(NewMemoryStore(), newTestBreaker(2))

	// Misses are healthy answers; many of them must never open the circuit.
	for range 10 {
		_, err := store.QueryByHash(context.Background(), "missing")
		if !errors.Is(err, authz.ErrKeyNotFound) {
			t.Fatalf("QueryByHash = %v, want ErrKeyNotFound", err)
		}
	}
}

func TestBreakerStoreTripsOnRepeatedFaults(t *testing.T) {
	t.Parallel()

	inner := &faultStore{}
	store := NewBreakerStore(inner, newTestBreaker(3))

	// Drive the circuit open.
	for range 3 {
		_, _ = store.QueryByHash(context.Background(), "abc123")
	}

	callsBefore := inner.calls
	_, err := store.QueryByHash(context.Background(), "abc123")
	if !errors.Is(err, authz.ErrStoreLookupFailed) {
		t.Errorf("QueryByHash with open circuit = %v, want ErrStoreLookupFailed", err)
	}
	if !errors.Is(err, breaker.ErrCircuitOpen) {
		t.Errorf("QueryByHash with open circuit = %v, want ErrCircuitOpen in chain", err)
	}
	if inner.calls != callsBefore {
		t.Error("Open circuit must fail fast without reaching the store")
	}
}
