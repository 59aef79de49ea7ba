package keystore

import (
	"context"
	"errors"
	"fmt"

	"github.com/omarluq/cc-gate/internal/authz"
	"github.com/omarluq/cc-gate/internal/breaker"
)

// BreakerStore wraps a key store with a circuit breaker. A store that keeps
// failing trips the circuit; while it is open every lookup fails fast with
// a store fault, which the engine turns into a deny.
//
// A miss (authz.ErrKeyNotFound) is a healthy answer and does not count
// against the circuit.
type BreakerStore struct {
	inner   authz.KeyStore
	circuit *breaker.CircuitBreaker
}

var _ authz.KeyStore = (*BreakerStore)(nil)

// NewBreakerStore wraps inner with the given circuit breaker.
func NewBreakerStore(inner authz.KeyStore, circuit *breaker.CircuitBreaker) *BreakerStore {
	return &BreakerStore{inner: inner, circuit: circuit}
}

// QueryByHash delegates to the wrapped store through the circuit breaker.
func (s *BreakerStore) QueryByHash(ctx context.Context, hash string) (authz.KeyRecord, error) {
	var (
		record    authz.KeyRecord
		lookupErr error
	)
	err := s.circuit.Execute(func() error {
		record, lookupErr = s.inner.QueryByHash(ctx, hash)
		if errors.Is(lookupErr, authz.ErrKeyNotFound) {
			return nil
		}
		return lookupErr
	})
	if errors.Is(err, breaker.ErrCircuitOpen) {
		return authz.KeyRecord{}, fmt.Errorf("%w: %w", authz.ErrStoreLookupFailed, err)
	}
	if lookupErr != nil {
		return authz.KeyRecord{}, lookupErr
	}
	return record, nil
}
