package userinfo

import (
	"context"

	"github.com/omarluq/cc-gate/internal/authz"
	"github.com/omarluq/cc-gate/internal/breaker"
)

// BreakerResolver wraps a resolver with a circuit breaker. While the
// circuit is open every resolve fails fast, which the engine turns into a
// deny for requests that need a resolved username.
type BreakerResolver struct {
	inner   authz.UserInfoResolver
	circuit *breaker.CircuitBreaker
}

var _ authz.UserInfoResolver = (*BreakerResolver)(nil)

// NewBreakerResolver wraps inner with the given circuit breaker.
func NewBreakerResolver(inner authz.UserInfoResolver, circuit *breaker.CircuitBreaker) *BreakerResolver {
	return &BreakerResolver{inner: inner, circuit: circuit}
}

// Resolve delegates to the wrapped resolver through the circuit breaker.
func (r *BreakerResolver) Resolve(ctx context.Context, rawToken string) (string, error) {
	var username string
	err := r.circuit.Execute(func() error {
		var innerErr error
		username, innerErr = r.inner.Resolve(ctx, rawToken)
		return innerErr
	})
	if err != nil {
		return "", err
	}
	return username, nil
}
