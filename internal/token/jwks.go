// Package token verifies OIDC bearer tokens for the primary credential path.
package token

import (
	"context"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
)

// KeyProvider resolves a signing key by key id.
type KeyProvider interface {
	// PublicKey returns the raw public key (e.g. *rsa.PublicKey) for the
	// given key id.
	PublicKey(ctx context.Context, kid string) (any, error)
}

// JWKSProvider fetches the issuer's JWKS document and serves keys from a
// refreshing cache. Rotated keys show up on the next background refresh;
// an unknown kid is a verification failure, not a forced refetch, so a
// flood of garbage tokens cannot turn into a flood of JWKS fetches.
type JWKSProvider struct {
	cache *jwk.Cache
	url   string
}

var _ KeyProvider = (*JWKSProvider)(nil)

// NewJWKSProvider creates a provider for the given JWKS URL. The ctx bounds
// the lifetime of the background refresher.
func NewJWKSProvider(ctx context.Context, url string) (*JWKSProvider, error) {
	cache := jwk.NewCache(ctx)
	if err := cache.Register(url, jwk.WithMinRefreshInterval(15*time.Minute)); err != nil {
		return nil, fmt.Errorf("register jwks url: %w", err)
	}
	return &JWKSProvider{cache: cache, url: url}, nil
}

// PublicKey returns the raw public key for kid from the cached key set.
func (p *JWKSProvider) PublicKey(ctx context.Context, kid string) (any, error) {
	set, err := p.cache.Get(ctx, p.url)
	if err != nil {
		return nil, fmt.Errorf("fetch jwks: %w", err)
	}

	key, ok := set.LookupKeyID(kid)
	if !ok {
		return nil, fmt.Errorf("unknown signing key %q", kid)
	}

	var raw any
	if err := key.Raw(&raw); err != nil {
		return nil, fmt.Errorf("materialize signing key %q: %w", kid, err)
	}
	return raw, nil
}

// StaticKeyProvider serves keys from a fixed jwk.Set. Used in tests.
type StaticKeyProvider struct {
	set jwk.Set
}

var _ KeyProvider = (*StaticKeyProvider)(nil)

// NewStaticKeyProvider creates a provider over the given set.
func NewStaticKeyProvider(set jwk.Set) *StaticKeyProvider {
	return &StaticKeyProvider{set: set}
}

// PublicKey returns the raw key for kid from the fixed set.
func (p *StaticKeyProvider) PublicKey(_ context.Context, kid string) (any, error) {
	key, ok := p.set.LookupKeyID(kid)
	if !ok {
		return nil, fmt.Errorf("unknown signing key %q", kid)
	}
	var raw any
	if err := key.Raw(&raw); err != nil {
		return nil, fmt.Errorf("materialize signing key %q: %w", kid, err)
	}
	return raw, nil
}
