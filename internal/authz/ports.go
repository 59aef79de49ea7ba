package authz

import (
	"context"
	"strings"

	"github.com/samber/mo"
)

// Claims is the payload of a successfully verified bearer token. Created
// fresh per request by the token verifier, consumed immediately, never
// persisted.
type Claims struct {
	// Subject is the stable user identifier ("sub" claim).
	Subject string
	// Username is the username claim when the token carries one directly.
	Username string
	// Scope is the space-separated OAuth scope string.
	Scope string
	// Raw is the full claim set for downstream inspection.
	Raw map[string]any
}

// HasScope reports whether the space-separated scope string contains scope.
func (c Claims) HasScope(scope string) bool {
	for _, s := range strings.Fields(c.Scope) {
		if s == scope {
			return true
		}
	}
	return false
}

// KeyRecord is the metadata attached to a stored API key. Records are
// created by a separate key-management component and are read-only here.
type KeyRecord struct {
	// Owner is the username the key was issued to.
	Owner string
	// KeyName is the per-owner key label. Owner+KeyName is unique per owner.
	KeyName string
	// ValueHash is the salted SHA-256 digest of the raw key value. It is the
	// system-wide unique lookup index.
	ValueHash string
	// ExpiresAt is the optional expiry as fractional seconds since epoch.
	// Absent means the key never expires.
	ExpiresAt mo.Option[float64]
}

// TokenVerifier validates a bearer token's signature, issuer, audience and
// token-use claim against the identity provider. Any verification miss is
// reported as ErrVerificationFailed; infrastructure faults may surface as
// other errors but are treated identically by the engine (fail closed).
type TokenVerifier interface {
	Verify(ctx context.Context, raw string) (Claims, error)
}

// KeyStore looks up an API key record by its salted value hash. Returns
// ErrKeyNotFound when no record matches and ErrStoreLookupFailed (wrapped)
// on infrastructure faults.
type KeyStore interface {
	QueryByHash(ctx context.Context, hash string) (KeyRecord, error)
}

// CredentialHasher produces the salted digest used as the key store index.
type CredentialHasher interface {
	Hash(ctx context.Context, key string) string
}

// UserInfoResolver exchanges a valid bearer token for the authenticated
// username via the identity provider's userinfo endpoint. Optional: the
// engine only consults it when admin gating needs a username the claims
// do not carry directly.
type UserInfoResolver interface {
	Resolve(ctx context.Context, raw string) (string, error)
}
