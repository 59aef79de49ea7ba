// Package authz implements the authorization decision engine that gates
// every inbound call to the gateway. A request carries either an OIDC/JWT
// bearer token or a long-lived API key in a single Authorization value; the
// engine tries the token path first and falls back to the salted-hash
// API-key lookup, producing exactly one Allow/Deny decision per request.
//
// The engine is fail-closed: every fault anywhere in the chain, including
// panics, converts to a Deny. The only condition allowed to escape as a hard
// fault is configuration validation at process start.
package authz

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/mo"
)

// adminScope is the identity-provider scope whose presence lets the engine
// take the username directly from the claims instead of calling the
// userinfo endpoint.
const adminScope = "aws.cognito.signin.user.admin"

// GateProvider returns the current endpoint/admin policy. Indirection keeps
// the engine hot-reload safe: each decision reads the latest Gate.
type GateProvider func() *Gate

// Engine orchestrates credential extraction, the token verification path,
// the API-key fallback path and the endpoint/admin gate. It holds no
// cross-request mutable state; invocations run fully in parallel.
type Engine struct {
	verifier TokenVerifier
	store    KeyStore
	hasher   CredentialHasher
	resolver UserInfoResolver
	gate     GateProvider
	cache    *DecisionCache
	now      func() time.Time
}

// Option configures optional Engine collaborators.
type Option func(*Engine)

// WithUserInfoResolver attaches the out-of-band userinfo resolver used for
// admin-list checks when the token claims carry no usable username.
func WithUserInfoResolver(resolver UserInfoResolver) Option {
	return func(e *Engine) { e.resolver = resolver }
}

// WithDecisionCache enables per-(credential, method) decision memoization.
func WithDecisionCache(cache *DecisionCache) Option {
	return func(e *Engine) { e.cache = cache }
}

// WithClock overrides the wall clock used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine builds a decision engine. verifier, store, hasher and gate are
// required; a nil gate provider defaults to an open gate.
func NewEngine(verifier TokenVerifier, store KeyStore, hasher CredentialHasher, gate GateProvider, opts ...Option) *Engine {
	e := &Engine{
		verifier: verifier,
		store:    store,
		hasher:   hasher,
		gate:     gate,
		now:      time.Now,
	}
	if e.gate == nil {
		open := NewGate(false, nil, nil, nil)
		e.gate = func() *Gate { return open }
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Authorize produces the decision for one request. It never returns an
// error and never panics: any fault escaping the chain is converted to the
// coarse deny-all decision at this boundary, since an escaping fault in
// this position risks being interpreted as "allow" by a permissive gateway
// default.
func (e *Engine) Authorize(ctx context.Context, event *Event) (decision Decision) {
	logger := zerolog.Ctx(ctx)

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("authorization panicked, denying")
			decision = DenyAllDecision()
		}
	}()

	cred, err := ExtractCredential(event)
	if err != nil {
		logger.Warn().Str("reason", denyReason(err)).Msg("access denied")
		return DenyAllDecision()
	}

	var cacheKey string
	if e.cache != nil {
		cacheKey = e.cache.Key(cred.Raw, event.MethodARN)
		if cached, ok := e.cache.Get(ctx, cacheKey); ok {
			logger.Debug().
				Bool("allowed", cached.Allowed()).
				Msg("decision served from cache")
			return cached
		}
	}

	decision = e.decide(ctx, event.MethodARN, cred)

	if e.cache != nil {
		e.cache.Put(ctx, cacheKey, decision)
	}
	return decision
}

// AuthorizeResult is the Result-typed variant of Authorize for
// Railway-Oriented call sites: Deny decisions become an Err carrying the
// same coarse decision semantics.
func (e *Engine) AuthorizeResult(ctx context.Context, event *Event) mo.Result[Decision] {
	decision := e.Authorize(ctx, event)
	if decision.Allowed() {
		return mo.Ok(decision)
	}
	return mo.Err[Decision](ErrEndpointExcluded)
}

// decide runs the two-path chain: token verification first, API-key hash
// lookup second. Token success always wins and short-circuits.
func (e *Engine) decide(ctx context.Context, method string, cred Credential) Decision {
	logger := zerolog.Ctx(ctx)

	if looksLikeJWT(cred.Raw) {
		claims, err := e.verifier.Verify(ctx, cred.Raw)
		if err == nil {
			return e.decideToken(ctx, method, cred, claims)
		}
		// Verification failure is not terminal: fall through to the
		// API-key path. Sub-reasons are logged here only.
		logger.Debug().
			Str("reason", denyReason(ErrVerificationFailed)).
			Msg("token path failed, trying api key path")
	}

	cred.Kind = KindAPIKey
	return e.decideAPIKey(ctx, method, cred)
}

// decideToken finishes the token path: resolve a username when the gate
// needs one, then apply the gate.
func (e *Engine) decideToken(ctx context.Context, method string, cred Credential, claims Claims) Decision {
	logger := zerolog.Ctx(ctx)
	gate := e.gate()

	username, err := e.resolveUsername(ctx, cred.Raw, claims, gate)
	if err != nil {
		logger.Warn().Str("reason", "userinfo_failed").Msg("access denied")
		return DenyAllDecision()
	}

	if err := gate.Check(method, username, false); err != nil {
		logger.Warn().
			Str("reason", denyReason(err)).
			Str("principal", claims.Subject).
			Msg("access denied")
		return DenyAllDecision()
	}

	logger.Info().
		Str("path", string(KindBearer)).
		Str("principal", claims.Subject).
		Msg("access granted")
	return AllowDecision(claims.Subject, method, username)
}

// decideAPIKey runs the fallback path: salted hash, store lookup, expiry
// check, gate. Any store fault converts to Deny; the fallback path never
// lets an infrastructure fault produce anything other than a denial.
func (e *Engine) decideAPIKey(ctx context.Context, method string, cred Credential) Decision {
	logger := zerolog.Ctx(ctx)

	hash := e.hasher.Hash(ctx, cred.Raw)

	record, err := e.store.QueryByHash(ctx, hash)
	if err != nil {
		logger.Warn().Str("reason", denyReason(err)).Msg("access denied")
		return DenyAllDecision()
	}

	if expiry, ok := record.ExpiresAt.Get(); ok {
		expiresAt := time.Unix(0, int64(expiry*float64(time.Second)))
		if expiresAt.Before(e.now()) {
			logger.Warn().
				Str("reason", denyReason(ErrKeyExpired)).
				Str("key_name", record.KeyName).
				Msg("access denied")
			return DenyAllDecision()
		}
	}

	if err := e.gate().Check(method, record.Owner, true); err != nil {
		logger.Warn().
			Str("reason", denyReason(err)).
			Str("principal", record.Owner).
			Msg("access denied")
		return DenyAllDecision()
	}

	logger.Info().
		Str("path", string(KindAPIKey)).
		Str("principal", record.Owner).
		Str("key_name", record.KeyName).
		Msg("access granted")
	return AllowDecision(record.Owner, method, record.Owner)
}

// resolveUsername picks the username for gating. Tokens scoped for direct
// user administration carry the username in their claims; otherwise the
// userinfo endpoint is consulted, but only when the gate actually depends
// on usernames.
func (e *Engine) resolveUsername(ctx context.Context, raw string, claims Claims, gate *Gate) (string, error) {
	if claims.HasScope(adminScope) && claims.Username != "" {
		return claims.Username, nil
	}

	if !gate.NeedsUsername() || e.resolver == nil {
		if claims.Username != "" {
			return claims.Username, nil
		}
		return claims.Subject, nil
	}

	return e.resolver.Resolve(ctx, raw)
}
