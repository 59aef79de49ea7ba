package authz

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/samber/mo"

	"github.com/omarluq/cc-gate/internal/cache"
)

// fakeVerifier returns fixed claims or a fixed error and counts calls.
type fakeVerifier struct {
	claims Claims
	err    error
	calls  int
}

func (v *fakeVerifier) Verify(_ context.Context, _ string) (Claims, error) {
	v.calls++
	if v.err != nil {
		return Claims{}, v.err
	}
	return v.claims, nil
}

// panicVerifier simulates a broken verifier implementation.
type panicVerifier struct{}

func (panicVerifier) Verify(context.Context, string) (Claims, error) {
	panic("verifier exploded")
}

// fakeStore serves a single record keyed by hash and counts calls.
type fakeStore struct {
	records map[string]KeyRecord
	err     error
	calls   int
}

func (s *fakeStore) QueryByHash(_ context.Context, hash string) (KeyRecord, error) {
	s.calls++
	if s.err != nil {
		return KeyRecord{}, s.err
	}
	record, ok := s.records[hash]
	if !ok {
		return KeyRecord{}, ErrKeyNotFound
	}
	return record, nil
}

// staticHasher prefixes the key so hashes are predictable in tests.
type staticHasher struct{}

func (staticHasher) Hash(_ context.Context, key string) string {
	return "hash:" + key
}

// fakeResolver returns a fixed username or error and counts calls.
type fakeResolver struct {
	username string
	err      error
	calls    int
}

func (r *fakeResolver) Resolve(context.Context, string) (string, error) {
	r.calls++
	return r.username, r.err
}

// mapCache is an always-synchronous cache.Cache for decision cache tests.
type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMapCache() *mapCache {
	return &mapCache{data: make(map[string][]byte)}
}

func (c *mapCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return nil, cache.ErrNotFound
	}
	return v, nil
}

func (c *mapCache) Set(_ context.Context, key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *mapCache) SetWithTTL(_ context.Context, key string, value []byte, _ time.Duration) error {
	return c.Set(context.Background(), key, value)
}

func (c *mapCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *mapCache) Close() error { return nil }

func (c *mapCache) keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.data))
	for k := range c.data {
		out = append(out, k)
	}
	return out
}

const testMethod = "arn:aws:execute-api:us-east-1:123:api/prod/POST/v1/messages"

func restEvent(authValue string) *Event {
	return &Event{
		MethodARN: testMethod,
		Headers:   map[string]string{"Authorization": authValue},
	}
}

func openGate() GateProvider {
	gate := NewGate(false, nil, nil, nil)
	return func() *Gate { return gate }
}

func gateOf(g *Gate) GateProvider {
	return func() *Gate { return g }
}

func TestAuthorize_TokenAllow(t *testing.T) {
	t.Parallel()

	verifier := &fakeVerifier{claims: Claims{Subject: "u123", Username: "alice"}}
	engine := NewEngine(verifier, &fakeStore{}, staticHasher{}, openGate())

	decision := engine.Authorize(context.Background(), restEvent("Bearer h.p.s"))

	if !decision.Allowed() {
		t.Fatal("expected allow")
	}
	if decision.PrincipalID != "u123" {
		t.Errorf("PrincipalID = %q, want u123", decision.PrincipalID)
	}
	if decision.Context["userId"] != "u123" {
		t.Errorf("context userId = %q, want u123", decision.Context["userId"])
	}
	if decision.Context["username"] != "alice" {
		t.Errorf("context username = %q, want alice", decision.Context["username"])
	}
	if decision.PolicyDocument.Statement[0].Resource != testMethod {
		t.Errorf("Resource = %q, want the method ARN", decision.PolicyDocument.Statement[0].Resource)
	}
}

func TestAuthorize_TokenPathWinsOverKeyPath(t *testing.T) {
	t.Parallel()

	// The same credential value also exists as a stored API key; the token
	// path must win and the store must never be consulted.
	verifier := &fakeVerifier{claims: Claims{Subject: "u123"}}
	store := &fakeStore{records: map[string]KeyRecord{
		"hash:h.p.s": {Owner: "impostor", ValueHash: "hash:h.p.s"},
	}}
	engine := NewEngine(verifier, store, staticHasher{}, openGate())

	decision := engine.Authorize(context.Background(), restEvent("Bearer h.p.s"))

	if decision.PrincipalID != "u123" {
		t.Errorf("PrincipalID = %q, want the token subject", decision.PrincipalID)
	}
	if store.calls != 0 {
		t.Errorf("store consulted %d times on a successful token path", store.calls)
	}
}

func TestAuthorize_NonJWTSkipsVerifier(t *testing.T) {
	t.Parallel()

	verifier := &fakeVerifier{err: ErrVerificationFailed}
	store := &fakeStore{records: map[string]KeyRecord{
		"hash:sk-live-xyz": {Owner: "bob", KeyName: "default", ValueHash: "hash:sk-live-xyz"},
	}}
	engine := NewEngine(verifier, store, staticHasher{}, openGate())

	decision := engine.Authorize(context.Background(), restEvent("Bearer sk-live-xyz"))

	if !decision.Allowed() {
		t.Fatal("expected allow via key path")
	}
	if verifier.calls != 0 {
		t.Errorf("verifier called %d times for a non-JWT credential", verifier.calls)
	}
	if decision.PrincipalID != "bob" {
		t.Errorf("PrincipalID = %q, want bob", decision.PrincipalID)
	}
	if decision.Context["username"] != "bob" {
		t.Errorf("context username = %q, want bob", decision.Context["username"])
	}
}

func TestAuthorize_JWTShapedCredentialFallsBack(t *testing.T) {
	t.Parallel()

	// A credential that parses as a JWT but fails verification still gets
	// the key-path attempt.
	verifier := &fakeVerifier{err: ErrVerificationFailed}
	store := &fakeStore{records: map[string]KeyRecord{
		"hash:a.b.c": {Owner: "bob", ValueHash: "hash:a.b.c"},
	}}
	engine := NewEngine(verifier, store, staticHasher{}, openGate())

	decision := engine.Authorize(context.Background(), restEvent("Bearer a.b.c"))

	if !decision.Allowed() {
		t.Fatal("expected allow via key fallback")
	}
	if verifier.calls != 1 {
		t.Errorf("verifier calls = %d, want 1", verifier.calls)
	}
}

func TestAuthorize_KeyExpiry(t *testing.T) {
	t.Parallel()

	const expiry = 1_700_000_000.0

	tests := []struct {
		name      string
		now       time.Time
		wantAllow bool
	}{
		{"one second before expiry", time.Unix(1_699_999_999, 0), true},
		{"exactly at expiry", time.Unix(1_700_000_000, 0), true},
		{"one second after expiry", time.Unix(1_700_000_001, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := &fakeStore{records: map[string]KeyRecord{
				"hash:sk-k": {Owner: "bob", ExpiresAt: mo.Some(expiry), ValueHash: "hash:sk-k"},
			}}
			engine := NewEngine(&fakeVerifier{err: ErrVerificationFailed}, store, staticHasher{}, openGate(),
				WithClock(func() time.Time { return tt.now }))

			decision := engine.Authorize(context.Background(), restEvent("Bearer sk-k"))
			if decision.Allowed() != tt.wantAllow {
				t.Errorf("Allowed() = %v, want %v", decision.Allowed(), tt.wantAllow)
			}
		})
	}
}

func TestAuthorize_KeyWithoutExpiryNeverExpires(t *testing.T) {
	t.Parallel()

	store := &fakeStore{records: map[string]KeyRecord{
		"hash:sk-k": {Owner: "bob", ValueHash: "hash:sk-k"},
	}}
	farFuture := time.Unix(4_000_000_000, 0)
	engine := NewEngine(&fakeVerifier{err: ErrVerificationFailed}, store, staticHasher{}, openGate(),
		WithClock(func() time.Time { return farFuture }))

	if !engine.Authorize(context.Background(), restEvent("Bearer sk-k")).Allowed() {
		t.Error("key without expiry should not expire")
	}
}

func TestAuthorize_FailClosed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		engine *Engine
		event  *Event
	}{
		{
			name:   "store fault",
			engine: NewEngine(&fakeVerifier{err: ErrVerificationFailed}, &fakeStore{err: fmt.Errorf("%w: timeout", ErrStoreLookupFailed)}, staticHasher{}, openGate()),
			event:  restEvent("Bearer sk-x"),
		},
		{
			name:   "key not found",
			engine: NewEngine(&fakeVerifier{err: ErrVerificationFailed}, &fakeStore{}, staticHasher{}, openGate()),
			event:  restEvent("Bearer sk-x"),
		},
		{
			name:   "panicking verifier",
			engine: NewEngine(panicVerifier{}, &fakeStore{}, staticHasher{}, openGate()),
			event:  restEvent("Bearer h.p.s"),
		},
		{
			name:   "missing header",
			engine: NewEngine(&fakeVerifier{}, &fakeStore{}, staticHasher{}, openGate()),
			event:  &Event{MethodARN: testMethod},
		},
		{
			name:   "malformed header",
			engine: NewEngine(&fakeVerifier{}, &fakeStore{}, staticHasher{}, openGate()),
			event:  restEvent("Token abc"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			decision := tt.engine.Authorize(context.Background(), tt.event)
			if decision.Allowed() {
				t.Fatal("expected deny")
			}
			if decision.PrincipalID != "*" {
				t.Errorf("deny PrincipalID = %q, want *", decision.PrincipalID)
			}
		})
	}
}

func TestAuthorize_AdminOnlyGating(t *testing.T) {
	t.Parallel()

	gate := NewGate(true, []string{"alice"}, nil, nil)

	aliceVerifier := &fakeVerifier{claims: Claims{Subject: "u1", Username: "alice"}}
	engine := NewEngine(aliceVerifier, &fakeStore{}, staticHasher{}, gateOf(gate))
	if !engine.Authorize(context.Background(), restEvent("Bearer h.p.s")).Allowed() {
		t.Error("alice (admin) should be allowed")
	}

	bobVerifier := &fakeVerifier{claims: Claims{Subject: "u2", Username: "bob"}}
	engine = NewEngine(bobVerifier, &fakeStore{}, staticHasher{}, gateOf(gate))
	if engine.Authorize(context.Background(), restEvent("Bearer h.p.s")).Allowed() {
		t.Error("bob (non-admin) should be denied under admin-only")
	}
}

func TestAuthorize_AdminScopeSkipsResolver(t *testing.T) {
	t.Parallel()

	resolver := &fakeResolver{err: fmt.Errorf("userinfo down")}
	verifier := &fakeVerifier{claims: Claims{
		Subject:  "u1",
		Username: "carol",
		Scope:    "openid aws.cognito.signin.user.admin",
	}}
	gate := NewGate(false, []string{"carol"}, []string{"other"}, nil)
	engine := NewEngine(verifier, &fakeStore{}, staticHasher{}, gateOf(gate),
		WithUserInfoResolver(resolver))

	decision := engine.Authorize(context.Background(), restEvent("Bearer h.p.s"))

	if !decision.Allowed() {
		t.Fatal("admin-scoped token should be allowed without userinfo")
	}
	if resolver.calls != 0 {
		t.Errorf("resolver consulted %d times despite admin scope", resolver.calls)
	}
}

func TestAuthorize_UserInfoResolution(t *testing.T) {
	t.Parallel()

	gate := NewGate(false, []string{"alice"}, []string{"other"}, nil)

	t.Run("resolved admin allowed", func(t *testing.T) {
		t.Parallel()

		resolver := &fakeResolver{username: "alice"}
		verifier := &fakeVerifier{claims: Claims{Subject: "u1"}}
		engine := NewEngine(verifier, &fakeStore{}, staticHasher{}, gateOf(gate),
			WithUserInfoResolver(resolver))

		decision := engine.Authorize(context.Background(), restEvent("Bearer h.p.s"))
		if !decision.Allowed() {
			t.Fatal("resolved admin should be allowed")
		}
		if resolver.calls != 1 {
			t.Errorf("resolver calls = %d, want 1", resolver.calls)
		}
		if decision.Context["username"] != "alice" {
			t.Errorf("context username = %q, want alice", decision.Context["username"])
		}
	})

	t.Run("resolver failure denies", func(t *testing.T) {
		t.Parallel()

		resolver := &fakeResolver{err: fmt.Errorf("userinfo down")}
		verifier := &fakeVerifier{claims: Claims{Subject: "u1"}}
		engine := NewEngine(verifier, &fakeStore{}, staticHasher{}, gateOf(gate),
			WithUserInfoResolver(resolver))

		if engine.Authorize(context.Background(), restEvent("Bearer h.p.s")).Allowed() {
			t.Error("resolver failure must deny, not guess")
		}
	})
}

func TestAuthorize_APIKeyExcludedEndpoint(t *testing.T) {
	t.Parallel()

	gate := NewGate(false, nil, nil, []string{testMethod})
	store := &fakeStore{records: map[string]KeyRecord{
		"hash:sk-k": {Owner: "bob", ValueHash: "hash:sk-k"},
	}}
	engine := NewEngine(&fakeVerifier{err: ErrVerificationFailed}, store, staticHasher{}, gateOf(gate))

	if engine.Authorize(context.Background(), restEvent("Bearer sk-k")).Allowed() {
		t.Error("api key must be rejected on an excluded endpoint")
	}
}

func TestAuthorize_Idempotent(t *testing.T) {
	t.Parallel()

	verifier := &fakeVerifier{claims: Claims{Subject: "u1", Username: "alice"}}
	engine := NewEngine(verifier, &fakeStore{}, staticHasher{}, openGate())
	event := restEvent("Bearer h.p.s")

	first := engine.Authorize(context.Background(), event)
	second := engine.Authorize(context.Background(), event)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated authorization diverged:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestAuthorize_DecisionCache(t *testing.T) {
	t.Parallel()

	backend := newMapCache()
	verifier := &fakeVerifier{claims: Claims{Subject: "u1"}}
	engine := NewEngine(verifier, &fakeStore{}, staticHasher{}, openGate(),
		WithDecisionCache(NewDecisionCache(backend, time.Minute)))
	event := restEvent("Bearer h.p.s")

	first := engine.Authorize(context.Background(), event)
	second := engine.Authorize(context.Background(), event)

	if verifier.calls != 1 {
		t.Errorf("verifier calls = %d, want 1 (second call cached)", verifier.calls)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("cached decision diverged from original")
	}

	// The raw credential must never appear in a cache key.
	for _, key := range backend.keys() {
		if len(key) == 0 {
			t.Error("empty cache key")
		}
		if strings.Contains(key, "h.p.s") {
			t.Errorf("cache key %q leaks the raw credential", key)
		}
	}
}

func TestAuthorizeResult(t *testing.T) {
	t.Parallel()

	verifier := &fakeVerifier{claims: Claims{Subject: "u1"}}
	engine := NewEngine(verifier, &fakeStore{}, staticHasher{}, openGate())

	if engine.AuthorizeResult(context.Background(), restEvent("Bearer h.p.s")).IsError() {
		t.Error("allow should map to Ok")
	}
	if !engine.AuthorizeResult(context.Background(), restEvent("garbage")).IsError() {
		t.Error("deny should map to Err")
	}
}
