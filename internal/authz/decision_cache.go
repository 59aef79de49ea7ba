package authz

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/omarluq/cc-gate/internal/cache"
)

// DefaultDecisionTTL bounds how long a cached decision stays valid. It also
// bounds how long a revoked credential keeps working, so keep it short.
const DefaultDecisionTTL = 5 * time.Minute

// DecisionCache memoizes full decisions per (credential, method) pair so
// repeated calls with the same credential skip verification and store
// lookups. Cache keys are derived from a digest of the credential; the raw
// value never enters the cache.
type DecisionCache struct {
	backend cache.Cache
	ttl     time.Duration
}

// NewDecisionCache wraps a cache backend with decision serialization.
// A non-positive ttl falls back to DefaultDecisionTTL.
func NewDecisionCache(backend cache.Cache, ttl time.Duration) *DecisionCache {
	if ttl <= 0 {
		ttl = DefaultDecisionTTL
	}
	return &DecisionCache{backend: backend, ttl: ttl}
}

// Key derives the cache key for a credential and method. Both decisions
// for the same credential on different methods are cached independently.
func (c *DecisionCache) Key(rawCredential, method string) string {
	sum := sha256.Sum256([]byte(rawCredential))
	return "decision:" + hex.EncodeToString(sum[:]) + ":" + method
}

// Get returns a previously cached decision, if any.
func (c *DecisionCache) Get(ctx context.Context, key string) (Decision, bool) {
	data, err := c.backend.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			zerolog.Ctx(ctx).Debug().Err(err).Msg("decision cache read failed")
		}
		return Decision{}, false
	}

	var decision Decision
	if err := json.Unmarshal(data, &decision); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("corrupt decision cache entry, ignoring")
		return Decision{}, false
	}
	return decision, true
}

// Put stores a decision. Cache write failures are logged and otherwise
// ignored: the cache is an optimization, never a correctness dependency.
func (c *DecisionCache) Put(ctx context.Context, key string, decision Decision) {
	data, err := json.Marshal(decision)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to encode decision for cache")
		return
	}
	if err := c.backend.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Msg("decision cache write failed")
	}
}
