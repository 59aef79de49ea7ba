// Package salt provides the API-key hashing salt and the salted hasher.
//
// The salt lives in a secret store entry holding {"salt": "..."} JSON. It is
// fetched once per process and cached, including a failed fetch: a process
// that cannot reach the secret store hashes with an empty salt, which can
// never match a stored hash, so every API-key lookup misses and the request
// denies. That is the intended fail-closed behavior.
package salt

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

// Provider supplies the hashing salt. Implementations must be safe for
// concurrent use and must never return an error: a missing salt degrades to
// the empty string, which fails closed at lookup time.
type Provider interface {
	Salt(ctx context.Context) string
}

// SecretsAPI is the subset of the Secrets Manager client the provider needs.
type SecretsAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// SecretsProvider fetches the salt from Secrets Manager and caches it for
// the life of the process. The outcome of the first fetch sticks, success
// or failure, so a transient secret store outage does not turn into a
// per-request fetch storm.
type SecretsProvider struct {
	client   SecretsAPI
	secretID string
	log      zerolog.Logger

	mu      sync.Mutex
	fetched bool
	salt    string
}

var _ Provider = (*SecretsProvider)(nil)

// NewSecretsProvider creates a provider reading the given secret.
func NewSecretsProvider(client SecretsAPI, secretID string, logger zerolog.Logger) *SecretsProvider {
	return &SecretsProvider{
		client:   client,
		secretID: secretID,
		log:      logger.With().Str("component", "salt").Logger(),
	}
}

// Salt returns the cached salt, fetching it on first use.
func (p *SecretsProvider) Salt(ctx context.Context) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.fetched {
		return p.salt
	}
	p.fetched = true

	out, err := p.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: &p.secretID,
	})
	if err != nil {
		p.log.Warn().Err(err).Msg("salt fetch failed, hashing with empty salt until restart")
		return p.salt
	}

	secret := ""
	if out.SecretString != nil {
		secret = *out.SecretString
	}

	value := gjson.Get(secret, "salt")
	if !value.Exists() {
		p.log.Warn().Msg("secret is missing salt field, hashing with empty salt until restart")
		return p.salt
	}

	p.salt = value.String()
	p.log.Debug().Msg("salt loaded")
	return p.salt
}

// Invalidate drops the cached fetch outcome so the next Salt call fetches
// again. Used by tests.
func (p *SecretsProvider) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fetched = false
	p.salt = ""
}

// StaticProvider returns a fixed salt. Used for development and tests.
type StaticProvider string

var _ Provider = StaticProvider("")

// Salt returns the fixed salt.
func (p StaticProvider) Salt(context.Context) string {
	return string(p)
}

// Hasher derives the stored lookup hash for an API key:
// hex(sha256(salt + key)).
type Hasher struct {
	provider Provider
}

// NewHasher creates a Hasher backed by the given salt provider.
func NewHasher(provider Provider) *Hasher {
	return &Hasher{provider: provider}
}

// Hash returns the hex-encoded salted SHA-256 digest of the key.
func (h *Hasher) Hash(ctx context.Context, key string) string {
	sum := sha256.Sum256([]byte(h.provider.Salt(ctx) + key))
	return hex.EncodeToString(sum[:])
}
