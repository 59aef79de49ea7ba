// Package config provides configuration loading, validation and hot-reload
// for cc-gate.
package config

import (
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/samber/mo"

	"github.com/omarluq/cc-gate/internal/breaker"
	"github.com/omarluq/cc-gate/internal/cache"
)

// Log level constants.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// Token-use values a verifier instance may expect. A single deployment
// verifies one or the other, never both.
const (
	TokenUseAccess = "access"
	TokenUseID     = "id"
)

// RuntimeConfig is the interface for accessing configuration that supports
// hot-reload. Components that need to observe policy changes (admin list,
// endpoint lists) use this instead of holding a direct *Config pointer,
// which would go stale after a reload.
type RuntimeConfig interface {
	Get() *Config
}

// Config is the complete cc-gate configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server" toml:"server"`
	Identity IdentityConfig `yaml:"identity" toml:"identity"`
	KeyStore KeyStoreConfig `yaml:"key_store" toml:"key_store"`
	Salt     SaltConfig     `yaml:"salt" toml:"salt"`
	Policy   PolicyConfig   `yaml:"policy" toml:"policy"`
	Cache    CacheConfig    `yaml:"cache" toml:"cache"`
	Breaker  breaker.Config `yaml:"breaker" toml:"breaker"`
	Logging  LoggingConfig  `yaml:"logging" toml:"logging"`
}

// ServerConfig defines server-level settings.
type ServerConfig struct {
	Listen        string `yaml:"listen" toml:"listen"`
	TimeoutMS     int    `yaml:"timeout_ms" toml:"timeout_ms"`
	MaxConcurrent int    `yaml:"max_concurrent" toml:"max_concurrent"`
	EnableHTTP2   bool   `yaml:"enable_http2" toml:"enable_http2"`
}

// GetListen returns the listen address with default fallback.
func (s *ServerConfig) GetListen() string {
	if s.Listen == "" {
		return ":8089"
	}
	return s.Listen
}

// GetTimeoutOption returns the request timeout as a duration Option.
// Returns None if TimeoutMS is zero (use default).
func (s *ServerConfig) GetTimeoutOption() mo.Option[time.Duration] {
	if s.TimeoutMS <= 0 {
		return mo.None[time.Duration]()
	}
	return mo.Some(time.Duration(s.TimeoutMS) * time.Millisecond)
}

// IdentityConfig describes the OIDC identity provider the token path
// verifies against. Fixed per process: changing it requires a restart.
type IdentityConfig struct {
	// Region is the identity provider region (e.g. "us-east-1").
	Region string `yaml:"region" toml:"region"`

	// UserPoolID identifies the user pool that issues tokens.
	UserPoolID string `yaml:"user_pool_id" toml:"user_pool_id"`

	// ClientID is the expected audience (app client id).
	ClientID string `yaml:"client_id" toml:"client_id"`

	// DomainPrefix is the hosted auth domain prefix for the userinfo
	// endpoint. Optional: without it the userinfo resolver is disabled.
	DomainPrefix string `yaml:"domain_prefix" toml:"domain_prefix"`

	// TokenUse is the expected token_use claim: "access" (default) or "id".
	TokenUse string `yaml:"token_use" toml:"token_use"`
}

// GetTokenUse returns the expected token use with default fallback.
func (c *IdentityConfig) GetTokenUse() string {
	if c.TokenUse == "" {
		return TokenUseAccess
	}
	return c.TokenUse
}

// KeyStoreConfig describes the API key store backing the fallback path.
type KeyStoreConfig struct {
	// TableName is the DynamoDB table holding key records. Empty disables
	// the API-key path: key credentials deny (fail closed).
	TableName string `yaml:"table_name" toml:"table_name"`

	// Region overrides the identity region for the store client.
	Region string `yaml:"region" toml:"region"`

	// Endpoint overrides the store endpoint (local development).
	Endpoint string `yaml:"endpoint" toml:"endpoint"`
}

// GetRegion returns the store region, falling back to the given default.
func (c *KeyStoreConfig) GetRegion(fallback string) string {
	if c.Region != "" {
		return c.Region
	}
	return fallback
}

// SaltConfig describes where the API-key hashing salt comes from.
// Changing the salt invalidates every previously issued key's lookup; this
// is an intentional operational hazard, not something cc-gate handles.
type SaltConfig struct {
	// SecretID is the secret reference holding {"salt": "..."} JSON.
	SecretID string `yaml:"secret_id" toml:"secret_id"`

	// Static is a literal salt for development and tests. Takes precedence
	// over SecretID when set.
	Static string `yaml:"static" toml:"static"`
}

// PolicyConfig defines the admin and endpoint gating policy. These fields
// are hot-reloadable: the engine reads them per decision.
type PolicyConfig struct {
	// AdminOnly restricts every endpoint to the admin list.
	AdminOnly bool `yaml:"admin_only" toml:"admin_only"`

	// AdminList is the comma-separated admin allow-list.
	AdminList string `yaml:"admin_list" toml:"admin_list"`

	// NonAdminEndpoints is the comma-separated list of methods non-admins
	// may invoke. Empty (with AdminOnly off) leaves the deployment open to
	// any authenticated caller.
	NonAdminEndpoints string `yaml:"non_admin_endpoints" toml:"non_admin_endpoints"`

	// APIKeyExcludedEndpoints is the comma-separated list of methods that
	// never accept API-key credentials.
	APIKeyExcludedEndpoints string `yaml:"api_key_excluded_endpoints" toml:"api_key_excluded_endpoints"`
}

// splitList splits a comma-separated option into trimmed non-empty entries.
func splitList(value string) []string {
	return lo.FilterMap(strings.Split(value, ","), func(item string, _ int) (string, bool) {
		trimmed := strings.TrimSpace(item)
		return trimmed, trimmed != ""
	})
}

// GetAdminList returns the parsed admin allow-list.
func (p *PolicyConfig) GetAdminList() []string {
	return splitList(p.AdminList)
}

// GetNonAdminEndpoints returns the parsed non-admin endpoint list.
func (p *PolicyConfig) GetNonAdminEndpoints() []string {
	return splitList(p.NonAdminEndpoints)
}

// GetAPIKeyExcludedEndpoints returns the parsed api-key-excluded list.
func (p *PolicyConfig) GetAPIKeyExcludedEndpoints() []string {
	return splitList(p.APIKeyExcludedEndpoints)
}

// CacheConfig wraps the decision cache settings.
type CacheConfig struct {
	cache.Config `yaml:",inline" toml:",inline"`

	// DecisionTTLSeconds bounds how long a cached decision stays valid.
	// Zero falls back to the engine default (300s).
	DecisionTTLSeconds int `yaml:"decision_ttl_seconds" toml:"decision_ttl_seconds"`
}

// GetDecisionTTL returns the decision TTL as a duration Option.
func (c *CacheConfig) GetDecisionTTL() mo.Option[time.Duration] {
	if c.DecisionTTLSeconds <= 0 {
		return mo.None[time.Duration]()
	}
	return mo.Some(time.Duration(c.DecisionTTLSeconds) * time.Second)
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`   // debug, info, warn, error
	Format string `yaml:"format" toml:"format"` // json, console, pretty
	Output string `yaml:"output" toml:"output"` // stdout, stderr, or file path
	Pretty bool   `yaml:"pretty" toml:"pretty"` // force colored console output
}

// ParseLevel converts the configured level to zerolog.Level.
// Returns zerolog.InfoLevel if the level string is invalid.
func (l *LoggingConfig) ParseLevel() zerolog.Level {
	switch strings.ToLower(l.Level) {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelInfo:
		return zerolog.InfoLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
