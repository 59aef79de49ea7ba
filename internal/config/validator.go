package config

import (
	"net"
	"strings"
)

// Valid token_use values.
var validTokenUses = map[string]bool{
	"":             true, // Empty defaults to access
	TokenUseAccess: true,
	TokenUseID:     true,
}

// Valid logging levels.
var validLogLevels = map[string]bool{
	"":         true, // Empty defaults to info
	LevelDebug: true,
	LevelInfo:  true,
	LevelWarn:  true,
	LevelError: true,
}

// Valid logging formats.
var validLogFormats = map[string]bool{
	"":        true, // Empty defaults to json
	"json":    true,
	"console": true,
	"text":    true, // Alias for console
	"pretty":  true,
}

// Validate checks the configuration for errors.
// It validates all required fields, valid values, and cross-field constraints.
// Returns a ValidationError containing all errors found, or nil if valid.
func (c *Config) Validate() error {
	errs := &ValidationError{}

	validateServer(c, errs)
	validateIdentity(c, errs)
	validateSalt(c, errs)
	validateCache(c, errs)
	validateLogging(c, errs)

	return errs.ToError()
}

// validateServer validates the server configuration section.
func validateServer(c *Config, errs *ValidationError) {
	if c.Server.Listen != "" {
		validateListenAddress(c.Server.Listen, errs)
	}

	if c.Server.TimeoutMS < 0 {
		errs.Add("server.timeout_ms must be >= 0")
	}

	if c.Server.MaxConcurrent < 0 {
		errs.Add("server.max_concurrent must be >= 0")
	}
}

// validateListenAddress validates a listen address in host:port format.
func validateListenAddress(addr string, errs *ValidationError) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		errs.Addf("server.listen must be in host:port format (got %q)", addr)
		return
	}

	// Host can be empty (listen on all interfaces) or a valid IP/hostname
	if host != "" {
		if ip := net.ParseIP(host); ip == nil {
			if strings.ContainsAny(host, " \t\n") {
				errs.Add("server.listen host contains invalid characters")
			}
		}
	}

	// Port must be present (SplitHostPort doesn't validate this)
	if port == "" {
		errs.Add("server.listen port is required")
	}
}

// validateIdentity validates the identity provider section. Region, user
// pool and client id are all required: without them no token can ever
// verify and every bearer request would silently deny.
func validateIdentity(c *Config, errs *ValidationError) {
	if c.Identity.Region == "" {
		errs.Add("identity.region is required")
	}
	if c.Identity.UserPoolID == "" {
		errs.Add("identity.user_pool_id is required")
	}
	if c.Identity.ClientID == "" {
		errs.Add("identity.client_id is required")
	}
	if !validTokenUses[c.Identity.TokenUse] {
		errs.Addf("identity.token_use is invalid (got %q, valid: access, id)",
			c.Identity.TokenUse)
	}
}

// validateSalt validates the salt section. A key store without a salt
// source can never match a hash, so require one when the store is enabled.
func validateSalt(c *Config, errs *ValidationError) {
	if c.KeyStore.TableName != "" && c.Salt.SecretID == "" && c.Salt.Static == "" {
		errs.Add("salt.secret_id or salt.static is required when key_store.table_name is set")
	}
}

// validateCache validates the cache section.
func validateCache(c *Config, errs *ValidationError) {
	if c.Cache.DecisionTTLSeconds < 0 {
		errs.Add("cache.decision_ttl_seconds must be >= 0")
	}
	if err := c.Cache.Config.Validate(); err != nil {
		errs.Add(err.Error())
	}
}

// validateLogging validates the logging configuration section.
func validateLogging(c *Config, errs *ValidationError) {
	if !validLogLevels[c.Logging.Level] {
		errs.Addf("logging.level is invalid (got %q, valid: debug, info, warn, error)",
			c.Logging.Level)
	}

	if !validLogFormats[c.Logging.Format] {
		errs.Addf("logging.format is invalid (got %q, valid: json, console, text, pretty)",
			c.Logging.Format)
	}
}
