package token

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/omarluq/cc-gate/internal/authz"
)

// Expected token_use claim values.
const (
	UseAccess = "access"
	UseID     = "id"
)

// IssuerURL returns the issuer for a user pool.
func IssuerURL(region, userPoolID string) string {
	return fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/%s", region, userPoolID)
}

// JWKSURL returns the JWKS document URL for a user pool.
func JWKSURL(region, userPoolID string) string {
	return IssuerURL(region, userPoolID) + "/.well-known/jwks.json"
}

// VerifierConfig configures a Verifier.
type VerifierConfig struct {
	// Issuer is the expected iss claim.
	Issuer string

	// ClientID is the expected audience. Access tokens carry it in the
	// client_id claim, id tokens in aud.
	ClientID string

	// TokenUse is the expected token_use claim, UseAccess or UseID.
	TokenUse string
}

// Verifier checks bearer token signature and claims against a user pool.
//
// Every rejection collapses to authz.ErrVerificationFailed: callers fall
// through to the API-key path on it, and the precise reason belongs in the
// debug log, not in anything derived from the response.
type Verifier struct {
	keys   KeyProvider
	cfg    VerifierConfig
	parser *jwt.Parser
	log    zerolog.Logger
}

var _ authz.TokenVerifier = (*Verifier)(nil)

// NewVerifier creates a Verifier using keys from the given provider.
func NewVerifier(keys KeyProvider, cfg VerifierConfig, logger zerolog.Logger) *Verifier {
	if cfg.TokenUse == "" {
		cfg.TokenUse = UseAccess
	}
	return &Verifier{
		keys: keys,
		cfg:  cfg,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{"RS256"}),
			jwt.WithIssuer(cfg.Issuer),
			jwt.WithExpirationRequired(),
		),
		log: logger.With().Str("component", "token").Logger(),
	}
}

// Verify parses and validates raw and returns its claims.
func (v *Verifier) Verify(ctx context.Context, raw string) (authz.Claims, error) {
	claims := jwt.MapClaims{}
	_, err := v.parser.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, fmt.Errorf("token has no kid header")
		}
		return v.keys.PublicKey(ctx, kid)
	})
	if err != nil {
		v.log.Debug().Err(err).Msg("token rejected")
		return authz.Claims{}, fmt.Errorf("%w: %w", authz.ErrVerificationFailed, err)
	}

	if err := v.checkUse(claims); err != nil {
		v.log.Debug().Err(err).Msg("token rejected")
		return authz.Claims{}, fmt.Errorf("%w: %w", authz.ErrVerificationFailed, err)
	}
	if err := v.checkAudience(claims); err != nil {
		v.log.Debug().Err(err).Msg("token rejected")
		return authz.Claims{}, fmt.Errorf("%w: %w", authz.ErrVerificationFailed, err)
	}

	return v.toClaims(claims), nil
}

// checkUse validates the token_use claim.
func (v *Verifier) checkUse(claims jwt.MapClaims) error {
	use, _ := claims["token_use"].(string)
	if use != v.cfg.TokenUse {
		return fmt.Errorf("unexpected token_use %q, want %q", use, v.cfg.TokenUse)
	}
	return nil
}

// checkAudience validates the audience. Access tokens carry the app client
// id in client_id; id tokens carry it in aud.
func (v *Verifier) checkAudience(claims jwt.MapClaims) error {
	if v.cfg.TokenUse == UseAccess {
		clientID, _ := claims["client_id"].(string)
		if clientID != v.cfg.ClientID {
			return fmt.Errorf("client_id mismatch")
		}
		return nil
	}

	aud, err := claims.GetAudience()
	if err != nil {
		return fmt.Errorf("read aud: %w", err)
	}
	for _, a := range aud {
		if a == v.cfg.ClientID {
			return nil
		}
	}
	return fmt.Errorf("audience mismatch")
}

// toClaims maps raw claims into the domain shape. Access tokens name the
// user in username, id tokens in cognito:username.
func (v *Verifier) toClaims(claims jwt.MapClaims) authz.Claims {
	usernameClaim := "username"
	if v.cfg.TokenUse == UseID {
		usernameClaim = "cognito:username"
	}

	sub, _ := claims["sub"].(string)
	username, _ := claims[usernameClaim].(string)
	scope, _ := claims["scope"].(string)

	return authz.Claims{
		Subject:  sub,
		Username: username,
		Scope:    scope,
		Raw:      map[string]any(claims),
	}
}
