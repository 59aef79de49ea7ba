package di

import (
	"context"
	"fmt"

	"github.com/samber/do/v2"

	"github.com/omarluq/cc-gate/internal/token"
)

// VerifierService wraps the bearer token verifier. It owns the JWKS
// refresher's lifetime.
type VerifierService struct {
	Verifier *token.Verifier
	cancel   context.CancelFunc
}

// NewVerifier creates the token verifier with a refreshing JWKS cache.
func NewVerifier(i do.Injector) (*VerifierService, error) {
	cfgSvc := do.MustInvoke[*ConfigService](i)
	loggerSvc := do.MustInvoke[*LoggerService](i)
	identity := cfgSvc.Config.Identity

	ctx, cancel := context.WithCancel(context.Background())

	keys, err := token.NewJWKSProvider(ctx, token.JWKSURL(identity.Region, identity.UserPoolID))
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create JWKS provider: %w", err)
	}

	verifier := token.NewVerifier(keys, token.VerifierConfig{
		Issuer:   token.IssuerURL(identity.Region, identity.UserPoolID),
		ClientID: identity.ClientID,
		TokenUse: identity.GetTokenUse(),
	}, *loggerSvc.Logger)

	return &VerifierService{Verifier: verifier, cancel: cancel}, nil
}

// Shutdown implements do.Shutdowner, stopping the JWKS refresher.
func (s *VerifierService) Shutdown() error {
	if s.cancel != nil {
		s.cancel()
	}
	return nil
}
