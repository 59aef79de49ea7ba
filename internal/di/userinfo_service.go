package di

import (
	"github.com/samber/do/v2"

	"github.com/omarluq/cc-gate/internal/authz"
	"github.com/omarluq/cc-gate/internal/breaker"
	"github.com/omarluq/cc-gate/internal/userinfo"
)

// UserInfoService wraps the userinfo resolver. Resolver is nil when no
// hosted auth domain is configured; the engine then falls back to the
// token's own claims.
type UserInfoService struct {
	Resolver authz.UserInfoResolver
}

// NewUserInfo creates the userinfo resolver based on configuration.
func NewUserInfo(i do.Injector) (*UserInfoService, error) {
	cfgSvc := do.MustInvoke[*ConfigService](i)
	identity := cfgSvc.Config.Identity

	if identity.DomainPrefix == "" {
		return &UserInfoService{Resolver: nil}, nil
	}

	loggerSvc := do.MustInvoke[*LoggerService](i)

	resolver := userinfo.NewResolver(
		userinfo.EndpointURL(identity.DomainPrefix, identity.Region),
		*loggerSvc.Logger,
	)
	circuit := breaker.New("userinfo", cfgSvc.Config.Breaker, loggerSvc.Logger)

	return &UserInfoService{Resolver: userinfo.NewBreakerResolver(resolver, circuit)}, nil
}
