package di

import (
	"github.com/samber/do/v2"

	"github.com/omarluq/cc-gate/internal/authz"
)

// EngineService wraps the authorization engine.
type EngineService struct {
	Engine *authz.Engine
}

// NewEngine assembles the authorization engine from its ports.
// The gate is rebuilt from the live config on every decision, so policy
// edits (admin list, endpoint lists) take effect on hot-reload without
// restarting.
func NewEngine(i do.Injector) (*EngineService, error) {
	cfgSvc := do.MustInvoke[*ConfigService](i)
	verifierSvc := do.MustInvoke[*VerifierService](i)
	storeSvc := do.MustInvoke[*KeyStoreService](i)
	saltSvc := do.MustInvoke[*SaltService](i)
	userInfoSvc := do.MustInvoke[*UserInfoService](i)
	cacheSvc := do.MustInvoke[*CacheService](i)

	gate := func() *authz.Gate {
		cfg := cfgSvc.Get()
		return authz.NewGate(
			cfg.Policy.AdminOnly,
			cfg.Policy.GetAdminList(),
			cfg.Policy.GetNonAdminEndpoints(),
			cfg.Policy.GetAPIKeyExcludedEndpoints(),
		)
	}

	opts := []authz.Option{
		authz.WithDecisionCache(authz.NewDecisionCache(
			cacheSvc.Cache,
			cfgSvc.Config.Cache.GetDecisionTTL().OrElse(authz.DefaultDecisionTTL),
		)),
	}
	if userInfoSvc.Resolver != nil {
		opts = append(opts, authz.WithUserInfoResolver(userInfoSvc.Resolver))
	}

	engine := authz.NewEngine(
		verifierSvc.Verifier,
		storeSvc.Store,
		saltSvc.Hasher,
		gate,
		opts...,
	)

	return &EngineService{Engine: engine}, nil
}
