package di

import "github.com/samber/do/v2"

// RegisterSingletons registers all service providers as singletons.
// Services are registered in dependency order:
// 1. Config (no dependencies)
// 2. Logger (depends on Config)
// 3. Cache (depends on Config, Logger)
// 4. AWS client config (depends on Config)
// 5. Salt (depends on Config, AWS, Logger)
// 6. KeyStore (depends on Config, AWS, Logger)
// 7. Verifier (depends on Config, Logger)
// 8. UserInfo (depends on Config, Logger)
// 9. Engine (depends on Verifier, KeyStore, Salt, UserInfo, Cache, Config)
// 10. Concurrency (depends on Config) - global request limiter
// 11. Handler (depends on Engine, Concurrency)
// 12. Server (depends on Handler, Config).
func RegisterSingletons(i do.Injector) {
	do.Provide(i, NewConfig)
	do.Provide(i, NewLogger)
	do.Provide(i, NewCache)
	do.Provide(i, NewAWS)
	do.Provide(i, NewSalt)
	do.Provide(i, NewKeyStore)
	do.Provide(i, NewVerifier)
	do.Provide(i, NewUserInfo)
	do.Provide(i, NewEngine)
	do.Provide(i, NewConcurrencyService)
	do.Provide(i, NewAuthorizeHandler)
	do.Provide(i, NewHTTPServer)
}
