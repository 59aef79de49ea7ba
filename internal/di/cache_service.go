package di

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/omarluq/cc-gate/internal/cache"
)

// CacheService wraps the decision cache backend.
type CacheService struct {
	Cache cache.Cache
}

// NewCache creates the cache based on configuration.
func NewCache(i do.Injector) (*CacheService, error) {
	cfgSvc := do.MustInvoke[*ConfigService](i)
	loggerSvc := do.MustInvoke[*LoggerService](i)

	cache.SetLogger(loggerSvc.Logger)

	c, err := cache.New(&cfgSvc.Config.Cache.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}

	return &CacheService{Cache: c}, nil
}

// Shutdown implements do.Shutdowner for graceful cache cleanup.
func (c *CacheService) Shutdown() error {
	if c.Cache != nil {
		return c.Cache.Close()
	}
	return nil
}
