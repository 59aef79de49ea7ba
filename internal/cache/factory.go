package cache

import "fmt"

// New creates a Cache from the configuration. Returns an error if the
// configuration is invalid or the backend fails to initialize.
func New(cfg *Config) (Cache, error) {
	log := logger().With().Str("component", "cache_factory").Logger()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	mode := cfg.GetEffectiveMode()
	switch mode {
	case ModeSingle:
		return newRistrettoCache(cfg.Ristretto)
	case ModeDisabled:
		log.Debug().Msg("decision caching disabled")
		return newNoopCache(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
}
