package cache

// Mode selects the cache backend.
type Mode string

// Cache modes.
const (
	// ModeSingle uses the local Ristretto backend.
	ModeSingle Mode = "single"
	// ModeDisabled uses the no-op passthrough backend.
	ModeDisabled Mode = "disabled"
)

// Config holds cache configuration.
type Config struct {
	// Mode selects the backend. Empty defaults to ModeDisabled.
	Mode Mode `yaml:"mode" toml:"mode"`

	// Ristretto holds settings for ModeSingle.
	Ristretto RistrettoConfig `yaml:"ristretto" toml:"ristretto"`
}

// RistrettoConfig holds Ristretto backend settings.
type RistrettoConfig struct {
	// NumCounters is the number of keys to track frequency for.
	// Rule of thumb: 10x the expected number of live keys.
	NumCounters int64 `yaml:"num_counters" toml:"num_counters"`

	// MaxCost is the maximum total cost (bytes) of cached values.
	MaxCost int64 `yaml:"max_cost" toml:"max_cost"`

	// BufferItems is the number of keys per internal Get buffer.
	// Zero defaults to 64.
	BufferItems int64 `yaml:"buffer_items" toml:"buffer_items"`
}

// GetEffectiveMode returns the mode with default fallback.
func (c *Config) GetEffectiveMode() Mode {
	if c.Mode == "" {
		return ModeDisabled
	}
	return c.Mode
}

// Validate checks the configuration for the selected mode.
func (c *Config) Validate() error {
	switch c.GetEffectiveMode() {
	case ModeDisabled:
		return nil
	case ModeSingle:
		if c.Ristretto.NumCounters <= 0 {
			return ErrInvalidNumCounters
		}
		if c.Ristretto.MaxCost <= 0 {
			return ErrInvalidMaxCost
		}
		return nil
	default:
		return ErrInvalidMode
	}
}
