package adwin

import "go.uber.org/zap"

// Config holds the tunables for a single AdaptiveMean engine: a flat
// struct of tunables with a DefaultConfig constructor, consumed either
// directly or unmarshaled from a Settings file by the caller.
type Config struct {
	// Delta is the target false-positive rate of the change test,
	// δ ∈ (0, 1). Smaller values make the detector more conservative
	// (fewer, larger drift events); larger values make it more
	// sensitive (more, smaller drift events).
	Delta float64 `mapstructure:"delta"`

	// Logger receives structured Debug/Info records on every Fit.
	// Optional; defaults to a no-op logger.
	Logger *zap.Logger `mapstructure:"-"`

	// Metrics receives Prometheus instrumentation updates on every
	// Fit. Optional; nil disables instrumentation entirely.
	Metrics *Metrics `mapstructure:"-"`
}

// DefaultConfig returns a Config with delta 0.001 and no logger or
// metrics attached.
func DefaultConfig() Config {
	return Config{Delta: 0.001}
}

// Validate rejects configurations the change detector cannot run with.
func (c Config) Validate() error {
	if c.Delta <= 0 || c.Delta >= 1 {
		return ErrInvalidDelta
	}
	return nil
}
