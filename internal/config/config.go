// Package config loads application settings from a Viper instance and
// constructs the zap logger used throughout the adwinstream demo binary.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Settings holds everything the demo binary and the supporting internal
// packages need at startup, unmarshaled from a single Viper instance.
type Settings struct {
	// Delta is the change detector's target false-positive rate,
	// forwarded to adwin.Config.
	Delta float64 `mapstructure:"delta"`

	// Manager bounds the number of concurrently tracked streams.
	Manager ManagerSettings `mapstructure:"manager"`

	// Feed configures the per-stream ingestion rate limiter.
	Feed FeedSettings `mapstructure:"feed"`

	// EventLogPath is the SQLite file the drift audit log is written to.
	// An empty string disables the audit log entirely.
	EventLogPath string `mapstructure:"event_log_path"`

	// MetricsAddr is the listen address for the /metrics and /healthz
	// HTTP endpoints.
	MetricsAddr string `mapstructure:"metrics_addr"`

	// Logging configures the zap logger shared by every component.
	Logging LoggingSettings `mapstructure:"logging"`
}

// LoggingSettings configures the zap logger NewLogger builds.
type LoggingSettings struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`

	// SampleInitial and SampleThereafter bound how many identical
	// log lines at the same level and message NewLogger emits per
	// second before falling back to logging only every
	// SampleThereafter-th occurrence. adwin.Fit logs once per sample,
	// so a single hot stream ingesting thousands of samples per second
	// would otherwise flood the sink with near-duplicate "adwin fit"
	// lines. They take effect for the json format only.
	SampleInitial    int `mapstructure:"sample_initial"`
	SampleThereafter int `mapstructure:"sample_thereafter"`
}

// ManagerSettings bounds the adwinmgr.Manager's LRU of live streams.
type ManagerSettings struct {
	MaxStreams int `mapstructure:"max_streams"`
}

// FeedSettings configures the adwinfeed.Limiter's token bucket.
type FeedSettings struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// DefaultSettings sets delta to 0.001 and supplies conservative ambient
// defaults for the rest.
func DefaultSettings() Settings {
	return Settings{
		Delta: 0.001,
		Manager: ManagerSettings{
			MaxStreams: 4096,
		},
		Feed: FeedSettings{
			RequestsPerSecond: 1000,
			Burst:             2000,
		},
		MetricsAddr: ":9090",
		Logging: LoggingSettings{
			Level:            "info",
			Format:           "json",
			SampleInitial:    100,
			SampleThereafter: 100,
		},
	}
}

// LoadSettings unmarshals Settings from v, filling in DefaultSettings for
// anything v doesn't set, then validates the result.
func LoadSettings(v *viper.Viper) (Settings, error) {
	settings := DefaultSettings()
	if v == nil {
		v = viper.New()
	}
	if err := v.Unmarshal(&settings); err != nil {
		return Settings{}, fmt.Errorf("unmarshal settings: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

// Validate enforces the constraints the demo binary needs to start
// safely, beyond what adwin.Config.Validate already checks for Delta.
func (s Settings) Validate() error {
	if s.Delta <= 0 || s.Delta >= 1 {
		return fmt.Errorf("config: delta must be in (0, 1), got %v", s.Delta)
	}
	if s.Manager.MaxStreams <= 0 {
		return fmt.Errorf("config: manager.max_streams must be positive, got %d", s.Manager.MaxStreams)
	}
	if s.Feed.RequestsPerSecond <= 0 {
		return fmt.Errorf("config: feed.requests_per_second must be positive, got %v", s.Feed.RequestsPerSecond)
	}
	if s.Feed.Burst <= 0 {
		return fmt.Errorf("config: feed.burst must be positive, got %d", s.Feed.Burst)
	}
	if s.Logging.SampleInitial < 0 {
		return fmt.Errorf("config: logging.sample_initial must be non-negative, got %d", s.Logging.SampleInitial)
	}
	if s.Logging.SampleThereafter < 0 {
		return fmt.Errorf("config: logging.sample_thereafter must be non-negative, got %d", s.Logging.SampleThereafter)
	}
	return nil
}
