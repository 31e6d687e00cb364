package config

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds a zap logger from Settings.Logging: "level" (debug,
// info, warn, error), "format" (json, console), and a sampling bound
// tuned for a component that logs once per Fit call. The sampling bound
// applies to the json format only; the console format logs every line.
func NewLogger(s Settings) (*zap.Logger, error) {
	level := s.Logging.Level
	format := s.Logging.Format

	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var cfg zap.Config
	switch format {
	case "console":
		cfg = zap.NewDevelopmentConfig()
	case "json", "":
		cfg = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("invalid log format %q: must be \"json\" or \"console\"", format)
	}

	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	initial, thereafter := s.Logging.SampleInitial, s.Logging.SampleThereafter
	if initial <= 0 {
		initial = 100
	}
	if thereafter <= 0 {
		thereafter = 100
	}
	if cfg.Sampling != nil {
		cfg.Sampling.Initial = initial
		cfg.Sampling.Thereafter = thereafter
	}

	return cfg.Build()
}
