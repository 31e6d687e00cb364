package main

import (
	"fmt"

	"github.com/spf13/viper"
)

// loadViper reads configuration from file and environment variables:
// explicit -config path first, then a conventional search path, then
// environment overrides, with defaults filled in regardless of
// whether a file is found.
func loadViper(configPath string) (*viper.Viper, error) {
	v := viper.New()

	v.SetDefault("delta", 0.001)
	v.SetDefault("manager.max_streams", 4096)
	v.SetDefault("feed.requests_per_second", 1000.0)
	v.SetDefault("feed.burst", 2000)
	v.SetDefault("event_log_path", "./adwinstream.db")
	v.SetDefault("metrics_addr", ":9090")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.sample_initial", 100)
	v.SetDefault("logging.sample_thereafter", 100)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("adwinstream")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/adwinstream")
	}

	v.SetEnvPrefix("ADWIN")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	return v, nil
}
