// Package config loads runtime configuration for the cache server from the
// environment, modeled on go-server-3/internal/config/config.go.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all runtime configuration for the cache server.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig contains network-level settings for the TCP listener.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// CacheConfig controls the probabilistic expiration engine.
type CacheConfig struct {
	PurgeSample    int           `mapstructure:"purge_sample"`
	PurgeThreshold float64       `mapstructure:"purge_threshold"`
	PurgeFrequency time.Duration `mapstructure:"purge_frequency"`
}

// MetricsConfig controls the Prometheus/health endpoint.
type MetricsConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	ListenAddr string `mapstructure:"listen_addr"`
}

// LoggingConfig controls zap logger level/encoding.
type LoggingConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// Load reads configuration from a .env file (if present) and the
// environment. PORT is bound bare so the server honors the common
// single-value convention; every other knob is read under the ODIN_ prefix,
// e.g. ODIN_CACHE_PURGE_SAMPLE.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 7878)

	v.SetDefault("cache.purge_sample", 20)
	v.SetDefault("cache.purge_threshold", 0.25)
	v.SetDefault("cache.purge_frequency", 1*time.Second)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.listen_addr", ":9090")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.development", false)

	v.SetEnvPrefix("ODIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("server.port", "PORT")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config unmarshal: %w", err)
	}

	if cfg.Cache.PurgeSample <= 0 {
		cfg.Cache.PurgeSample = 20
	}
	if cfg.Cache.PurgeThreshold <= 0 {
		cfg.Cache.PurgeThreshold = 0.25
	}
	if cfg.Cache.PurgeFrequency <= 0 {
		cfg.Cache.PurgeFrequency = 1 * time.Second
	}

	return cfg, nil
}
