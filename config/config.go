// Package config loads the settings a host process uses to build the
// metadata cache.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	cache "github.com/krisalay/metadata-cache"
	"github.com/krisalay/metadata-cache/stats"
	"github.com/krisalay/metadata-cache/types"
)

// EnvPrefix is prepended to every environment variable, e.g. METACACHE_SHARDS.
const EnvPrefix = "METACACHE"

// ErrInvalidConfig is wrapped by every Validate error.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the cache and host settings read by Load.
type Config struct {
	Shards         int           `mapstructure:"shards"`
	LatencyWindow  int           `mapstructure:"latency_window"`
	SweepInterval  time.Duration `mapstructure:"sweep_interval"`
	ReportInterval time.Duration `mapstructure:"report_interval"`

	LogLevel string `mapstructure:"log_level"`

	// MetricsAddr, when set, is where the host serves /metrics.
	MetricsAddr      string `mapstructure:"metrics_addr"`
	MetricsNamespace string `mapstructure:"metrics_namespace"`
}

// Defaults returns the configuration used when nothing is overridden.
func Defaults() Config {
	return Config{
		Shards:           cache.DefaultShards,
		LatencyWindow:    stats.DefaultWindow,
		SweepInterval:    cache.DefaultSweepInterval,
		ReportInterval:   cache.DefaultReportInterval,
		LogLevel:         "info",
		MetricsNamespace: "metacache",
	}
}

/*
Load reads the configuration.

Precedence, lowest first:
 1. Defaults()
 2. the config file at path (any format viper understands), if path is not empty
 3. METACACHE_* environment variables, including those from a local .env file
*/
func Load(path string) (*Config, error) {
	// .env is only for local development
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}

	v := viper.New()

	d := Defaults()
	v.SetDefault("shards", d.Shards)
	v.SetDefault("latency_window", d.LatencyWindow)
	v.SetDefault("sweep_interval", d.SweepInterval)
	v.SetDefault("report_interval", d.ReportInterval)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("metrics_addr", d.MetricsAddr)
	v.SetDefault("metrics_namespace", d.MetricsNamespace)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Shards < 1 {
		return fmt.Errorf("%w: shards must be positive, got %d", ErrInvalidConfig, c.Shards)
	}
	if c.LatencyWindow < 1 {
		return fmt.Errorf("%w: latency_window must be positive, got %d", ErrInvalidConfig, c.LatencyWindow)
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("%w: sweep_interval must be positive, got %v", ErrInvalidConfig, c.SweepInterval)
	}
	if c.ReportInterval <= 0 {
		return fmt.Errorf("%w: report_interval must be positive, got %v", ErrInvalidConfig, c.ReportInterval)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// SlogLevel returns the configured log level, Info if it cannot be parsed.
func (c *Config) SlogLevel() slog.Level {
	l, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return l
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log_level %q: %w", s, err)
	}
	return l, nil
}

// CacheOptions turns the configuration into cache options.
// sink may be nil.
func (c *Config) CacheOptions(logger *slog.Logger, sink types.Metrics) []cache.Option {
	opts := []cache.Option{
		cache.WithShards(c.Shards),
		cache.WithLatencyWindow(c.LatencyWindow),
		cache.WithSweepInterval(c.SweepInterval),
		cache.WithReportInterval(c.ReportInterval),
		cache.WithLogger(logger),
	}
	if sink != nil {
		opts = append(opts, cache.WithMetrics(sink))
	}
	return opts
}

// String implements fmt.Stringer.
func (c *Config) String() string {
	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  Shards: %d\n", c.Shards))
	sb.WriteString(fmt.Sprintf("  LatencyWindow: %d\n", c.LatencyWindow))
	sb.WriteString(fmt.Sprintf("  SweepInterval: %s\n", c.SweepInterval))
	sb.WriteString(fmt.Sprintf("  ReportInterval: %s\n", c.ReportInterval))
	sb.WriteString(fmt.Sprintf("  LogLevel: %s\n", c.LogLevel))
	if c.MetricsAddr != "" {
		sb.WriteString(fmt.Sprintf("  MetricsAddr: %s\n", c.MetricsAddr))
	} else {
		sb.WriteString("  MetricsAddr: (disabled)\n")
	}
	sb.WriteString(fmt.Sprintf("  MetricsNamespace: %s\n", c.MetricsNamespace))
	return sb.String()
}
