package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config holds all answercache configuration.
type Config struct {
	Listen    string          `yaml:"listen"`
	Cache     CacheConfig     `yaml:"cache"`
	Pricing   PricingConfig   `yaml:"pricing"`
	Latency   LatencyConfig   `yaml:"latency"`
	Analytics AnalyticsConfig `yaml:"analytics"`
	CORS      CORSConfig      `yaml:"cors"`
	Log       LogConfig       `yaml:"log"`
	QueryLog  QueryLogConfig  `yaml:"query_log"`
}

// CacheConfig bounds the answer cache.
type CacheConfig struct {
	MaxSize int           `yaml:"max_size"`
	TTL     time.Duration `yaml:"ttl"`
}

// PricingConfig drives the cost-savings estimate.
type PricingConfig struct {
	CostPerMillionTokens float64 `yaml:"cost_per_million_tokens"`
	AvgTokensPerRequest  int     `yaml:"avg_tokens_per_request"`
}

// LatencyConfig holds the synthetic latencies reported per branch, in ms.
type LatencyConfig struct {
	HitMs  int `yaml:"hit_ms"`
	MissMs int `yaml:"miss_ms"`
}

// AnalyticsConfig controls the analytics report.
type AnalyticsConfig struct {
	SavingsPercent bool `yaml:"savings_percent"`
}

// CORSConfig lists allowed origins. "*" allows any origin.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// LogConfig selects level (debug, info, warn, error) and format (json, console).
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// QueryLogConfig controls the SQLite request journal.
type QueryLogConfig struct {
	Enabled       bool   `yaml:"enabled"`
	DBPath        string `yaml:"db_path"`
	RetentionDays int    `yaml:"retention_days"`
	// IncludeQueries stores the raw query text next to the cache key.
	IncludeQueries bool `yaml:"include_queries"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Listen: ":8000",
		Cache: CacheConfig{
			MaxSize: 5000,
			TTL:     24 * time.Hour,
		},
		Pricing: PricingConfig{
			CostPerMillionTokens: 0.50,
			AvgTokensPerRequest:  500,
		},
		Latency: LatencyConfig{
			HitMs:  45,
			MissMs: 2000,
		},
		Analytics: AnalyticsConfig{
			SavingsPercent: true,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		QueryLog: QueryLogConfig{
			Enabled:       false,
			DBPath:        "answercache.db",
			RetentionDays: 30,
		},
	}
}

// Load reads a YAML config file and expands environment variables.
// A .env file in the working directory, if present, is loaded first.
func Load(path string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads path, or returns Default when path is empty.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		cfg := Default()
		return cfg, cfg.Validate()
	}
	return Load(path)
}

// Validate reports the first setting the cache cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Cache.MaxSize <= 0:
		return fmt.Errorf("%w: cache.max_size must be positive, got %d", ErrInvalid, c.Cache.MaxSize)
	case c.Cache.TTL <= 0:
		return fmt.Errorf("%w: cache.ttl must be positive, got %v", ErrInvalid, c.Cache.TTL)
	case c.Pricing.CostPerMillionTokens < 0:
		return fmt.Errorf("%w: pricing.cost_per_million_tokens must not be negative", ErrInvalid)
	case c.Pricing.AvgTokensPerRequest < 0:
		return fmt.Errorf("%w: pricing.avg_tokens_per_request must not be negative", ErrInvalid)
	case c.Latency.HitMs < 0 || c.Latency.HitMs >= c.Latency.MissMs:
		return fmt.Errorf("%w: latency.hit_ms (%d) must be below latency.miss_ms (%d)", ErrInvalid, c.Latency.HitMs, c.Latency.MissMs)
	case c.QueryLog.Enabled && c.QueryLog.DBPath == "":
		return fmt.Errorf("%w: query_log.db_path is required when the query log is enabled", ErrInvalid)
	}
	return nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}
