package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Catalog   CatalogConfig
	Expansion ExpansionConfig
	Cache     CacheConfig
	Matching  MatchingConfig
	RateLimit RateLimitConfig
	Delivery  map[string]DeliveryConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Environment     string        `mapstructure:"environment"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "console"
	File   string `mapstructure:"file"`
}

// CatalogConfig selects and configures the product catalog provider
type CatalogConfig struct {
	Provider      string        `mapstructure:"provider"` // "http" or "postgres"
	BaseURL       string        `mapstructure:"base_url"`
	APIKey        string        `mapstructure:"api_key"`
	RatePerSecond float64       `mapstructure:"rate_per_second"`
	Burst         int           `mapstructure:"burst"`
	Timeout       time.Duration `mapstructure:"timeout"`
	MaxAttempts   int           `mapstructure:"max_attempts"`
	DSN           string        `mapstructure:"dsn"`
	MaxConns      int32         `mapstructure:"max_conns"`
	EnsureSchema  bool          `mapstructure:"ensure_schema"`
}

// ExpansionConfig selects the alternate search term provider
type ExpansionConfig struct {
	Provider string       `mapstructure:"provider"` // "none", "synonyms" or "gemini"
	Gemini   GeminiConfig `mapstructure:"gemini"`
}

// GeminiConfig holds Gemini API configuration
type GeminiConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type     string        `mapstructure:"type"` // "memory", "redis" or "none"
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// MatchingConfig holds the matching and basket tuning knobs
type MatchingConfig struct {
	PrimaryLimit       int     `mapstructure:"primary_limit"`
	AlternateLimit     int     `mapstructure:"alternate_limit"`
	MinSuppliers       int     `mapstructure:"min_suppliers"`
	MaxAlternates      int     `mapstructure:"max_alternates"`
	BatchSize          int     `mapstructure:"batch_size"`
	MaxItems           int     `mapstructure:"max_items"`
	CoverageFloor      float64 `mapstructure:"coverage_floor"`
	EnableDebugLogging bool    `mapstructure:"debug"`
}

// RateLimitConfig holds API rate limiting configuration
type RateLimitConfig struct {
	PerIP float64 `mapstructure:"per_ip"` // requests per second, 0 disables
	Burst int     `mapstructure:"burst"`
}

// DeliveryConfig overrides the delivery tiers of one supplier
type DeliveryConfig struct {
	ClickCollect string `mapstructure:"click_collect"`
	Standard     string `mapstructure:"standard"`
	NextDay      string `mapstructure:"next_day"`
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Environment, "production")
}

// LoadEnvFile loads variables from a local .env file into the process environment.
// A missing file is not an error and existing variables are never overridden.
func LoadEnvFile() error {
	if err := godotenv.Load(".env"); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("error loading .env file: %w", err)
	}
	return nil
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/materials-compare/")

	// Environment variable settings, e.g. MATCOMP_CATALOG_API_KEY
	v.SetEnvPrefix("MATCOMP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values.
// Every key needs a default so AutomaticEnv can bind it during Unmarshal.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.request_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "15s")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.file", "")

	// Catalog defaults
	v.SetDefault("catalog.provider", "http")
	v.SetDefault("catalog.base_url", "")
	v.SetDefault("catalog.api_key", "")
	v.SetDefault("catalog.rate_per_second", 10)
	v.SetDefault("catalog.burst", 20)
	v.SetDefault("catalog.timeout", "10s")
	v.SetDefault("catalog.max_attempts", 1)
	v.SetDefault("catalog.dsn", "")
	v.SetDefault("catalog.max_conns", 10)
	v.SetDefault("catalog.ensure_schema", false)

	// Expansion defaults
	v.SetDefault("expansion.provider", "synonyms")
	v.SetDefault("expansion.gemini.api_key", "")
	v.SetDefault("expansion.gemini.model", "gemini-2.0-flash")
	v.SetDefault("expansion.gemini.base_url", "https://generativelanguage.googleapis.com")
	v.SetDefault("expansion.gemini.timeout", "8s")

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", "6h")

	// Matching defaults
	v.SetDefault("matching.primary_limit", 30)
	v.SetDefault("matching.alternate_limit", 15)
	v.SetDefault("matching.min_suppliers", 3)
	v.SetDefault("matching.max_alternates", 3)
	v.SetDefault("matching.batch_size", 5)
	v.SetDefault("matching.max_items", 50)
	v.SetDefault("matching.coverage_floor", 0.5)
	v.SetDefault("matching.debug", false)

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 5)
	v.SetDefault("ratelimit.burst", 10)
}

// validate validates the configuration
func validate(config *Config) error {
	switch config.Catalog.Provider {
	case "http":
		if config.Catalog.BaseURL == "" {
			return fmt.Errorf("catalog base URL is required (set MATCOMP_CATALOG_BASE_URL)")
		}
		if config.Catalog.APIKey == "" {
			return fmt.Errorf("catalog API key is required (set MATCOMP_CATALOG_API_KEY)")
		}
	case "postgres":
		if config.Catalog.DSN == "" {
			return fmt.Errorf("catalog DSN is required when provider is 'postgres' (set MATCOMP_CATALOG_DSN)")
		}
	default:
		return fmt.Errorf("catalog provider must be 'http' or 'postgres', got: %s", config.Catalog.Provider)
	}

	switch config.Expansion.Provider {
	case "none", "synonyms":
	case "gemini":
		if config.Expansion.Gemini.APIKey == "" {
			return fmt.Errorf("gemini API key is required when expansion provider is 'gemini' (set MATCOMP_EXPANSION_GEMINI_API_KEY)")
		}
	default:
		return fmt.Errorf("expansion provider must be 'none', 'synonyms' or 'gemini', got: %s", config.Expansion.Provider)
	}

	switch config.Cache.Type {
	case "memory", "none":
	case "redis":
		if config.Cache.RedisURL == "" {
			return fmt.Errorf("Redis URL is required when cache type is 'redis'")
		}
	default:
		return fmt.Errorf("cache type must be 'memory', 'redis' or 'none', got: %s", config.Cache.Type)
	}

	if config.Log.Format != "json" && config.Log.Format != "console" {
		return fmt.Errorf("log format must be 'json' or 'console', got: %s", config.Log.Format)
	}

	m := config.Matching
	if m.CoverageFloor <= 0 || m.CoverageFloor > 1 {
		return fmt.Errorf("matching coverage floor must be in (0, 1], got: %v", m.CoverageFloor)
	}
	if m.PrimaryLimit < 1 || m.AlternateLimit < 1 || m.MinSuppliers < 1 || m.MaxAlternates < 1 {
		return fmt.Errorf("matching limits and supplier floor must be positive")
	}
	if m.BatchSize < 1 || m.MaxItems < 1 {
		return fmt.Errorf("matching batch size and max items must be positive")
	}

	if config.RateLimit.PerIP < 0 {
		return fmt.Errorf("rate limit per IP must not be negative, got: %v", config.RateLimit.PerIP)
	}

	return nil
}
