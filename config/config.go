package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/samalsubrat/mk-price-tracker/internal/domain"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Feeds      FeedsConfig      `mapstructure:"feeds"`
	Catalog    CatalogConfig    `mapstructure:"catalog"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Breaker    BreakerConfig    `mapstructure:"breaker"`
	Similarity SimilarityConfig `mapstructure:"similarity"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port" validate:"required,numeric"`
	Environment    string   `mapstructure:"environment" validate:"required"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	APIKey         string   `mapstructure:"api_key"`
}

// FeedsConfig holds the vendor feed settings
type FeedsConfig struct {
	BaseURL           string         `mapstructure:"base_url" validate:"required,url"`
	Timeout           time.Duration  `mapstructure:"timeout" validate:"gt=0"`
	SourceTimeout     time.Duration  `mapstructure:"source_timeout" validate:"gt=0"`
	RefreshTimeout    time.Duration  `mapstructure:"refresh_timeout" validate:"gt=0"`
	RequestsPerSecond float64        `mapstructure:"requests_per_second" validate:"gt=0"`
	Burst             int            `mapstructure:"burst" validate:"min=1"`
	MaxRetries        int            `mapstructure:"max_retries" validate:"min=0,max=10"`
	Sources           []SourceConfig `mapstructure:"sources" validate:"min=1,dive"`
}

// SourceConfig names one vendor feed
type SourceConfig struct {
	Name string `mapstructure:"name" validate:"required"`
	Path string `mapstructure:"path" validate:"required"`
}

// CatalogConfig holds the canonicalization tables
type CatalogConfig struct {
	Version     int                 `mapstructure:"version" validate:"min=0"`
	NoiseTokens []domain.NoiseToken `mapstructure:"noise_tokens" validate:"dive"`
	VendorNames map[string]string   `mapstructure:"vendor_names"`
}

// StorageConfig holds the SQLite settings
type StorageConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type     string        `mapstructure:"type" validate:"oneof=memory redis"`
	RedisURL string        `mapstructure:"redis_url" validate:"required_if=Type redis"`
	TTL      time.Duration `mapstructure:"ttl" validate:"gt=0"`
}

// BreakerConfig holds the per-source circuit breaker settings
type BreakerConfig struct {
	MaxRequests      uint32        `mapstructure:"max_requests" validate:"min=1"`
	Interval         time.Duration `mapstructure:"interval"`
	Timeout          time.Duration `mapstructure:"timeout" validate:"gt=0"`
	FailureThreshold float64       `mapstructure:"failure_threshold" validate:"gt=0,lte=1"`
	MinRequests      uint32        `mapstructure:"min_requests" validate:"min=1"`
}

// SimilarityConfig holds near-duplicate detection settings
type SimilarityConfig struct {
	Threshold      float64 `mapstructure:"threshold" validate:"gt=0,lte=1"`
	MaxLengthDelta int     `mapstructure:"max_length_delta" validate:"min=0"`
}

// NoiseTable returns the configured canonicalization noise table
func (c CatalogConfig) NoiseTable() domain.NoiseTable {
	return domain.NoiseTable{Version: c.Version, Tokens: c.NoiseTokens}
}

// VendorTable returns the configured vendor display names
func (c CatalogConfig) VendorTable() domain.VendorTable {
	return domain.VendorTable(c.VendorNames)
}

// IsProduction reports whether the server runs in production mode
func (c ServerConfig) IsProduction() bool {
	return c.Environment == "production"
}

// defaultSources are the vendor scrape endpoints served by the feed host
var defaultSources = []string{
	"ctrlshift",
	"curiousity",
	"genesis",
	"loadout",
	"meckeys",
	"neomacro",
	"stacks",
	"thockshop",
}

// Load loads configuration from a .env file, environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/mkprice/")

	// Environment variable settings
	v.SetEnvPrefix("MKPRICE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	applyCatalogDefaults(&config.Catalog)

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads .env from the working directory if present.
// Variables already set in the environment win.
func loadEnvFile() error {
	err := godotenv.Load()
	if err != nil && errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.api_key", "")

	// Feed defaults
	v.SetDefault("feeds.base_url", "http://localhost:3000")
	v.SetDefault("feeds.timeout", "30s")
	v.SetDefault("feeds.source_timeout", "2m")
	v.SetDefault("feeds.refresh_timeout", "5m")
	v.SetDefault("feeds.requests_per_second", 1.0)
	v.SetDefault("feeds.burst", 1)
	v.SetDefault("feeds.max_retries", 3)

	sources := make([]map[string]interface{}, 0, len(defaultSources))
	for _, name := range defaultSources {
		sources = append(sources, map[string]interface{}{
			"name": name,
			"path": "/api/" + name + "-scrape",
		})
	}
	v.SetDefault("feeds.sources", sources)

	// Catalog defaults; token and vendor tables fall back to the built-in ones
	v.SetDefault("catalog.version", 0)

	// Storage defaults
	v.SetDefault("storage.path", "./data/mkprice.db")

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", "24h")

	// Breaker defaults
	v.SetDefault("breaker.max_requests", 1)
	v.SetDefault("breaker.interval", "10m")
	v.SetDefault("breaker.timeout", "5m")
	v.SetDefault("breaker.failure_threshold", 0.6)
	v.SetDefault("breaker.min_requests", 3)

	// Similarity defaults
	v.SetDefault("similarity.threshold", 0.92)
	v.SetDefault("similarity.max_length_delta", 4)
}

// applyCatalogDefaults fills the noise and vendor tables when none are configured
func applyCatalogDefaults(c *CatalogConfig) {
	if len(c.NoiseTokens) == 0 {
		table := domain.DefaultNoiseTable()
		c.NoiseTokens = table.Tokens
		if c.Version == 0 {
			c.Version = table.Version
		}
	}
	if len(c.VendorNames) == 0 {
		c.VendorNames = domain.DefaultVendorTable()
	}
}

var structValidator = validator.New(validator.WithRequiredStructEnabled())

// validate validates the configuration
func validate(config *Config) error {
	if err := structValidator.Struct(config); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("%s failed on '%s' (got %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return err
	}

	if config.Server.IsProduction() && config.Server.APIKey == "" {
		return fmt.Errorf("API key is required in production (set MKPRICE_SERVER_API_KEY)")
	}

	if config.Catalog.Version == 0 {
		return fmt.Errorf("catalog version is required when noise tokens are configured (set catalog.version)")
	}

	seen := make(map[string]bool, len(config.Feeds.Sources))
	for _, source := range config.Feeds.Sources {
		name := strings.ToLower(source.Name)
		if seen[name] {
			return fmt.Errorf("duplicate feed source %q", source.Name)
		}
		seen[name] = true
	}

	return nil
}
