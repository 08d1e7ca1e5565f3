package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// DefaultSessionSecret is the fallback signing secret. Running production
// with it defeats the point of signed sessions, so Load warns loudly.
const DefaultSessionSecret = "default-secret-change-in-production"

// Config holds top-level application configuration groups.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Upstream UpstreamConfig `mapstructure:"upstream"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// ServerConfig defines basic runtime context of the service.
type ServerConfig struct {
	Addr        string `mapstructure:"addr"`
	Environment string `mapstructure:"environment"`
}

// AuthConfig carries the analyst credentials and session signing settings.
// Password may be plaintext or an argon2id encoded hash.
type AuthConfig struct {
	Username      string        `mapstructure:"username"`
	Password      string        `mapstructure:"password"`
	SessionSecret string        `mapstructure:"session_secret"`
	SessionMaxAge time.Duration `mapstructure:"session_max_age"`
}

// UpstreamConfig groups settings for the threat-intelligence provider.
type UpstreamConfig struct {
	TokenURL     string        `mapstructure:"token_url"`
	BaseURL      string        `mapstructure:"base_url"`
	ClientID     string        `mapstructure:"client_id"`
	ClientSecret string        `mapstructure:"client_secret"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// CacheConfig controls the per-incident extraction result cache.
type CacheConfig struct {
	ExtractionTTL     time.Duration `mapstructure:"extraction_ttl"`
	ExtractionMaxSize int           `mapstructure:"extraction_max_size"`
}

// DatabaseConfig holds the optional Postgres connection for the durable
// extraction store. Empty URL means in-memory only.
type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// LoggingConfig controls application logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // "info", "debug", etc.
	Format string `mapstructure:"format"` // "json" or "text"
}

// MetricsConfig defines settings for metrics exposure.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from files and environment variables.
func Load() (*Config, error) {
	setDefaults()

	viper.SetEnvPrefix("IQW")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// The deployment has always used these unprefixed names; keep honoring
	// them alongside the IQW_* forms.
	bindAliases()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("/etc/incident-query")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		logrus.Info("No config file found, using defaults and environment variables")
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.Auth.SessionSecret == DefaultSessionSecret && cfg.IsProduction() {
		logrus.Warn("Using default session secret in production - please set SESSION_SECRET")
	}

	return &cfg, nil
}

func bindAliases() {
	viper.BindEnv("auth.username", "IQW_AUTH_USERNAME", "AUTH_USERNAME")
	viper.BindEnv("auth.password", "IQW_AUTH_PASSWORD", "AUTH_PASSWORD")
	viper.BindEnv("auth.session_secret", "IQW_AUTH_SESSION_SECRET", "SESSION_SECRET")
	viper.BindEnv("upstream.client_id", "IQW_UPSTREAM_CLIENT_ID", "PHISHLABS_CLIENT_ID")
	viper.BindEnv("upstream.client_secret", "IQW_UPSTREAM_CLIENT_SECRET", "PHISHLABS_CLIENT_SECRET")
	viper.BindEnv("database.url", "IQW_DATABASE_URL", "DATABASE_URL")
}

// setDefaults establishes default values for configuration.
func setDefaults() {
	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("server.environment", "development")

	viper.SetDefault("auth.session_secret", DefaultSessionSecret)
	viper.SetDefault("auth.session_max_age", "24h")

	viper.SetDefault("upstream.token_url", "https://login.phishlabs.com/connect/token")
	viper.SetDefault("upstream.base_url", "https://threatintel.phishlabs.com/api/external")
	viper.SetDefault("upstream.timeout", "30s")

	viper.SetDefault("cache.extraction_ttl", "15m")
	viper.SetDefault("cache.extraction_max_size", 256)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")

	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.path", "/metrics")
}

// Validate ensures critical configuration values are present.
func (c *Config) Validate() error {
	if c.Upstream.TokenURL == "" {
		return fmt.Errorf("upstream token URL cannot be empty")
	}
	if c.Upstream.BaseURL == "" {
		return fmt.Errorf("upstream base URL cannot be empty")
	}
	if c.Auth.SessionMaxAge <= 0 {
		return fmt.Errorf("session max age must be positive")
	}
	if c.Cache.ExtractionMaxSize < 0 {
		return fmt.Errorf("extraction cache size cannot be negative")
	}
	return nil
}

// IsDevelopment returns true when running in development mode.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Server.Environment, "development")
}

// IsProduction returns true when running in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Environment, "production")
}
