package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config maps the full application configuration. Values come from
// configs/config.yaml, overridden by environment variables; defaults
// cover every key so the service runs with no file at all.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Stats       StatsConfig       `mapstructure:"stats"`
	RateLimiter RateLimiterConfig `mapstructure:"rate_limiter"`
	Log         LogConfig         `mapstructure:"log"`
}

// ServerConfig holds the Gin server settings.
type ServerConfig struct {
	Port  int  `mapstructure:"port"`
	Debug bool `mapstructure:"debug"`
}

// DatabaseConfig holds the SQLite settings. TimeoutSeconds bounds every
// storage operation; a hit surfaces as a retryable Unavailable error.
type DatabaseConfig struct {
	Name           string `mapstructure:"name"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// AuthConfig holds session and bootstrap-admin settings.
type AuthConfig struct {
	JWTSecret     string `mapstructure:"jwt_secret"`
	ExpireHours   int    `mapstructure:"expire_hours"`
	AdminEmail    string `mapstructure:"admin_email"`
	AdminUsername string `mapstructure:"admin_username"`
	AdminPassword string `mapstructure:"admin_password"`
}

// StatsConfig holds the aggregator settings.
type StatsConfig struct {
	CacheTTLSeconds int `mapstructure:"cache_ttl_seconds"`
	PopularLimit    int `mapstructure:"popular_limit"`
}

// RateLimiterConfig holds per-IP limiting for the public click endpoint.
type RateLimiterConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxRequests   int  `mapstructure:"max_requests"`
	WindowMinutes int  `mapstructure:"window_minutes"`
}

// LogConfig selects the zap preset.
type LogConfig struct {
	Format string `mapstructure:"format"` // json | console
}

// DBTimeout returns the per-operation storage deadline.
func (c *Config) DBTimeout() time.Duration {
	return time.Duration(c.Database.TimeoutSeconds) * time.Second
}

// Load reads the configuration with Viper. A missing config file is not
// an error: defaults plus environment variables are enough.
func Load() (*Config, error) {
	_ = godotenv.Load()

	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.debug", false)
	viper.SetDefault("database.name", "toolnav.db")
	viper.SetDefault("database.timeout_seconds", 5)
	viper.SetDefault("auth.jwt_secret", "change-me-in-production")
	viper.SetDefault("auth.expire_hours", 24)
	viper.SetDefault("auth.admin_email", "admin@example.com")
	viper.SetDefault("auth.admin_username", "admin")
	viper.SetDefault("auth.admin_password", "admin123")
	viper.SetDefault("stats.cache_ttl_seconds", 30)
	viper.SetDefault("stats.popular_limit", 5)
	viper.SetDefault("rate_limiter.enabled", true)
	viper.SetDefault("rate_limiter.max_requests", 60)
	viper.SetDefault("rate_limiter.window_minutes", 1)
	viper.SetDefault("log.format", "json")

	viper.SetEnvPrefix("TOOLNAV")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return &cfg, nil
}
