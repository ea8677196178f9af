// Package config provides configuration management for the chase predictor.
package config

import (
	"fmt"
	"time"
)

// Model sources
const (
	ModelSourceLocal  = "local"
	ModelSourceRemote = "remote"
)

// Config represents the complete application configuration
type Config struct {
	App       AppConfig       `mapstructure:"app" validate:"required"`
	Model     ModelConfig     `mapstructure:"model" validate:"required"`
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Reference ReferenceConfig `mapstructure:"reference"`
	Retention RetentionConfig `mapstructure:"retention"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// ModelConfig selects and tunes the win-probability classifier
type ModelConfig struct {
	Source                 string  `mapstructure:"source" validate:"required,modelsource"`
	ArtifactPath           string  `mapstructure:"artifact_path"`
	RemoteURL              string  `mapstructure:"remote_url" validate:"omitempty,url"`
	APIKey                 string  `mapstructure:"api_key"`
	TimeoutSeconds         int     `mapstructure:"timeout_seconds" validate:"gte=0"`
	RetryAttempts          int     `mapstructure:"retry_attempts" validate:"gte=0,lte=10"`
	RateLimit              float64 `mapstructure:"rate_limit" validate:"gte=0"`
	CacheTTLSeconds        int     `mapstructure:"cache_ttl_seconds" validate:"gte=0"`
	BreakerMaxFailures     int     `mapstructure:"breaker_max_failures" validate:"gte=0"`
	BreakerCooldownSeconds int     `mapstructure:"breaker_cooldown_seconds" validate:"gte=0"`
}

// ServerConfig represents the HTTP, health and gRPC listeners
type ServerConfig struct {
	Addr                   string   `mapstructure:"addr" validate:"required"`
	HealthAddr             string   `mapstructure:"health_addr" validate:"required"`
	GRPCAddr               string   `mapstructure:"grpc_addr"`
	ReadTimeoutSeconds     int      `mapstructure:"read_timeout_seconds" validate:"gte=0"`
	WriteTimeoutSeconds    int      `mapstructure:"write_timeout_seconds" validate:"gte=0"`
	ShutdownTimeoutSeconds int      `mapstructure:"shutdown_timeout_seconds" validate:"gte=0"`
	AllowedOrigins         []string `mapstructure:"allowed_origins"`
	RateLimit              float64  `mapstructure:"rate_limit" validate:"gte=0"`
	RateBurst              int      `mapstructure:"rate_burst" validate:"gte=0"`
}

// DatabaseConfig represents the optional prediction log database
type DatabaseConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Host           string `mapstructure:"host" validate:"required_if=Enabled true"`
	Port           int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name           string `mapstructure:"name" validate:"required_if=Enabled true"`
	User           string `mapstructure:"user" validate:"required_if=Enabled true"`
	Password       string `mapstructure:"password"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"gte=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// ReferenceConfig points at an optional catalog override
type ReferenceConfig struct {
	CatalogPath string `mapstructure:"catalog_path"`
}

// RetentionConfig controls purging of the prediction log
type RetentionConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Schedule   string `mapstructure:"schedule"`
	MaxAgeDays int    `mapstructure:"max_age_days" validate:"gte=0"`
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// Timeout returns the remote scorer request timeout
func (m ModelConfig) Timeout() time.Duration {
	return time.Duration(m.TimeoutSeconds) * time.Second
}

// CacheTTL returns how long remote answers are memoised; zero disables the cache
func (m ModelConfig) CacheTTL() time.Duration {
	return time.Duration(m.CacheTTLSeconds) * time.Second
}

// BreakerCooldown returns how long the remote circuit stays open
func (m ModelConfig) BreakerCooldown() time.Duration {
	return time.Duration(m.BreakerCooldownSeconds) * time.Second
}

// ShutdownTimeout returns the graceful shutdown budget for the listeners
func (s ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(s.ShutdownTimeoutSeconds) * time.Second
}

// MaxAge returns the prediction log retention window
func (r RetentionConfig) MaxAge() time.Duration {
	return time.Duration(r.MaxAgeDays) * 24 * time.Hour
}
