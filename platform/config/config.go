// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// SchedulerConfig provides settings for the asynq worker and periodic sweep.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
	GetPoolSweepCron() string
}

// PoolConfig provides settings for the qualification pool module.
type PoolConfig interface {
	GetSchedulerSecret() string
	GetPoolSweepLeaseTTL() time.Duration
	GetClaimRatePerMinute() int
}

// LeadsConfig provides settings for lead intake.
type LeadsConfig interface {
	GetPhoneDefaultRegion() string
}

// MapsConfig provides settings for the address lookup used to place locations.
type MapsConfig interface {
	GetGeocoderURL() string
	GetGeocoderCountryCodes() string
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                string
	HTTPAddr           string
	DatabaseURL        string
	JWTAccessSecret    string
	CORSAllowAll       bool
	CORSOrigins        []string
	CORSAllowCreds     bool
	RedisURL           string
	RedisTLSInsecure   bool
	AsynqQueueName     string
	AsynqConcurrency   int
	PoolSweepCron      string
	PoolSweepLeaseTTL  time.Duration
	SchedulerSecret    string
	ClaimRatePerMinute int
	PhoneDefaultRegion string
	GeocoderURL        string
	GeocoderCountries  string
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string       { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }
func (c *Config) GetPoolSweepCron() string  { return c.PoolSweepCron }

// PoolConfig implementation
func (c *Config) GetSchedulerSecret() string          { return c.SchedulerSecret }
func (c *Config) GetPoolSweepLeaseTTL() time.Duration { return c.PoolSweepLeaseTTL }
func (c *Config) GetClaimRatePerMinute() int          { return c.ClaimRatePerMinute }

// LeadsConfig implementation
func (c *Config) GetPhoneDefaultRegion() string { return c.PhoneDefaultRegion }

// MapsConfig implementation
func (c *Config) GetGeocoderURL() string          { return c.GeocoderURL }
func (c *Config) GetGeocoderCountryCodes() string { return c.GeocoderCountries }

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool { return strings.EqualFold(c.Env, "production") }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                getEnv("APP_ENV", "development"),
		HTTPAddr:           getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		JWTAccessSecret:    getEnv("JWT_ACCESS_SECRET", ""),
		CORSAllowAll:       corsAllowAll,
		CORSOrigins:        corsOrigins,
		CORSAllowCreds:     strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		RedisURL:           getEnv("REDIS_URL", ""),
		RedisTLSInsecure:   strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:     getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:   mustInt(getEnv("ASYNQ_CONCURRENCY", "5")),
		PoolSweepCron:      getEnv("POOL_SWEEP_CRON", "@every 1m"),
		PoolSweepLeaseTTL:  mustDuration(getEnv("POOL_SWEEP_LEASE_TTL", "30s")),
		SchedulerSecret:    getEnv("SCHEDULER_SECRET", ""),
		ClaimRatePerMinute: mustInt(getEnv("CLAIM_RATE_PER_MINUTE", "30")),
		PhoneDefaultRegion: strings.ToUpper(getEnv("PHONE_DEFAULT_REGION", "BR")),
		GeocoderURL:        getEnv("GEOCODER_URL", "https://nominatim.openstreetmap.org/search"),
		GeocoderCountries:  strings.ToLower(getEnv("GEOCODER_COUNTRY_CODES", "br")),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.JWTAccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if c.IsProduction() && c.SchedulerSecret == "" {
		return fmt.Errorf("SCHEDULER_SECRET is required in production")
	}
	if c.CORSAllowAll && c.CORSAllowCreds {
		return fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	if c.PoolSweepLeaseTTL <= 0 {
		return fmt.Errorf("POOL_SWEEP_LEASE_TTL must be a positive duration")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
