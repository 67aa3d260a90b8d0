package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"local"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	// Admission control. RPM values are requests per minute; a bucket refills
	// continuously at rpm/60 tokens per second up to its burst capacity.
	RequesterRPM   float64 `envconfig:"REQUESTER_RPM" default:"10"`
	RequesterBurst int     `envconfig:"REQUESTER_BURST" default:"5"`
	ScopeRPM       float64 `envconfig:"SCOPE_RPM" default:"60"`
	ScopeBurst     int     `envconfig:"SCOPE_BURST" default:"20"`
	GlobalRPM      float64 `envconfig:"GLOBAL_RPM" default:"300"`
	GlobalBurst    int     `envconfig:"GLOBAL_BURST" default:"100"`

	CacheMaxEntries int           `envconfig:"CACHE_MAX_ENTRIES" default:"1000"`
	CacheTTL        time.Duration `envconfig:"CACHE_TTL" default:"30m"`

	BreakerThreshold uint32        `envconfig:"BREAKER_THRESHOLD" default:"3"`
	BreakerCooldown  time.Duration `envconfig:"BREAKER_COOLDOWN" default:"30s"`

	QueueDepth      int           `envconfig:"QUEUE_DEPTH" default:"64"`
	QueueWorkers    int           `envconfig:"QUEUE_WORKERS" default:"4"`
	QueueSubmitWait time.Duration `envconfig:"QUEUE_SUBMIT_WAIT" default:"250ms"`

	DebounceDelay time.Duration `envconfig:"DEBOUNCE_DELAY" default:"1500ms"`

	// ProviderConfigPath points to a JSON file with the ordered provider
	// list. Empty uses the built-in public endpoints.
	ProviderConfigPath string        `envconfig:"PROVIDER_CONFIG" default:""`
	ProviderTimeout    time.Duration `envconfig:"PROVIDER_TIMEOUT" default:"10s"`
	ProviderAttempts   int           `envconfig:"PROVIDER_ATTEMPTS" default:"1"`
	RetryBaseDelay     time.Duration `envconfig:"RETRY_BASE_DELAY" default:"200ms"`
	RetryMaxDelay      time.Duration `envconfig:"RETRY_MAX_DELAY" default:"2s"`

	MaxTextLength int           `envconfig:"MAX_TEXT_LENGTH" default:"3000"`
	RequestWait   time.Duration `envconfig:"REQUEST_WAIT" default:"30s"`

	// AdminTokenHash is a bcrypt hash of the stats endpoint bearer token.
	// Empty disables the stats endpoint.
	AdminTokenHash string `envconfig:"ADMIN_TOKEN_HASH" default:""`

	// RedisAddr enables the Redis stats store. Empty keeps stats in memory.
	RedisAddr     string `envconfig:"REDIS_ADDR" default:""`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.RequesterRPM <= 0 || c.ScopeRPM <= 0 || c.GlobalRPM <= 0 {
		return fmt.Errorf("rate limits must be positive (requester=%v scope=%v global=%v)", c.RequesterRPM, c.ScopeRPM, c.GlobalRPM)
	}
	if c.RequesterBurst < 1 || c.ScopeBurst < 1 || c.GlobalBurst < 1 {
		return fmt.Errorf("burst capacities must be >= 1")
	}
	if c.CacheMaxEntries < 1 {
		return fmt.Errorf("CACHE_MAX_ENTRIES must be >= 1")
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive")
	}
	if c.BreakerThreshold < 1 {
		return fmt.Errorf("BREAKER_THRESHOLD must be >= 1")
	}
	if c.BreakerCooldown <= 0 {
		return fmt.Errorf("BREAKER_COOLDOWN must be positive")
	}
	if c.QueueDepth < 1 {
		return fmt.Errorf("QUEUE_DEPTH must be >= 1")
	}
	if c.QueueWorkers < 1 {
		return fmt.Errorf("QUEUE_WORKERS must be >= 1")
	}
	if c.QueueSubmitWait < 0 {
		return fmt.Errorf("QUEUE_SUBMIT_WAIT cannot be negative")
	}
	if c.DebounceDelay <= 0 {
		return fmt.Errorf("DEBOUNCE_DELAY must be positive")
	}
	if c.ProviderTimeout <= 0 {
		return fmt.Errorf("PROVIDER_TIMEOUT must be positive")
	}
	if c.ProviderAttempts < 1 {
		return fmt.Errorf("PROVIDER_ATTEMPTS must be >= 1")
	}
	if c.MaxTextLength < 1 {
		return fmt.Errorf("MAX_TEXT_LENGTH must be >= 1")
	}
	if c.RequestWait <= 0 {
		return fmt.Errorf("REQUEST_WAIT must be positive")
	}
	if c.RedisDB < 0 {
		return fmt.Errorf("REDIS_DB cannot be negative")
	}
	return nil
}

// HasAdminToken reports whether the stats endpoint is enabled.
func (c *Config) HasAdminToken() bool {
	return c != nil && strings.TrimSpace(c.AdminTokenHash) != ""
}
