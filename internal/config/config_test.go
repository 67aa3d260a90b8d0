package config

import (
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Environment:      "local",
		LogLevel:         "info",
		RequesterRPM:     10,
		RequesterBurst:   5,
		ScopeRPM:         60,
		ScopeBurst:       20,
		GlobalRPM:        300,
		GlobalBurst:      100,
		CacheMaxEntries:  1000,
		CacheTTL:         30 * time.Minute,
		BreakerThreshold: 3,
		BreakerCooldown:  30 * time.Second,
		QueueDepth:       64,
		QueueWorkers:     4,
		QueueSubmitWait:  250 * time.Millisecond,
		DebounceDelay:    1500 * time.Millisecond,
		ProviderTimeout:  10 * time.Second,
		ProviderAttempts: 1,
		RetryBaseDelay:   200 * time.Millisecond,
		RetryMaxDelay:    2 * time.Second,
		MaxTextLength:    3000,
		RequestWait:      30 * time.Second,
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	t.Parallel()

	if err := validConfig().Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero requester rpm", func(c *Config) { c.RequesterRPM = 0 }},
		{"zero burst", func(c *Config) { c.GlobalBurst = 0 }},
		{"zero cache entries", func(c *Config) { c.CacheMaxEntries = 0 }},
		{"zero cache ttl", func(c *Config) { c.CacheTTL = 0 }},
		{"zero breaker threshold", func(c *Config) { c.BreakerThreshold = 0 }},
		{"zero breaker cooldown", func(c *Config) { c.BreakerCooldown = 0 }},
		{"zero queue depth", func(c *Config) { c.QueueDepth = 0 }},
		{"zero workers", func(c *Config) { c.QueueWorkers = 0 }},
		{"negative submit wait", func(c *Config) { c.QueueSubmitWait = -time.Second }},
		{"zero debounce delay", func(c *Config) { c.DebounceDelay = 0 }},
		{"zero provider timeout", func(c *Config) { c.ProviderTimeout = 0 }},
		{"zero provider attempts", func(c *Config) { c.ProviderAttempts = 0 }},
		{"zero max text length", func(c *Config) { c.MaxTextLength = 0 }},
		{"zero request wait", func(c *Config) { c.RequestWait = 0 }},
		{"negative redis db", func(c *Config) { c.RedisDB = -1 }},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected a validation error")
			}
		})
	}
}

func TestHasAdminToken(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	if cfg.HasAdminToken() {
		t.Fatal("blank hash should disable the admin token")
	}
	cfg.AdminTokenHash = "  "
	if cfg.HasAdminToken() {
		t.Fatal("whitespace hash should disable the admin token")
	}
	cfg.AdminTokenHash = "$2a$12$abcdefghijklmnopqrstuv"
	if !cfg.HasAdminToken() {
		t.Fatal("expected the admin token to be enabled")
	}
}
