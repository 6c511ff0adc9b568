package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"PAYCALC_ADDR", "PAYCALC_DB", "PAYCALC_CONSTANTS_FILE", "PAYCALC_DEFAULT_SET",
		"PAYCALC_REDIS_ADDR", "PAYCALC_CACHE_TTL", "PAYCALC_CACHE_SIZE", "PAYCALC_LOG_LEVEL", "PAYCALC_ENV",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "paycalc.db", cfg.DatabasePath)
	assert.Equal(t, "ab-2025", cfg.DefaultSet)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
	assert.Equal(t, 10000, cfg.CacheSize)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.IsProduction())
	require.NoError(t, cfg.Validate())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PAYCALC_ADDR", ":9090")
	t.Setenv("PAYCALC_DEFAULT_SET", "ab-2024")
	t.Setenv("PAYCALC_REDIS_ADDR", "localhost:6379")
	t.Setenv("PAYCALC_CACHE_TTL", "5m")
	t.Setenv("PAYCALC_CACHE_SIZE", "500")
	t.Setenv("PAYCALC_ENV", "production")

	cfg := Load()
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "ab-2024", cfg.DefaultSet)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 500, cfg.CacheSize)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_BadValuesFallBack(t *testing.T) {
	t.Setenv("PAYCALC_CACHE_TTL", "soon")
	t.Setenv("PAYCALC_CACHE_SIZE", "lots")
	cfg := Load()
	assert.Equal(t, time.Hour, cfg.CacheTTL)
	assert.Equal(t, 10000, cfg.CacheSize)
}

func TestValidate(t *testing.T) {
	valid := Config{Addr: ":8080", DatabasePath: ":memory:", DefaultSet: "ab-2025", CacheSize: 100, LogLevel: "debug", Environment: "test"}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"empty addr", func(c *Config) { c.Addr = "" }},
		{"empty db", func(c *Config) { c.DatabasePath = " " }},
		{"empty default set", func(c *Config) { c.DefaultSet = "" }},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }},
		{"bad env", func(c *Config) { c.Environment = "staging" }},
		{"redis without ttl", func(c *Config) { c.RedisAddr = "x:1"; c.CacheTTL = 0 }},
		{"zero cache size", func(c *Config) { c.CacheSize = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.modify(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
