package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
)

type Config struct {
	Addr          string
	DatabasePath  string
	ConstantsFile string
	DefaultSet    string
	RedisAddr     string
	CacheTTL      time.Duration
	CacheSize     int
	LogLevel      string
	Environment   string
}

func Load() Config {
	return Config{
		Addr:          getEnv("PAYCALC_ADDR", ":8080"),
		DatabasePath:  getEnv("PAYCALC_DB", "paycalc.db"),
		ConstantsFile: getEnv("PAYCALC_CONSTANTS_FILE", ""),
		DefaultSet:    getEnv("PAYCALC_DEFAULT_SET", "ab-2025"),
		RedisAddr:     getEnv("PAYCALC_REDIS_ADDR", ""),
		CacheTTL:      getEnvDuration("PAYCALC_CACHE_TTL", time.Hour),
		CacheSize:     getEnvInt("PAYCALC_CACHE_SIZE", 10000),
		LogLevel:      getEnv("PAYCALC_LOG_LEVEL", "info"),
		Environment:   getEnv("PAYCALC_ENV", "development"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

// IsProduction reports whether PAYCALC_ENV selects production logging.
func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("PAYCALC_ADDR is required")
	}
	if strings.TrimSpace(c.DatabasePath) == "" {
		return fmt.Errorf("PAYCALC_DB is required")
	}
	if strings.TrimSpace(c.DefaultSet) == "" {
		return fmt.Errorf("PAYCALC_DEFAULT_SET is required")
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("PAYCALC_LOG_LEVEL %q is not a valid level", c.LogLevel)
	}
	switch c.Environment {
	case "development", "production", "test":
	default:
		return fmt.Errorf("PAYCALC_ENV must be development, production or test")
	}
	if c.RedisAddr != "" && c.CacheTTL <= 0 {
		return fmt.Errorf("PAYCALC_CACHE_TTL must be positive when PAYCALC_REDIS_ADDR is set")
	}
	if c.CacheSize <= 0 {
		return fmt.Errorf("PAYCALC_CACHE_SIZE must be positive")
	}
	return nil
}
