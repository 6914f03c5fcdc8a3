package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Engine discovery
	Engines EngineConfig

	// Language descriptors
	Languages LanguageConfig

	// Conversion cache
	Cache CacheConfig

	// HTTP server
	Server ServerConfig

	// Observability
	Observability ObservabilityConfig
}

// EngineConfig controls where G2P engines are discovered
type EngineConfig struct {
	Dirs  []string
	Watch bool
}

// LanguageConfig controls where language descriptors come from. A file takes
// precedence over a database when both are set.
type LanguageConfig struct {
	File       string
	DBDriver   string // postgres or sqlite3
	DBDSN      string
	MaxWorkers int
}

// CacheConfig holds conversion cache settings
type CacheConfig struct {
	Enabled  bool
	Backend  string // memory or redis
	Size     int
	TTL      time.Duration
	RedisURL string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	LogLevel       string
	MetricsEnabled bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Engines:       loadEngineConfig(),
		Languages:     loadLanguageConfig(),
		Cache:         loadCacheConfig(),
		Server:        loadServerConfig(),
		Observability: loadObservabilityConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func loadEngineConfig() EngineConfig {
	return EngineConfig{
		Dirs:  getEnvList("LANGMGR_ENGINE_DIRS", nil),
		Watch: getEnvBool("LANGMGR_WATCH", false),
	}
}

func loadLanguageConfig() LanguageConfig {
	return LanguageConfig{
		File:       getEnv("LANGMGR_LANGUAGES_FILE", ""),
		DBDriver:   getEnv("LANGMGR_DB_DRIVER", ""),
		DBDSN:      getEnv("LANGMGR_DB_DSN", ""),
		MaxWorkers: getEnvInt("LANGMGR_MAX_WORKERS", 4),
	}
}

func loadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:  getEnvBool("LANGMGR_CACHE_ENABLED", false),
		Backend:  strings.ToLower(getEnv("LANGMGR_CACHE_BACKEND", "memory")),
		Size:     getEnvInt("LANGMGR_CACHE_SIZE", 4096),
		TTL:      getEnvDuration("LANGMGR_CACHE_TTL", 30*time.Minute),
		RedisURL: getEnv("LANGMGR_REDIS_URL", ""),
	}
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Addr:            getEnv("LANGMGR_HTTP_ADDR", ":8080"),
		ReadTimeout:     getEnvDuration("LANGMGR_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("LANGMGR_WRITE_TIMEOUT", 15*time.Second),
		ShutdownTimeout: getEnvDuration("LANGMGR_SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:       strings.ToLower(getEnv("LANGMGR_LOG_LEVEL", "info")),
		MetricsEnabled: getEnvBool("LANGMGR_METRICS_ENABLED", true),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Languages.MaxWorkers <= 0 {
		return fmt.Errorf("max workers must be positive, got %d", c.Languages.MaxWorkers)
	}

	switch c.Languages.DBDriver {
	case "":
	case "postgres", "sqlite3":
		if c.Languages.DBDSN == "" {
			return fmt.Errorf("database DSN is required for driver %s", c.Languages.DBDriver)
		}
	default:
		return fmt.Errorf("invalid database driver: %s (must be postgres or sqlite3)", c.Languages.DBDriver)
	}

	if c.Cache.Enabled {
		switch c.Cache.Backend {
		case "memory":
			if c.Cache.Size <= 0 {
				return fmt.Errorf("cache size must be positive, got %d", c.Cache.Size)
			}
		case "redis":
			if c.Cache.RedisURL == "" {
				return fmt.Errorf("redis URL is required for redis cache")
			}
		default:
			return fmt.Errorf("invalid cache backend: %s (must be memory or redis)", c.Cache.Backend)
		}
		if c.Cache.TTL <= 0 {
			return fmt.Errorf("cache TTL must be positive, got %s", c.Cache.TTL)
		}
	}

	switch c.Observability.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Observability.LogLevel)
	}

	if c.Server.Addr == "" {
		return fmt.Errorf("HTTP address is required")
	}

	return nil
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvList splits a comma separated environment variable, dropping blanks
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
