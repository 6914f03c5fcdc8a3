package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("LANGMGR_TEST_VAR", "custom")

	assert.Equal(t, "custom", getEnv("LANGMGR_TEST_VAR", "default"))
	assert.Equal(t, "default", getEnv("LANGMGR_TEST_VAR_NOT_SET", "default"))
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		name         string
		envValue     string
		defaultValue bool
		want         bool
	}{
		{name: "true", envValue: "true", want: true},
		{name: "TRUE", envValue: "TRUE", want: true},
		{name: "one", envValue: "1", want: true},
		{name: "false", envValue: "false", defaultValue: true, want: false},
		{name: "garbage", envValue: "yes please", defaultValue: true, want: false},
		{name: "unset uses default", envValue: "", defaultValue: true, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LANGMGR_TEST_BOOL", tt.envValue)
			assert.Equal(t, tt.want, getEnvBool("LANGMGR_TEST_BOOL", tt.defaultValue))
		})
	}
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("LANGMGR_TEST_INT", "42")
	assert.Equal(t, 42, getEnvInt("LANGMGR_TEST_INT", 7))

	t.Setenv("LANGMGR_TEST_INT", "forty-two")
	assert.Equal(t, 7, getEnvInt("LANGMGR_TEST_INT", 7))
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("LANGMGR_TEST_DURATION", "90s")
	assert.Equal(t, 90*time.Second, getEnvDuration("LANGMGR_TEST_DURATION", time.Second))

	t.Setenv("LANGMGR_TEST_DURATION", "soon")
	assert.Equal(t, time.Second, getEnvDuration("LANGMGR_TEST_DURATION", time.Second))
}

func TestGetEnvList(t *testing.T) {
	t.Setenv("LANGMGR_TEST_LIST", " /a, ,/b ,")
	assert.Equal(t, []string{"/a", "/b"}, getEnvList("LANGMGR_TEST_LIST", nil))

	assert.Equal(t, []string{"x"}, getEnvList("LANGMGR_TEST_LIST_NOT_SET", []string{"x"}))
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Empty(t, cfg.Engines.Dirs)
	assert.False(t, cfg.Engines.Watch)
	assert.Equal(t, 4, cfg.Languages.MaxWorkers)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, 4096, cfg.Cache.Size)
	assert.Equal(t, 30*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "info", cfg.Observability.LogLevel)
	assert.True(t, cfg.Observability.MetricsEnabled)
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	t.Setenv("LANGMGR_ENGINE_DIRS", "/etc/langmgr/engines,./engines")
	t.Setenv("LANGMGR_WATCH", "true")
	t.Setenv("LANGMGR_LANGUAGES_FILE", "languages.yaml")
	t.Setenv("LANGMGR_CACHE_ENABLED", "true")
	t.Setenv("LANGMGR_CACHE_BACKEND", "Redis")
	t.Setenv("LANGMGR_REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("LANGMGR_LOG_LEVEL", "DEBUG")
	t.Setenv("LANGMGR_MAX_WORKERS", "8")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, []string{"/etc/langmgr/engines", "./engines"}, cfg.Engines.Dirs)
	assert.True(t, cfg.Engines.Watch)
	assert.Equal(t, "languages.yaml", cfg.Languages.File)
	assert.Equal(t, 8, cfg.Languages.MaxWorkers)
	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, "debug", cfg.Observability.LogLevel)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Languages:     LanguageConfig{MaxWorkers: 4},
			Cache:         CacheConfig{Backend: "memory", Size: 10, TTL: time.Minute},
			Server:        ServerConfig{Addr: ":8080"},
			Observability: ObservabilityConfig{LogLevel: "info"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "cache disabled ignores backend", mutate: func(c *Config) { c.Cache.Backend = "bogus" }},
		{name: "zero workers", mutate: func(c *Config) { c.Languages.MaxWorkers = 0 }, wantErr: "max workers"},
		{name: "unknown driver", mutate: func(c *Config) { c.Languages.DBDriver = "mysql" }, wantErr: "invalid database driver"},
		{name: "driver without dsn", mutate: func(c *Config) { c.Languages.DBDriver = "postgres" }, wantErr: "DSN is required"},
		{name: "sqlite with dsn", mutate: func(c *Config) {
			c.Languages.DBDriver = "sqlite3"
			c.Languages.DBDSN = "file:langmgr.db"
		}},
		{name: "unknown cache backend", mutate: func(c *Config) {
			c.Cache.Enabled = true
			c.Cache.Backend = "memcached"
		}, wantErr: "invalid cache backend"},
		{name: "redis without url", mutate: func(c *Config) {
			c.Cache.Enabled = true
			c.Cache.Backend = "redis"
		}, wantErr: "redis URL is required"},
		{name: "zero ttl", mutate: func(c *Config) {
			c.Cache.Enabled = true
			c.Cache.TTL = 0
		}, wantErr: "cache TTL"},
		{name: "bad log level", mutate: func(c *Config) { c.Observability.LogLevel = "trace" }, wantErr: "invalid log level"},
		{name: "empty addr", mutate: func(c *Config) { c.Server.Addr = "" }, wantErr: "HTTP address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
