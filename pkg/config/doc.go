// Package config loads langmgr configuration from environment variables.
//
// Every setting has a default, so an empty environment yields a usable
// configuration that discovers engines in the default directories and keeps
// the conversion cache off.
//
// Engines:
//
//	LANGMGR_ENGINE_DIRS="/etc/langmgr/engines,./engines"
//	LANGMGR_WATCH="true"
//
// Languages:
//
//	LANGMGR_LANGUAGES_FILE="languages.yaml"
//	LANGMGR_DB_DRIVER="postgres"  # postgres, sqlite3
//	LANGMGR_DB_DSN="postgres://localhost/langmgr?sslmode=disable"
//	LANGMGR_MAX_WORKERS="4"
//
// Cache:
//
//	LANGMGR_CACHE_ENABLED="true"
//	LANGMGR_CACHE_BACKEND="redis"  # memory, redis
//	LANGMGR_CACHE_SIZE="4096"
//	LANGMGR_CACHE_TTL="30m"
//	LANGMGR_REDIS_URL="redis://localhost:6379/0"
//
// Server and observability:
//
//	LANGMGR_HTTP_ADDR=":8080"
//	LANGMGR_LOG_LEVEL="info"
//	LANGMGR_METRICS_ENABLED="true"
//
// Usage:
//
//	cfg, err := config.LoadConfig()
//	if err != nil {
//		log.Fatal(err)
//	}
package config
