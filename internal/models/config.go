package models

import "time"

// Config represents the application configuration
type Config struct {
	Cache    CacheConfig
	Database DatabaseConfig
	Source   SourceConfig
	Sync     SyncConfig
	Server   ServerConfig
	LogLevel string
}

// CacheConfig selects and tunes the aggregate cache
type CacheConfig struct {
	Backend         string // "memory" or "sqlite"
	CleanupInterval time.Duration
}

// DatabaseConfig holds SQLite connection settings for the sqlite cache backend
type DatabaseConfig struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

// SourceConfig holds transaction source settings
type SourceConfig struct {
	Backend      string // "stub" or "http"
	BaseURL      string
	Timeout      time.Duration
	FixturesFile string
	PageSize     int
}

// SyncConfig holds sync coordinator settings
type SyncConfig struct {
	Interval     time.Duration
	CycleTimeout time.Duration
	AggregateTTL time.Duration
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port              string
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
}
