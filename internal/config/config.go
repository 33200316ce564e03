/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"txn-aggregation-go/internal/models"
)

const (
	CacheBackendMemory = "memory"
	CacheBackendSqlite = "sqlite"

	SourceBackendStub = "stub"
	SourceBackendHttp = "http"
)

func Load() (*models.Config, error) {
	syncInterval, err := getEnvDuration("SYNC_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, err
	}

	cycleTimeout, err := getEnvDuration("SYNC_CYCLE_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}

	aggregateTTL, err := getEnvDuration("AGGREGATE_TTL", 120*time.Second)
	if err != nil {
		return nil, err
	}

	cleanupInterval, err := getEnvDuration("CACHE_CLEANUP_INTERVAL", time.Minute)
	if err != nil {
		return nil, err
	}

	connMaxLifetime, err := getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	connMaxIdleTime, err := getEnvDuration("DB_CONN_MAX_IDLE_TIME", 30*time.Second)
	if err != nil {
		return nil, err
	}

	pingTimeout, err := getEnvDuration("DB_PING_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	sourceTimeout, err := getEnvDuration("SOURCE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, err
	}

	readHeaderTimeout, err := getEnvDuration("HTTP_READ_HEADER_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	shutdownTimeout, err := getEnvDuration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	cfg := &models.Config{
		Cache: models.CacheConfig{
			Backend:         strings.ToLower(getEnvString("CACHE_BACKEND", CacheBackendMemory)),
			CleanupInterval: cleanupInterval,
		},
		Database: models.DatabaseConfig{
			Path:            getEnvString("DATABASE_PATH", "aggregation.db"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: connMaxLifetime,
			ConnMaxIdleTime: connMaxIdleTime,
			PingTimeout:     pingTimeout,
		},
		Source: models.SourceConfig{
			Backend:      strings.ToLower(getEnvString("SOURCE_BACKEND", SourceBackendStub)),
			BaseURL:      getEnvString("SOURCE_BASE_URL", ""),
			Timeout:      sourceTimeout,
			FixturesFile: getEnvString("SOURCE_FIXTURES_FILE", ""),
			PageSize:     getEnvInt("SOURCE_PAGE_SIZE", 100),
		},
		Sync: models.SyncConfig{
			Interval:     syncInterval,
			CycleTimeout: cycleTimeout,
			AggregateTTL: aggregateTTL,
		},
		Server: models.ServerConfig{
			Port:              getEnvString("HTTP_PORT", "8080"),
			ReadHeaderTimeout: readHeaderTimeout,
			ShutdownTimeout:   shutdownTimeout,
		},
		LogLevel: getEnvString("LOG_LEVEL", "info"),
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *models.Config) error {
	switch cfg.Cache.Backend {
	case CacheBackendMemory, CacheBackendSqlite:
	default:
		return fmt.Errorf("invalid CACHE_BACKEND %q: expected %s or %s", cfg.Cache.Backend, CacheBackendMemory, CacheBackendSqlite)
	}

	switch cfg.Source.Backend {
	case SourceBackendStub:
	case SourceBackendHttp:
		if cfg.Source.BaseURL == "" {
			return fmt.Errorf("SOURCE_BASE_URL is required when SOURCE_BACKEND=%s", SourceBackendHttp)
		}
	default:
		return fmt.Errorf("invalid SOURCE_BACKEND %q: expected %s or %s", cfg.Source.Backend, SourceBackendStub, SourceBackendHttp)
	}

	if cfg.Sync.Interval <= 0 {
		return fmt.Errorf("SYNC_INTERVAL must be positive, got %v", cfg.Sync.Interval)
	}
	if cfg.Sync.CycleTimeout <= 0 {
		return fmt.Errorf("SYNC_CYCLE_TIMEOUT must be positive, got %v", cfg.Sync.CycleTimeout)
	}
	if cfg.Sync.AggregateTTL <= 0 {
		return fmt.Errorf("AGGREGATE_TTL must be positive, got %v", cfg.Sync.AggregateTTL)
	}
	return nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	if value := os.Getenv(key); value != "" {
		duration, err := time.ParseDuration(value)
		if err != nil {
			return 0, fmt.Errorf("invalid duration for %s: %q (%w)", key, value, err)
		}
		return duration, nil
	}
	return defaultValue, nil
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
