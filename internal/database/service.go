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

package database

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"txn-aggregation-go/internal/models"
	"txn-aggregation-go/internal/store"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// Compile-time check: *Service must satisfy store.CacheStore.
var _ store.CacheStore = (*Service)(nil)

// Service is a SQLite-backed cache store. Entries carry an optional expiry
// stored as unix nanoseconds; expired rows read as misses and are purged by
// the janitor loop.
type Service struct {
	db  *sql.DB
	now func() time.Time

	stopChan  chan struct{}
	doneChan  chan struct{}
	stopOnce  sync.Once
	startOnce sync.Once
	started   atomic.Bool
}

func NewService(ctx context.Context, cfg models.DatabaseConfig) (*Service, error) {
	// Validate configuration
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if cfg.MaxOpenConns <= 0 {
		return nil, fmt.Errorf("max open connections must be positive, got %d", cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns < 0 {
		return nil, fmt.Errorf("max idle connections cannot be negative, got %d", cfg.MaxIdleConns)
	}
	if cfg.PingTimeout <= 0 {
		return nil, fmt.Errorf("ping timeout must be positive, got %v", cfg.PingTimeout)
	}

	zap.L().Info("Opening SQLite cache database", zap.String("file", cfg.Path))
	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// Test connection with timeout
	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, closeErr
		}
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	service, err := newServiceFromDB(db)
	if err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, closeErr
		}
		return nil, fmt.Errorf("unable to initialize schema: %w", err)
	}

	zap.L().Info("Database cache service initialized successfully")
	return service, nil
}

func newServiceFromDB(db *sql.DB) (*Service, error) {
	service := &Service{
		db:       db,
		now:      time.Now,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
	if err := service.initSchema(); err != nil {
		return nil, err
	}
	return service, nil
}

func (s *Service) initSchema() error {
	_, err := s.db.Exec(schemaCacheEntries)
	return err
}

func (s *Service) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, store.ErrEmptyKey
	}

	var (
		value     []byte
		expiresAt sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx, queryGetCacheEntry, key).Scan(&value, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("get %s: %w", key, store.ErrCacheMiss)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache entry %s: %w", key, err)
	}

	if expiresAt.Valid && expiresAt.Int64 <= s.now().UnixNano() {
		return nil, fmt.Errorf("get %s: %w", key, store.ErrCacheMiss)
	}
	return value, nil
}

func (s *Service) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return store.ErrEmptyKey
	}

	var expiresAt sql.NullInt64
	if ttl > 0 {
		expiresAt = sql.NullInt64{Int64: s.now().Add(ttl).UnixNano(), Valid: true}
	}

	if _, err := s.db.ExecContext(ctx, queryUpsertCacheEntry, key, value, expiresAt); err != nil {
		return fmt.Errorf("failed to write cache entry %s: %w", key, err)
	}
	return nil
}

// PurgeExpired deletes expired rows and returns how many were removed
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, queryPurgeExpiredEntries, s.now().UnixNano())
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired cache entries: %w", err)
	}
	cleaned, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if cleaned > 0 {
		zap.L().Debug("Purged expired cache entries", zap.Int64("cleaned", cleaned))
	}
	return cleaned, nil
}

// Count returns the number of stored rows, including expired ones not yet purged
func (s *Service) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, queryCountCacheEntries).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count cache entries: %w", err)
	}
	return n, nil
}

// StartJanitor purges expired rows every interval until Close or ctx cancellation.
func (s *Service) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	s.startOnce.Do(func() {
		s.started.Store(true)
		go s.cleanupLoop(ctx, interval)
	})
}

func (s *Service) cleanupLoop(ctx context.Context, interval time.Duration) {
	defer close(s.doneChan)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := s.PurgeExpired(ctx); err != nil {
				zap.L().Warn("Cache purge failed", zap.Error(err))
			}
		case <-s.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *Service) Close() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
		if s.started.Load() {
			<-s.doneChan
		}
		if err := s.db.Close(); err != nil {
			zap.L().Warn("Failed to close database connection", zap.Error(err))
		}
	})
}
