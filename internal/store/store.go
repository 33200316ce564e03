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

package store

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors shared across all cache backends.
var (
	ErrCacheMiss  = errors.New("cache miss")
	ErrEmptyKey   = errors.New("cache key cannot be empty")
	ErrStoreClose = errors.New("cache store is closed")
)

// Well-known keys written by the sync coordinator.
const (
	CheckpointKey  = "lastSyncTime"
	UserKeyPrefix  = "user:"
	NoExpiration   = time.Duration(0)
	DefaultUserTTL = 120 * time.Second
)

// UserKey returns the cache key holding the aggregate for userId.
func UserKey(userId string) string {
	return UserKeyPrefix + userId
}

// CacheStore defines the contract that every cache backend (memory, SQLite, ...) must satisfy.
//
// Get returns ErrCacheMiss when the key was never written or its TTL has
// elapsed. Set always overwrites; a ttl <= 0 means the entry never expires.
type CacheStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// --- Lifecycle ---
	Close()
}
