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

package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"txn-aggregation-go/internal/store"

	"go.uber.org/zap"
)

// Compile-time check: *MemoryStore must satisfy store.CacheStore.
var _ store.CacheStore = (*MemoryStore)(nil)

type entry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// MemoryStore is an in-process TTL cache. Expiry is checked lazily on Get
// and swept periodically by the janitor loop.
type MemoryStore struct {
	entries map[string]entry
	mutex   sync.RWMutex
	now     func() time.Time
	closed  bool

	janitor  bool
	stopChan chan struct{}
	doneChan chan struct{}
	stopOnce sync.Once
}

// NewMemoryStore creates an empty in-memory cache store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries:  make(map[string]entry),
		now:      time.Now,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
}

// WithClock replaces the time source, used by tests to step past TTLs.
func (m *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	m.now = now
	return m
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, store.ErrEmptyKey
	}

	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.closed {
		return nil, store.ErrStoreClose
	}

	e, ok := m.entries[key]
	if !ok || e.expired(m.now()) {
		return nil, fmt.Errorf("get %s: %w", key, store.ErrCacheMiss)
	}

	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return store.ErrEmptyKey
	}

	e := entry{value: make([]byte, len(value))}
	copy(e.value, value)
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.closed {
		return store.ErrStoreClose
	}
	m.entries[key] = e
	return nil
}

// Len returns the number of stored entries, including expired ones not yet swept
func (m *MemoryStore) Len() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.entries)
}

// StartJanitor runs PurgeExpired every interval until Close or ctx cancellation.
func (m *MemoryStore) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	m.mutex.Lock()
	if m.janitor || m.closed {
		m.mutex.Unlock()
		return
	}
	m.janitor = true
	m.mutex.Unlock()

	go m.cleanupLoop(ctx, interval)
}

func (m *MemoryStore) cleanupLoop(ctx context.Context, interval time.Duration) {
	defer close(m.doneChan)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.PurgeExpired()
		case <-m.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

// PurgeExpired removes expired entries and returns how many were removed
func (m *MemoryStore) PurgeExpired() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	now := m.now()
	cleaned := 0
	for key, e := range m.entries {
		if e.expired(now) {
			delete(m.entries, key)
			cleaned++
		}
	}

	if cleaned > 0 {
		zap.L().Debug("Cleaned up expired cache entries",
			zap.Int("cleaned", cleaned),
			zap.Int("remaining", len(m.entries)))
	}
	return cleaned
}

// Close stops the janitor (if running) and rejects further reads and writes.
func (m *MemoryStore) Close() {
	m.stopOnce.Do(func() {
		close(m.stopChan)
	})

	m.mutex.Lock()
	started := m.janitor
	m.mutex.Unlock()
	if started {
		<-m.doneChan
	}

	m.mutex.Lock()
	m.closed = true
	m.entries = make(map[string]entry)
	m.mutex.Unlock()
}
