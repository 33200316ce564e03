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

package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"txn-aggregation-go/internal/source"
	"txn-aggregation-go/internal/store"
)

var (
	// ErrNotFound means no live aggregate is cached for the user: never
	// synced, or expired since the last sync that saw the user.
	ErrNotFound        = errors.New("user aggregate not found")
	ErrInvalidArgument = errors.New("invalid argument")
)

// AggregationService is the read side used by the HTTP layer and CLI tools
type AggregationService struct {
	cache  store.CacheStore
	source source.Client
	now    func() time.Time
}

func NewAggregationService(cache store.CacheStore, src source.Client) *AggregationService {
	return &AggregationService{
		cache:  cache,
		source: src,
		now:    time.Now,
	}
}

// WithClock replaces the time source used to default window ends.
func (s *AggregationService) WithClock(now func() time.Time) *AggregationService {
	s.now = now
	return s
}

// SyncStatus describes the last completed sync
type SyncStatus struct {
	Synced       bool      `json:"synced"`
	LastSyncTime time.Time `json:"lastSyncTime"`
}

func (s *AggregationService) HealthCheck(ctx context.Context) (*SyncStatus, error) {
	checkpoint, found, err := store.ReadCheckpoint(ctx, s.cache)
	if err != nil {
		return nil, fmt.Errorf("cache health check failed: %w", err)
	}
	status := &SyncStatus{Synced: found}
	if found {
		status.LastSyncTime = checkpoint
	}
	return status, nil
}
