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
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"txn-aggregation-go/internal/aggregation"
	"txn-aggregation-go/internal/models"
	"txn-aggregation-go/internal/store"

	"go.uber.org/zap"
)

// TransactionQuery selects a window of source transactions. A zero End means now;
// empty UserId or Type disables that filter.
type TransactionQuery struct {
	UserId string
	Start  time.Time
	End    time.Time
	Type   models.TransactionType
}

// GetUserAggregate returns the cached aggregate for a user, or ErrNotFound
func (s *AggregationService) GetUserAggregate(ctx context.Context, userId string) (*models.UserAggregatedData, error) {
	if userId == "" {
		return nil, fmt.Errorf("%w: user_id is required", ErrInvalidArgument)
	}

	raw, err := s.cache.Get(ctx, store.UserKey(userId))
	if errors.Is(err, store.ErrCacheMiss) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, userId)
	}
	if err != nil {
		zap.L().Error("Failed to read user aggregate",
			zap.String("user_id", userId),
			zap.Error(err))
		return nil, fmt.Errorf("failed to retrieve aggregate: %w", err)
	}

	var data models.UserAggregatedData
	if err := json.Unmarshal(raw, &data); err != nil {
		zap.L().Error("Failed to decode user aggregate",
			zap.String("user_id", userId),
			zap.Error(err))
		return nil, fmt.Errorf("failed to decode aggregate for %s: %w", userId, err)
	}
	return &data, nil
}

// GetTransactions fetches a window directly from the source, bypassing the
// cache, and filters it by user and type.
func (s *AggregationService) GetTransactions(ctx context.Context, q TransactionQuery) ([]models.Transaction, error) {
	if q.Type != "" && !q.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown transaction type %q", ErrInvalidArgument, q.Type)
	}

	transactions, err := s.GetTransactionsForPeriod(ctx, q.Start, q.End)
	if err != nil {
		return nil, err
	}
	return aggregation.FilterTransactions(transactions, q.UserId, q.Type), nil
}

// GetTransactionsForPeriod returns every source transaction in the closed
// window [start, end]. A zero end means now.
func (s *AggregationService) GetTransactionsForPeriod(ctx context.Context, start, end time.Time) ([]models.Transaction, error) {
	if end.IsZero() {
		end = s.now()
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end %s is before start %s", ErrInvalidArgument,
			end.Format(time.RFC3339), start.Format(time.RFC3339))
	}

	// The source window is half-open; extend it so a record at end is included.
	page, err := s.source.Fetch(ctx, start, end.Add(time.Nanosecond), 1)
	if err != nil {
		zap.L().Error("Failed to fetch transactions",
			zap.Time("start", start),
			zap.Time("end", end),
			zap.Error(err))
		return nil, fmt.Errorf("failed to fetch transactions: %w", err)
	}
	return page.Items, nil
}

// GetPayoutRequests sums payout transactions per user over the whole history.
func (s *AggregationService) GetPayoutRequests(ctx context.Context) ([]models.PayoutRequest, error) {
	page, err := s.source.Fetch(ctx, store.Epoch, s.now(), 1)
	if err != nil {
		zap.L().Error("Failed to fetch payout requests", zap.Error(err))
		return nil, fmt.Errorf("failed to fetch payout requests: %w", err)
	}
	return aggregation.SumPayouts(page.Items), nil
}
