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

package source

import (
	"context"
	"time"

	"txn-aggregation-go/internal/models"

	"go.uber.org/zap"
)

const DefaultPageSize = 100

// StubClient serves a fixed set of transactions. It stands in for the real
// paginated provider during local runs and tests.
type StubClient struct {
	records  []models.Transaction
	pageSize int
}

// NewStubClient creates a stub over records, preserving their order.
func NewStubClient(records []models.Transaction, pageSize int) *StubClient {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	copied := make([]models.Transaction, len(records))
	copy(copied, records)
	return &StubClient{records: copied, pageSize: pageSize}
}

func (s *StubClient) Fetch(ctx context.Context, start, end time.Time, page int) (*models.TransactionPage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	page = normalizePage(page)

	matched := make([]models.Transaction, 0, len(s.records))
	for _, tx := range s.records {
		if !tx.CreatedAt.Before(start) && tx.CreatedAt.Before(end) {
			matched = append(matched, tx)
		}
	}

	from := (page - 1) * s.pageSize
	if from > len(matched) {
		from = len(matched)
	}
	to := from + s.pageSize
	if to > len(matched) {
		to = len(matched)
	}
	items := matched[from:to]

	zap.L().Debug("Stub source served transactions",
		zap.Time("start", start),
		zap.Time("end", end),
		zap.Int("page", page),
		zap.Int("matched", len(matched)),
		zap.Int("returned", len(items)))

	return &models.TransactionPage{
		Items: items,
		Meta:  buildMeta(len(matched), len(items), s.pageSize, page),
	}, nil
}
