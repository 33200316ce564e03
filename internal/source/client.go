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
	"errors"
	"time"

	"txn-aggregation-go/internal/models"
)

// ErrSourceUnavailable is returned when the transaction source cannot be reached
// or answers with an unusable response.
var ErrSourceUnavailable = errors.New("transaction source unavailable")

// Client fetches transactions whose creation time falls in [start, end).
// Only the requested page is returned; callers in this module always ask for page 1.
type Client interface {
	Fetch(ctx context.Context, start, end time.Time, page int) (*models.TransactionPage, error)
}

func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

func buildMeta(total, itemCount, pageSize, page int) models.PageMeta {
	totalPages := 0
	if pageSize > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}
	return models.PageMeta{
		TotalItems:   total,
		ItemCount:    itemCount,
		ItemsPerPage: pageSize,
		TotalPages:   totalPages,
		CurrentPage:  page,
	}
}
