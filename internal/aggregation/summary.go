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

package aggregation

import (
	"txn-aggregation-go/internal/models"

	"github.com/shopspring/decimal"
)

// SumPayouts totals payout-typed amounts per user, in order of each user's
// first payout. Users without a payout transaction are omitted.
func SumPayouts(transactions []models.Transaction) []models.PayoutRequest {
	totals := make(map[string]decimal.Decimal)
	var order []string

	for _, tx := range transactions {
		if tx.Type != models.TransactionPayout {
			continue
		}
		existing, seen := totals[tx.UserId]
		if !seen {
			order = append(order, tx.UserId)
			existing = decimal.Zero
		}
		totals[tx.UserId] = existing.Add(tx.Amount)
	}

	requests := make([]models.PayoutRequest, 0, len(order))
	for _, userId := range order {
		requests = append(requests, models.PayoutRequest{
			UserId: userId,
			Amount: totals[userId],
		})
	}
	return requests
}

// FilterTransactions keeps transactions matching userId and txType; an empty
// value disables that filter.
func FilterTransactions(transactions []models.Transaction, userId string, txType models.TransactionType) []models.Transaction {
	filtered := make([]models.Transaction, 0, len(transactions))
	for _, tx := range transactions {
		if userId != "" && tx.UserId != userId {
			continue
		}
		if txType != "" && tx.Type != txType {
			continue
		}
		filtered = append(filtered, tx)
	}
	return filtered
}
