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

	"go.uber.org/zap"
)

// Result is the outcome of folding one batch of transactions.
type Result struct {
	Users    map[string]*models.UserAggregatedData
	Order    []string // user ids in order of first accepted transaction
	Declined []models.Transaction
	Skipped  []models.Transaction // unknown transaction types
}

// Aggregates returns the per-user results in first-appearance order
func (r Result) Aggregates() []*models.UserAggregatedData {
	out := make([]*models.UserAggregatedData, 0, len(r.Order))
	for _, userId := range r.Order {
		out = append(out, r.Users[userId])
	}
	return out
}

// Aggregate folds transactions, in the order given, into per-user summaries
// starting from a zero state. A spent transaction larger than the user's
// running balance is declined and leaves every field untouched. Users with no
// accepted transaction get no entry.
func Aggregate(transactions []models.Transaction) Result {
	result := Result{
		Users: make(map[string]*models.UserAggregatedData),
	}

	for _, tx := range transactions {
		data, exists := result.Users[tx.UserId]
		if !exists {
			data = models.NewUserAggregatedData(tx.UserId)
		}

		switch tx.Type {
		case models.TransactionEarned:
			data.Earned = data.Earned.Add(tx.Amount)
			data.Balance = data.Balance.Add(tx.Amount)
		case models.TransactionSpent:
			if data.Balance.LessThan(tx.Amount) {
				zap.L().Warn("Transaction declined: insufficient balance",
					zap.String("transaction_id", tx.Id),
					zap.String("user_id", tx.UserId),
					zap.String("amount", tx.Amount.String()),
					zap.String("balance", data.Balance.String()))
				result.Declined = append(result.Declined, tx)
				continue
			}
			data.Spent = data.Spent.Add(tx.Amount)
			data.Balance = data.Balance.Sub(tx.Amount)
		case models.TransactionPayout:
			data.Payout = data.Payout.Add(tx.Amount)
			data.Balance = data.Balance.Add(tx.Amount)
		default:
			zap.L().Warn("Skipping transaction with unknown type",
				zap.String("transaction_id", tx.Id),
				zap.String("user_id", tx.UserId),
				zap.String("type", string(tx.Type)))
			result.Skipped = append(result.Skipped, tx)
			continue
		}

		if !exists {
			result.Users[tx.UserId] = data
			result.Order = append(result.Order, tx.UserId)
		}
	}

	return result
}
