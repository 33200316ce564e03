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

package models

import (
	"github.com/shopspring/decimal"
)

// UserAggregatedData is the per-user summary published to the cache after each sync
type UserAggregatedData struct {
	UserId  string          `json:"userId"`
	Balance decimal.Decimal `json:"balance"`
	Earned  decimal.Decimal `json:"earned"`
	Spent   decimal.Decimal `json:"spent"`
	Payout  decimal.Decimal `json:"payout"`
	PaidOut decimal.Decimal `json:"paidOut"` // reserved, never updated
}

// NewUserAggregatedData returns a zeroed aggregate for userId
func NewUserAggregatedData(userId string) *UserAggregatedData {
	return &UserAggregatedData{
		UserId:  userId,
		Balance: decimal.Zero,
		Earned:  decimal.Zero,
		Spent:   decimal.Zero,
		Payout:  decimal.Zero,
		PaidOut: decimal.Zero,
	}
}

// Consistent reports whether balance == earned - spent + payout
func (u *UserAggregatedData) Consistent() bool {
	return u.Balance.Equal(u.Earned.Sub(u.Spent).Add(u.Payout))
}

// PayoutRequest is the total payout amount requested by one user
type PayoutRequest struct {
	UserId string          `json:"userId"`
	Amount decimal.Decimal `json:"amount"`
}
