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
	"time"

	"github.com/shopspring/decimal"
)

// Amounts go over the wire as JSON numbers; decoding accepts numbers or strings.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// TransactionType is the kind of financial event reported by the source
type TransactionType string

const (
	TransactionEarned TransactionType = "earned"
	TransactionSpent  TransactionType = "spent"
	TransactionPayout TransactionType = "payout"
)

// Valid reports whether t is one of the known transaction types
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionEarned, TransactionSpent, TransactionPayout:
		return true
	}
	return false
}

// Transaction is an immutable record produced by the transaction source
type Transaction struct {
	Id        string          `json:"id"`
	UserId    string          `json:"userId"`
	CreatedAt time.Time       `json:"createdAt"`
	Type      TransactionType `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
}

// PageMeta is the pagination envelope returned alongside a page of transactions
type PageMeta struct {
	TotalItems   int `json:"totalItems"`
	ItemCount    int `json:"itemCount"`
	ItemsPerPage int `json:"itemsPerPage"`
	TotalPages   int `json:"totalPages"`
	CurrentPage  int `json:"currentPage"`
}

// TransactionPage is a single page of source results
type TransactionPage struct {
	Items []Transaction `json:"items"`
	Meta  PageMeta      `json:"meta"`
}
