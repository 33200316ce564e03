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
	"fmt"
	"os"
	"path/filepath"
	"time"

	"txn-aggregation-go/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v2"
)

type FixtureRecord struct {
	Id        string `yaml:"id"`
	UserId    string `yaml:"user_id"`
	CreatedAt string `yaml:"created_at"`
	Type      string `yaml:"type"`
	Amount    string `yaml:"amount"`
}

type FixturesConfig struct {
	Transactions []FixtureRecord `yaml:"transactions"`
}

// LoadFixtures reads stub transactions from a YAML file. Records without an
// id are assigned a random UUID.
func LoadFixtures(fixturesFile string) ([]models.Transaction, error) {
	var fixturesPath string
	if filepath.IsAbs(fixturesFile) {
		fixturesPath = fixturesFile
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		fixturesPath = filepath.Join(wd, fixturesFile)
	}

	data, err := os.ReadFile(fixturesPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", fixturesFile, err)
	}

	return ParseFixtures(data)
}

// ParseFixtures decodes and validates a YAML fixtures document
func ParseFixtures(data []byte) ([]models.Transaction, error) {
	var config FixturesConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("unable to parse fixtures: %w", err)
	}

	transactions := make([]models.Transaction, 0, len(config.Transactions))
	for i, rec := range config.Transactions {
		tx, err := rec.toTransaction()
		if err != nil {
			return nil, fmt.Errorf("transaction at index %d: %w", i, err)
		}
		transactions = append(transactions, tx)
	}

	return transactions, nil
}

func (r FixtureRecord) toTransaction() (models.Transaction, error) {
	if r.UserId == "" {
		return models.Transaction{}, fmt.Errorf("missing user_id")
	}

	txType := models.TransactionType(r.Type)
	if !txType.Valid() {
		return models.Transaction{}, fmt.Errorf("unknown type %q", r.Type)
	}

	createdAt, err := time.Parse(time.RFC3339, r.CreatedAt)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("invalid created_at %q: %w", r.CreatedAt, err)
	}

	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("invalid amount %q: %w", r.Amount, err)
	}
	if amount.IsNegative() {
		return models.Transaction{}, fmt.Errorf("amount cannot be negative, got %s", amount.String())
	}

	id := r.Id
	if id == "" {
		id = uuid.New().String()
	}

	return models.Transaction{
		Id:        id,
		UserId:    r.UserId,
		CreatedAt: createdAt.UTC(),
		Type:      txType,
		Amount:    amount,
	}, nil
}

// DefaultFixtures returns the built-in record set used when no fixtures file is configured.
func DefaultFixtures() []models.Transaction {
	records := []FixtureRecord{
		{"41bbdf81-735c-4aea-beb3-3e5f433a30c5", "074092", "2023-03-16T12:33:11Z", "payout", "30"},
		{"41bbdf81-735c-4aea-beb3-3e5fasfsdfef", "074092", "2023-03-12T12:33:11Z", "spent", "12"},
		{"41bbdf81-735c-4aea-beb3-342jhj234nj234", "074092", "2023-03-15T12:33:11Z", "earned", "1.2"},
		{"55ccef92-846d-5bfb-cfc4-4f6g544b41d6", "085123", "2023-03-14T15:45:22Z", "payout", "45.5"},
		{"66ddfg03-957e-6cgc-dfd5-5g7h655c52e7", "085123", "2023-03-15T09:20:33Z", "earned", "5.75"},
		{"77eefh14-068f-7dhd-ege6-6h8i766d63f8", "085123", "2023-03-16T14:10:44Z", "spent", "25"},
		{"88ffgi25-179g-8eie-fgf7-7i9j877e74g9", "096234", "2023-03-13T11:25:55Z", "payout", "60.8"},
		{"99gghj36-280h-9fjf-ghg8-8j0k988f85h0", "096234", "2023-03-14T16:41:06Z", "spent", "22.3"},
		{"00hhik47-391i-0gkg-hih9-9k1l099g96i1", "096234", "2023-03-15T13:16:17Z", "earned", "3.5"},
	}

	transactions := make([]models.Transaction, 0, len(records))
	for _, rec := range records {
		tx, err := rec.toTransaction()
		if err != nil {
			panic(fmt.Sprintf("invalid built-in fixture %s: %v", rec.Id, err))
		}
		transactions = append(transactions, tx)
	}
	return transactions
}
