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

package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"txn-aggregation-go/internal/api"
	"txn-aggregation-go/internal/common"
	"txn-aggregation-go/internal/config"
	"txn-aggregation-go/internal/models"
	"txn-aggregation-go/internal/store"

	"go.uber.org/zap"
)

func printTransaction(tx models.Transaction, isLast bool) {
	fmt.Printf("%s %-12s %-8s %-8s: %14s (at: %s)\n",
		common.BoxPrefix(isLast),
		common.FormatId(tx.Id),
		tx.UserId,
		tx.Type,
		common.FormatAmount(tx.Amount),
		common.FormatTimestamp(tx.CreatedAt))
}

func parseFlagTime(name, value string, fallback time.Time) time.Time {
	if value == "" {
		return fallback
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		zap.L().Fatal("Invalid timestamp flag",
			zap.String("flag", name),
			zap.String("value", value),
			zap.Error(err))
	}
	return t
}

func main() {
	ctx := context.Background()

	startFlag := flag.String("start", "", "Window start, RFC 3339 (default: beginning of history)")
	endFlag := flag.String("end", "", "Window end, RFC 3339 (default: now)")
	userFlag := flag.String("user", "", "Filter by user id (optional)")
	typeFlag := flag.String("type", "", "Filter by type: earned, spent or payout (optional)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		_, _ = zap.NewProduction()
		zap.L().Fatal("Failed to load configuration", zap.Error(err))
	}

	logger, loggerCleanup := common.InitializeLogger(cfg.LogLevel)
	defer loggerCleanup()

	query := api.TransactionQuery{
		UserId: *userFlag,
		Start:  parseFlagTime("start", *startFlag, store.Epoch),
		End:    parseFlagTime("end", *endFlag, time.Time{}),
		Type:   models.TransactionType(*typeFlag),
	}

	logger.Info("Starting transaction query",
		zap.String("user_id", query.UserId),
		zap.String("type", string(query.Type)),
		zap.Time("start", query.Start))

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	transactions, err := services.QueryService.GetTransactions(ctx, query)
	if err != nil {
		logger.Fatal("Failed to get transactions", zap.Error(err))
	}

	common.PrintHeader("TRANSACTION REPORT", common.WideWidth)
	for i, tx := range transactions {
		printTransaction(tx, i == len(transactions)-1)
	}

	summary := fmt.Sprintf("SUMMARY: %d transactions", len(transactions))
	common.PrintFooter(summary, common.WideWidth)

	logger.Info("Transaction query completed", zap.Int("count", len(transactions)))
}
