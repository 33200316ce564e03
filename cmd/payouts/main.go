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
	"fmt"

	"txn-aggregation-go/internal/common"
	"txn-aggregation-go/internal/config"
	"txn-aggregation-go/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func printPayout(request models.PayoutRequest, isLast bool) {
	fmt.Printf("%s %-20s: %20s\n",
		common.BoxPrefix(isLast),
		request.UserId,
		common.FormatAmount(request.Amount))
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		_, _ = zap.NewProduction()
		zap.L().Fatal("Failed to load configuration", zap.Error(err))
	}

	logger, loggerCleanup := common.InitializeLogger(cfg.LogLevel)
	defer loggerCleanup()

	logger.Info("Starting payout request query")

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	requests, err := services.QueryService.GetPayoutRequests(ctx)
	if err != nil {
		logger.Fatal("Failed to get payout requests", zap.Error(err))
	}

	common.PrintHeader("PAYOUT REQUEST REPORT", common.DefaultWidth)

	total := decimal.Zero
	fmt.Printf("\n┌─ Users with payouts: %d\n", len(requests))
	common.PrintBoxSeparator(78)
	for i, request := range requests {
		printPayout(request, i == len(requests)-1)
		total = total.Add(request.Amount)
	}

	summary := fmt.Sprintf("SUMMARY: %d users, %s total payout", len(requests), common.FormatAmount(total))
	common.PrintFooter(summary, common.DefaultWidth)

	logger.Info("Payout request query completed",
		zap.Int("users", len(requests)),
		zap.String("total", total.String()))
}
