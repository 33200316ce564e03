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

package listener

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"txn-aggregation-go/internal/aggregation"
	"txn-aggregation-go/internal/metrics"
	"txn-aggregation-go/internal/models"
	"txn-aggregation-go/internal/source"
	"txn-aggregation-go/internal/store"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultInterval     = 15 * time.Second
	DefaultCycleTimeout = 30 * time.Second
)

// SyncListenerConfig contains configuration for SyncListener
type SyncListenerConfig struct {
	Source       source.Client
	Cache        store.CacheStore
	Interval     time.Duration
	CycleTimeout time.Duration
	AggregateTTL time.Duration
	Clock        func() time.Time
}

// SyncListener periodically pulls new transactions from the source, folds
// them into per-user aggregates and publishes them to the cache. At most one
// cycle runs at a time; triggers that arrive while a cycle is in flight are
// dropped.
type SyncListener struct {
	source source.Client
	cache  store.CacheStore

	interval     time.Duration
	cycleTimeout time.Duration
	aggregateTTL time.Duration
	now          func() time.Time

	busy atomic.Bool

	// Control channels
	startOnce sync.Once
	stopOnce  sync.Once
	started   atomic.Bool
	stopChan  chan struct{}
	doneChan  chan struct{}
}

// NewSyncListener creates a new sync listener
func NewSyncListener(cfg SyncListenerConfig) *SyncListener {
	l := &SyncListener{
		source:       cfg.Source,
		cache:        cfg.Cache,
		interval:     cfg.Interval,
		cycleTimeout: cfg.CycleTimeout,
		aggregateTTL: cfg.AggregateTTL,
		now:          cfg.Clock,
		stopChan:     make(chan struct{}),
		doneChan:     make(chan struct{}),
	}
	if l.interval <= 0 {
		l.interval = DefaultInterval
	}
	if l.cycleTimeout <= 0 {
		l.cycleTimeout = DefaultCycleTimeout
	}
	if l.aggregateTTL <= 0 {
		l.aggregateTTL = store.DefaultUserTTL
	}
	if l.now == nil {
		l.now = time.Now
	}
	return l
}

// Start launches the polling loop. The first cycle runs immediately.
func (l *SyncListener) Start(ctx context.Context) error {
	if l.source == nil || l.cache == nil {
		return fmt.Errorf("sync listener requires a source and a cache")
	}

	err := fmt.Errorf("sync listener already started")
	l.startOnce.Do(func() {
		err = nil
		l.started.Store(true)
		go l.pollLoop(ctx)

		zap.L().Info("Sync listener started",
			zap.Duration("interval", l.interval),
			zap.Duration("aggregate_ttl", l.aggregateTTL))
	})
	return err
}

// Stop signals the polling loop to exit and waits for any in-flight cycle.
func (l *SyncListener) Stop() {
	zap.L().Info("Stopping sync listener")
	l.stopOnce.Do(func() {
		close(l.stopChan)
	})
	if l.started.Load() {
		<-l.doneChan
	}
	zap.L().Info("Sync listener stopped")
}

// pollLoop runs the main polling loop
func (l *SyncListener) pollLoop(ctx context.Context) {
	defer close(l.doneChan)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	l.trigger(ctx)

	for {
		select {
		case <-ticker.C:
			l.trigger(ctx)
		case <-l.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (l *SyncListener) trigger(ctx context.Context) {
	if _, err := l.SyncOnce(ctx); err != nil {
		zap.L().Error("Sync failed", zap.Error(err))
	}
}

// SyncOnce runs one fetch, aggregate and publish cycle unless another cycle
// is already in flight. ran reports whether this call executed the cycle.
func (l *SyncListener) SyncOnce(ctx context.Context) (ran bool, err error) {
	if !l.busy.CompareAndSwap(false, true) {
		zap.L().Debug("Sync already in progress, skipping trigger")
		metrics.SyncCyclesTotal.WithLabelValues("skipped").Inc()
		return false, nil
	}
	defer l.busy.Store(false)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sync cycle panicked: %v", r)
		}
		if err != nil {
			metrics.SyncCyclesTotal.WithLabelValues("failed").Inc()
		}
	}()

	ran = true
	err = l.runCycle(ctx)
	return ran, err
}

// InProgress reports whether a cycle is currently running
func (l *SyncListener) InProgress() bool {
	return l.busy.Load()
}

func (l *SyncListener) runCycle(ctx context.Context) error {
	started := time.Now()

	ctx, cancel := context.WithTimeout(ctx, l.cycleTimeout)
	defer cancel()

	start, found, err := store.ReadCheckpoint(ctx, l.cache)
	if err != nil {
		return err
	}

	end := l.now().UTC()
	if end.Before(start) {
		zap.L().Warn("Clock is behind checkpoint, holding window end at checkpoint",
			zap.Time("checkpoint", start),
			zap.Time("now", end))
		end = start
	}

	zap.L().Debug("Sync window calculated",
		zap.Bool("resumed", found),
		zap.Time("start", start),
		zap.Time("end", end))

	page, err := l.source.Fetch(ctx, start, end, 1)
	if err != nil {
		return fmt.Errorf("failed to fetch transactions: %w", err)
	}

	result := aggregation.Aggregate(page.Items)
	recordTransactionMetrics(page.Items, result)

	if err := l.publish(ctx, result); err != nil {
		return err
	}

	if err := store.WriteCheckpoint(ctx, l.cache, end); err != nil {
		return err
	}

	metrics.SyncCyclesTotal.WithLabelValues("success").Inc()
	metrics.SyncDuration.Observe(time.Since(started).Seconds())
	metrics.LastSyncTimestamp.Set(float64(end.Unix()))

	zap.L().Info("Sync completed",
		zap.Time("checkpoint", end),
		zap.Int("transactions", len(page.Items)),
		zap.Int("total_items", page.Meta.TotalItems),
		zap.Int("users", len(result.Order)),
		zap.Int("declined", len(result.Declined)))

	return nil
}

// publish writes every user aggregate concurrently and returns once all writes finished.
func (l *SyncListener) publish(ctx context.Context, result aggregation.Result) error {
	g, gctx := errgroup.WithContext(ctx)

	for _, data := range result.Aggregates() {
		data := data
		g.Go(func() (err error) {
			// Panics here run outside SyncOnce's recover.
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("publishing aggregate for user %s panicked: %v", data.UserId, r)
				}
			}()

			payload, err := json.Marshal(data)
			if err != nil {
				return fmt.Errorf("failed to encode aggregate for user %s: %w", data.UserId, err)
			}
			if err := l.cache.Set(gctx, store.UserKey(data.UserId), payload, l.aggregateTTL); err != nil {
				return fmt.Errorf("failed to publish aggregate for user %s: %w", data.UserId, err)
			}
			metrics.UsersPublished.Inc()
			return nil
		})
	}

	return g.Wait()
}

func recordTransactionMetrics(items []models.Transaction, result aggregation.Result) {
	declined := len(result.Declined)
	skipped := len(result.Skipped)
	for _, tx := range result.Declined {
		metrics.TransactionsProcessed.WithLabelValues(string(tx.Type), "declined").Inc()
	}
	if skipped > 0 {
		metrics.TransactionsProcessed.WithLabelValues("unknown", "skipped").Add(float64(skipped))
	}

	applied := make(map[models.TransactionType]int)
	for _, tx := range items {
		applied[tx.Type]++
	}
	for _, tx := range result.Declined {
		applied[tx.Type]--
	}
	for _, tx := range result.Skipped {
		applied[tx.Type]--
	}
	for txType, n := range applied {
		if n > 0 {
			metrics.TransactionsProcessed.WithLabelValues(string(txType), "applied").Add(float64(n))
		}
	}

	if declined > 0 || skipped > 0 {
		zap.L().Info("Batch contained rejected transactions",
			zap.Int("declined", declined),
			zap.Int("skipped", skipped))
	}
}
