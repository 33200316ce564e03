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
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"txn-aggregation-go/internal/common"
	"txn-aggregation-go/internal/config"
	"txn-aggregation-go/internal/listener"
	"txn-aggregation-go/internal/metrics"
	"txn-aggregation-go/internal/server"

	"go.uber.org/zap"
)

func main() {
	noServer := flag.Bool("no-http", false, "Run the sync loop without the HTTP query API")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		_, _ = zap.NewProduction()
		zap.L().Fatal("Failed to load configuration", zap.Error(err))
	}

	_, loggerCleanup := common.InitializeLogger(cfg.LogLevel)
	defer loggerCleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	zap.L().Info("Starting transaction aggregator",
		zap.String("cache_backend", cfg.Cache.Backend),
		zap.String("source_backend", cfg.Source.Backend),
		zap.Duration("sync_interval", cfg.Sync.Interval))

	metrics.Init()

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	syncListener := listener.NewSyncListener(listener.SyncListenerConfig{
		Source:       services.Source,
		Cache:        services.Cache,
		Interval:     cfg.Sync.Interval,
		CycleTimeout: cfg.Sync.CycleTimeout,
		AggregateTTL: cfg.Sync.AggregateTTL,
	})
	if err := syncListener.Start(ctx); err != nil {
		zap.L().Fatal("Failed to start sync listener", zap.Error(err))
	}

	var httpServer *http.Server
	if !*noServer {
		httpServer = &http.Server{
			Addr:              net.JoinHostPort("", cfg.Server.Port),
			Handler:           server.NewRouter(services.QueryService),
			ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		}
		go func() {
			zap.L().Info("HTTP query API listening", zap.String("addr", httpServer.Addr))
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				zap.L().Error("HTTP server stopped", zap.Error(err))
			}
		}()
	}

	zap.L().Info("Press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	zap.L().Info("Shutdown signal received, stopping aggregator...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if httpServer != nil {
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			zap.L().Warn("HTTP server shutdown incomplete", zap.Error(err))
		}
	}

	// The listener must stop before the deferred cache close runs.
	if stopListener(shutdownCtx, cancel, syncListener.Stop) {
		zap.L().Info("Sync listener stopped gracefully")
	} else {
		zap.L().Info("Sync listener stopped after cancellation")
	}
}

// stopListener runs stop and waits for it to return. If shutdownCtx expires
// first, cancelRun is called to abort the in-flight cycle and the wait
// continues. It reports whether stop finished before the deadline.
func stopListener(shutdownCtx context.Context, cancelRun context.CancelFunc, stop func()) bool {
	done := make(chan struct{})
	go func() {
		stop()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-shutdownCtx.Done():
		zap.L().Warn("Shutdown timeout reached, cancelling in-flight sync")
		cancelRun()
		<-done
		return false
	}
}
