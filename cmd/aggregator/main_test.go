package main

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestStopListener_Graceful(t *testing.T) {
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
	defer shutdownCancel()

	var cancelled atomic.Bool
	graceful := stopListener(shutdownCtx, func() { cancelled.Store(true) }, func() {})

	if !graceful {
		t.Error("Expected graceful stop")
	}
	if cancelled.Load() {
		t.Error("Expected run context to be left alone")
	}
}

func TestStopListener_WaitsForStopAfterTimeout(t *testing.T) {
	runCtx, cancelRun := context.WithCancel(context.Background())
	defer cancelRun()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer shutdownCancel()

	// stop only returns once the run context is cancelled, and then takes a
	// while longer to unwind.
	var stopped atomic.Bool
	stop := func() {
		<-runCtx.Done()
		time.Sleep(1500 * time.Millisecond)
		stopped.Store(true)
	}

	graceful := stopListener(shutdownCtx, cancelRun, stop)

	if graceful {
		t.Error("Expected timeout path")
	}
	if !stopped.Load() {
		t.Fatal("stopListener returned before the listener finished stopping")
	}
}
