package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Sync cycles
	SyncCyclesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aggregation_sync_cycles_total",
			Help: "Sync cycles by outcome",
		},
		[]string{"outcome"}, // success|failed|skipped
	)
	SyncDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "aggregation_sync_duration_seconds",
			Help:    "Duration of completed sync cycles",
			Buckets: prometheus.DefBuckets,
		},
	)
	LastSyncTimestamp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "aggregation_last_sync_timestamp_seconds",
			Help: "Checkpoint written by the last successful sync",
		},
	)

	// Transactions
	TransactionsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aggregation_transactions_total",
			Help: "Transactions folded into aggregates",
		},
		[]string{"type", "result"}, // result: applied|declined|skipped
	)
	UsersPublished = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "aggregation_users_published_total",
			Help: "User aggregates written to the cache",
		},
	)

	// HTTP
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	registerOnce sync.Once
)

// Handler serves the /metrics endpoint
var Handler = promhttp.Handler

// Init registers all collectors with the default registry. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(SyncCyclesTotal)
		prometheus.MustRegister(SyncDuration)
		prometheus.MustRegister(LastSyncTimestamp)
		prometheus.MustRegister(TransactionsProcessed)
		prometheus.MustRegister(UsersPublished)
		prometheus.MustRegister(RequestsTotal)
	})
}
