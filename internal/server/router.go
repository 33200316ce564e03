package server

import (
	"net/http"

	"txn-aggregation-go/internal/api"
	"txn-aggregation-go/internal/metrics"

	"github.com/go-chi/chi/v5"
)

func NewRouter(svc *api.AggregationService) http.Handler {
	h := &handlers{svc: svc}

	r := chi.NewRouter()
	r.Use(recoverer, requestMetrics)

	r.Get("/health", h.health)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/aggregation", func(r chi.Router) {
		r.Get("/user/{userId}", h.userAggregate)
		r.Get("/user/{userId}/transactions", h.userTransactions)
		r.Get("/transactions", h.transactionsForPeriod)
		r.Get("/payouts", h.payouts)
	})

	return r
}
