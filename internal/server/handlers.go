package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"txn-aggregation-go/internal/api"
	"txn-aggregation-go/internal/models"
	"txn-aggregation-go/internal/store"

	"github.com/go-chi/chi/v5"
)

const dateOnlyLayout = "2006-01-02"

type handlers struct {
	svc *api.AggregationService
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	status, err := h.svc.HealthCheck(r.Context())
	if err != nil {
		WriteError(w, http.StatusServiceUnavailable, "cache_unavailable", "cache health check failed", err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, status)
}

func (h *handlers) userAggregate(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.GetUserAggregate(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, data)
}

func (h *handlers) userTransactions(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseWindow(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_date", "invalid date range", err.Error())
		return
	}

	txs, err := h.svc.GetTransactions(r.Context(), api.TransactionQuery{
		UserId: chi.URLParam(r, "userId"),
		Start:  start,
		End:    end,
		Type:   models.TransactionType(r.URL.Query().Get("type")),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, nonNil(txs))
}

func (h *handlers) transactionsForPeriod(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseWindow(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_date", "invalid date range", err.Error())
		return
	}

	txs, err := h.svc.GetTransactionsForPeriod(r.Context(), start, end)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, nonNil(txs))
}

func (h *handlers) payouts(w http.ResponseWriter, r *http.Request) {
	requests, err := h.svc.GetPayoutRequests(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if requests == nil {
		requests = []models.PayoutRequest{}
	}
	WriteJSON(w, http.StatusOK, requests)
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, api.ErrNotFound):
		WriteError(w, http.StatusNotFound, "not_found", "user aggregate not found", "")
	case errors.Is(err, api.ErrInvalidArgument):
		WriteError(w, http.StatusBadRequest, "invalid_argument", "invalid request", err.Error())
	default:
		WriteError(w, http.StatusInternalServerError, "internal_error", "failed to serve request", err.Error())
	}
}

// parseWindow reads startDate and endDate. A missing startDate means the
// beginning of history and a missing endDate means now.
func parseWindow(r *http.Request) (time.Time, time.Time, error) {
	q := r.URL.Query()

	start := store.Epoch
	if v := q.Get("startDate"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("startDate: %w", err)
		}
		start = t
	}

	var end time.Time
	if v := q.Get("endDate"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("endDate: %w", err)
		}
		end = t
	}
	return start, end, nil
}

func parseDate(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
		return t, nil
	}
	t, err := time.Parse(dateOnlyLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q is not an RFC 3339 timestamp or YYYY-MM-DD date", v)
	}
	return t, nil
}

func nonNil(txs []models.Transaction) []models.Transaction {
	if txs == nil {
		return []models.Transaction{}
	}
	return txs
}
