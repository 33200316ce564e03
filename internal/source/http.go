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
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"txn-aggregation-go/internal/models"

	"go.uber.org/zap"
	"golang.org/x/net/http2"
)

// HTTPClient fetches transactions from a remote provider exposing
// GET /transactions?startDate=&endDate=&page= and answering {items, meta}.
type HTTPClient struct {
	baseURL *url.URL
	client  http.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) (*HTTPClient, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("source base url cannot be empty")
	}
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid source base url %q: %w", baseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("unsupported source url scheme %q", parsed.Scheme)
	}

	httpClient, err := createCustomHttpClient(timeout)
	if err != nil {
		return nil, fmt.Errorf("unable to create custom http client: %w", err)
	}

	return &HTTPClient{baseURL: parsed, client: httpClient}, nil
}

func createCustomHttpClient(timeout time.Duration) (http.Client, error) {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	tr := &http.Transport{
		ResponseHeaderTimeout: 30 * time.Second,
		Proxy:                 http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			KeepAlive: 30 * time.Second,
			Timeout:   15 * time.Second,
		}).DialContext,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		MaxIdleConnsPerHost:   5,
		ExpectContinueTimeout: 5 * time.Second,
	}

	if err := http2.ConfigureTransport(tr); err != nil {
		return http.Client{}, err
	}

	return http.Client{
		Transport: tr,
		Timeout:   timeout,
	}, nil
}

func (c *HTTPClient) Fetch(ctx context.Context, start, end time.Time, page int) (*models.TransactionPage, error) {
	page = normalizePage(page)

	endpoint := *c.baseURL
	endpoint.Path = endpoint.Path + "/transactions"
	q := endpoint.Query()
	q.Set("startDate", start.UTC().Format(time.RFC3339Nano))
	q.Set("endDate", end.UTC().Format(time.RFC3339Nano))
	q.Set("page", strconv.Itoa(page))
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("unable to build source request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	zap.L().Debug("Fetching transactions from source",
		zap.String("url", endpoint.String()),
		zap.Int("page", page))

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrSourceUnavailable, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result models.TransactionPage
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: invalid response body: %v", ErrSourceUnavailable, err)
	}
	if result.Items == nil {
		result.Items = []models.Transaction{}
	}
	for i, tx := range result.Items {
		if err := validateTransaction(tx); err != nil {
			return nil, fmt.Errorf("%w: item %d: %v", ErrSourceUnavailable, i, err)
		}
	}

	zap.L().Debug("Fetched transactions from source",
		zap.Int("items", len(result.Items)),
		zap.Int("total_items", result.Meta.TotalItems),
		zap.Int("total_pages", result.Meta.TotalPages))

	return &result, nil
}

// validateTransaction rejects records the aggregation rules cannot fold safely
func validateTransaction(tx models.Transaction) error {
	if tx.UserId == "" {
		return fmt.Errorf("transaction %s has no userId", tx.Id)
	}
	if !tx.Type.Valid() {
		return fmt.Errorf("transaction %s has unknown type %q", tx.Id, tx.Type)
	}
	if tx.Amount.IsNegative() {
		return fmt.Errorf("transaction %s has negative amount %s", tx.Id, tx.Amount.String())
	}
	return nil
}
