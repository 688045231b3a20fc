package ratesapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	portsrepo "github.com/SscSPs/money_records_app/internal/core/ports/repositories"
	"github.com/SscSPs/money_records_app/internal/middleware"
)

// ErrNotConfigured is returned when no provider URL was configured.
var ErrNotConfigured = errors.New("rate provider URL not configured")

// latestRatesResponse is the v6 "latest" payload of exchangerate-api.com and compatible services.
type latestRatesResponse struct {
	Result          string             `json:"result"`
	BaseCode        string             `json:"base_code"`
	ConversionRates map[string]float64 `json:"conversion_rates"`
	ErrorType       string             `json:"error-type,omitempty"`
}

// Client fetches the full rate table for the base currency with a single GET.
type Client struct {
	url        string
	httpClient *http.Client
}

var _ portsrepo.RateProvider = (*Client)(nil)

// NewClient creates a rate provider client. url is the full "latest" endpoint,
// e.g. https://v6.exchangerate-api.com/v6/<key>/latest/INR.
func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FetchRates performs one request per call; results are not cached.
func (c *Client) FetchRates(ctx context.Context) (map[string]float64, error) {
	if c.url == "" {
		return nil, ErrNotConfigured
	}
	logger := middleware.GetLoggerFromCtx(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rates: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("rate provider returned status %d: %s", resp.StatusCode, string(body))
	}

	var apiResp latestRatesResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	// Some compatible providers omit "result"; only an explicit non-success is an error.
	if apiResp.Result != "" && apiResp.Result != "success" {
		return nil, fmt.Errorf("rate provider returned result=%s error-type=%s", apiResp.Result, apiResp.ErrorType)
	}
	if apiResp.ConversionRates == nil {
		return nil, errors.New("rate provider response has no conversion_rates")
	}

	logger.Debug("Fetched conversion rates",
		slog.String("base_code", apiResp.BaseCode),
		slog.Int("count", len(apiResp.ConversionRates)),
		slog.Duration("latency", time.Since(start)))
	return apiResp.ConversionRates, nil
}
