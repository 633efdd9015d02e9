// Package fx fetches fiat exchange rates from an HTTP rate-lookup API of
// the form GET {baseURL}/{BASE} → {"base": "USD", "rates": {"EUR": 0.92}}.
package fx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rb-rbloxk/ClubLiquidez-1/market"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultBaseURL is the public exchangerate-api endpoint.
	DefaultBaseURL = "https://api.exchangerate-api.com/v4/latest"
	// DefaultTimeout bounds one HTTP round trip.
	DefaultTimeout = 5 * time.Second
)

// Client is a rate provider client. Concurrent lookups for the same base
// currency share one HTTP request.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
	group      singleflight.Group
}

// NewClient creates a rate provider client. An empty baseURL selects
// DefaultBaseURL; apiKey is optional.
func NewClient(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// latestResponse is the provider payload
type latestResponse struct {
	Base  string             `json:"base"`
	Date  string             `json:"date"`
	Rates map[string]float64 `json:"rates"`
}

// Latest returns every rate the provider publishes for base.
func (c *Client) Latest(ctx context.Context, base string) (map[string]float64, error) {
	base = strings.ToUpper(strings.TrimSpace(base))
	if base == "" {
		return nil, fmt.Errorf("base currency is required")
	}

	// The shared request must not die with whichever caller started it.
	ch := c.group.DoChan(base, func() (interface{}, error) {
		return c.fetchLatest(context.WithoutCancel(ctx), base)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(map[string]float64), nil
	}
}

// FetchRate returns units of quote per 1 unit of base.
func (c *Client) FetchRate(ctx context.Context, base, quote string) (float64, error) {
	quote = strings.ToUpper(strings.TrimSpace(quote))

	rates, err := c.Latest(ctx, base)
	if err != nil {
		return 0, err
	}

	rate, ok := rates[quote]
	if !ok || rate <= 0 {
		rateRequests.WithLabelValues("missing").Inc()
		return 0, fmt.Errorf("%w: no %s rate for base %s", market.ErrRateUnavailable, quote, base)
	}
	return rate, nil
}

func (c *Client) fetchLatest(ctx context.Context, base string) (map[string]float64, error) {
	start := time.Now()
	defer func() {
		rateRequestDuration.Observe(time.Since(start).Seconds())
	}()

	apiURL := fmt.Sprintf("%s/%s", c.baseURL, url.PathEscape(base))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		rateRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		rateRequests.WithLabelValues("error").Inc()
		c.logger.Warn("rate request failed", zap.String("base", base), zap.Error(err))
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		rateRequests.WithLabelValues("error").Inc()
		c.logger.Warn("rate provider error",
			zap.String("base", base),
			zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var payload latestResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		rateRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(payload.Rates) == 0 {
		rateRequests.WithLabelValues("missing").Inc()
		return nil, fmt.Errorf("%w: empty rates for base %s", market.ErrRateUnavailable, base)
	}

	rateRequests.WithLabelValues("ok").Inc()
	c.logger.Debug("fetched rates",
		zap.String("base", base),
		zap.Int("count", len(payload.Rates)),
		zap.Duration("latency", time.Since(start)))

	return payload.Rates, nil
}
