package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/samalsubrat/mk-price-tracker/internal/domain"
	logx "github.com/samalsubrat/mk-price-tracker/pkg/logger"
)

// Options holds the transport settings shared by every vendor feed
type Options struct {
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	MaxRetries        int
	Debug             bool
	Breaker           BreakerSettings
}

// BreakerSettings configures the per-vendor circuit breaker
type BreakerSettings struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// Client fetches one vendor's product feed: a JSON array of listings served
// by that vendor's scrape endpoint.
type Client struct {
	name        string
	url         string
	httpClient  *resty.Client
	rateLimiter *rate.Limiter
	breaker     *gobreaker.CircuitBreaker
	maxRetries  int
	debug       bool
	logger      zerolog.Logger
}

// NewClient creates a feed client for the vendor feed at url
func NewClient(name, url string, opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	rps := opts.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}

	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}

	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	c := &Client{
		name: name,
		url:  url,
		httpClient: resty.New().
			SetTimeout(timeout).
			SetHeader("User-Agent", "mk-price-tracker/1.0").
			SetHeader("Accept", "application/json"),
		rateLimiter: rate.NewLimiter(rate.Limit(rps), burst),
		maxRetries:  maxRetries,
		debug:       opts.Debug,
		logger:      logx.Component("feed").With().Str("source", name).Logger(),
	}
	c.breaker = newBreaker(name, opts.Breaker, c.logger)

	return c
}

// SetDebug enables or disables request logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// Name returns the vendor name of this feed
func (c *Client) Name() string {
	return c.name
}

// URL returns the feed endpoint
func (c *Client) URL() string {
	return c.url
}

// Fetch downloads and decodes the vendor feed. Failures are returned
// wrapped in domain.ErrSourceFailure; when the breaker is open the call
// fails fast without touching the network.
func (c *Client) Fetch(ctx context.Context) ([]domain.RawProduct, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetchWithRetry(ctx)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrSourceFailure, c.name, err)
		}
		return nil, err
	}

	products, _ := result.([]domain.RawProduct)
	return products, nil
}

// fetchWithRetry retries transient failures (network errors, 5xx, 429)
func (c *Client) fetchWithRetry(ctx context.Context) ([]domain.RawProduct, error) {
	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		// Wait for rate limiter
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %s: rate limiter: %v", domain.ErrSourceFailure, c.name, err)
		}

		resp, err := c.httpClient.R().SetContext(ctx).Get(c.url)
		if err != nil {
			c.logger.Warn().Err(err).Int("attempt", attempt).Msg("request error")
			lastErr = fmt.Errorf("%w: %s: %v", domain.ErrSourceFailure, c.name, err)
			if ctx.Err() != nil {
				return nil, lastErr
			}
			if !sleep(ctx, exponentialBackoff(attempt)) {
				return nil, lastErr
			}
			continue
		}

		status := resp.StatusCode()
		if c.debug {
			c.logger.Debug().Int("status", status).Int("bytes", len(resp.Body())).Int("attempt", attempt).Msg("feed response")
		}

		if status != http.StatusOK {
			lastErr = fmt.Errorf("%w: %s: status %d", domain.ErrSourceFailure, c.name, status)
			if !isRetryable(status) {
				return nil, lastErr
			}
			c.logger.Warn().Int("status", status).Int("attempt", attempt).Msg("feed error")
			if !sleep(ctx, exponentialBackoff(attempt)) {
				return nil, lastErr
			}
			continue
		}

		var items []Item
		if err := json.Unmarshal(resp.Body(), &items); err != nil {
			return nil, fmt.Errorf("%w: %s: decode feed: %v", domain.ErrSourceFailure, c.name, err)
		}

		products := MapToRawProducts(items)
		c.logger.Debug().Int("products", len(products)).Msg("feed fetched")
		return products, nil
	}

	return nil, lastErr
}

// exponentialBackoff returns the delay before the next attempt: 500ms, 1s, 2s, ...
func exponentialBackoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return time.Duration(500*(1<<(attempt-1))) * time.Millisecond
}

// isRetryable reports whether a status code is worth another attempt
func isRetryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// sleep waits for d or until ctx is done; it reports whether the full delay elapsed
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// newBreaker builds the circuit breaker guarding one vendor feed
func newBreaker(name string, settings BreakerSettings, logger zerolog.Logger) *gobreaker.CircuitBreaker {
	maxRequests := settings.MaxRequests
	if maxRequests == 0 {
		maxRequests = 1
	}

	interval := settings.Interval
	if interval <= 0 {
		interval = 10 * time.Minute
	}

	timeout := settings.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}

	threshold := settings.FailureThreshold
	if threshold <= 0 || threshold > 1 {
		threshold = 0.6
	}

	minRequests := settings.MinRequests
	if minRequests == 0 {
		minRequests = 3
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "feed:" + strings.ToLower(name),
		MaxRequests: maxRequests,
		Interval:    interval,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			// Only trip if we have enough requests to make a decision
			if counts.Requests < minRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= threshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	})
}
