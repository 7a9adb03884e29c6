package datasource

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/yourusername/footy-better/internal/metrics"
)

// HTTPClientConfig holds configuration for HTTP clients
type HTTPClientConfig struct {
	Timeout         time.Duration
	MaxRetries      int
	RetryWaitMin    time.Duration
	RetryWaitMax    time.Duration
	RateLimit       float64 // requests per second
	Burst           int
	BreakerMax      int // consecutive failures before the circuit opens
	BreakerCooldown time.Duration
}

// DefaultHTTPClientConfig returns recommended defaults
func DefaultHTTPClientConfig() HTTPClientConfig {
	return HTTPClientConfig{
		Timeout:         30 * time.Second,
		MaxRetries:      3,
		RetryWaitMin:    100 * time.Millisecond,
		RetryWaitMax:    10 * time.Second,
		RateLimit:       10.0,
		Burst:           1,
		BreakerMax:      5,
		BreakerCooldown: 30 * time.Second,
	}
}

// RateLimitedHTTPClient wraps retryablehttp.Client with rate limiting and a
// circuit breaker. After BreakerMax consecutive failures requests fail fast
// until BreakerCooldown has passed; the next request then probes the
// upstream and a success closes the circuit again.
type RateLimitedHTTPClient struct {
	client  *retryablehttp.Client
	limiter *rate.Limiter
	logger  *logrus.Logger

	mu              sync.Mutex
	breakerMax      int
	breakerCooldown time.Duration
	failures        int
	openedAt        time.Time
	isOpen          bool
	lastError       error
}

// NewRateLimitedHTTPClient creates a new rate-limited HTTP client
func NewRateLimitedHTTPClient(cfg HTTPClientConfig, logger *logrus.Logger) *RateLimitedHTTPClient {
	if logger == nil {
		logger = logrus.New()
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient.Timeout = cfg.Timeout
	retryClient.RetryMax = cfg.MaxRetries
	retryClient.RetryWaitMin = cfg.RetryWaitMin
	retryClient.RetryWaitMax = cfg.RetryWaitMax
	retryClient.CheckRetry = customRetryPolicy()
	retryClient.Logger = nil

	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	return &RateLimitedHTTPClient{
		client:          retryClient,
		limiter:         rate.NewLimiter(rate.Limit(cfg.RateLimit), burst),
		breakerMax:      cfg.BreakerMax,
		breakerCooldown: cfg.BreakerCooldown,
		logger:          logger,
	}
}

// Do executes an HTTP request with rate limiting and circuit breaker
func (c *RateLimitedHTTPClient) Do(req *http.Request) (*http.Response, error) {
	if err := c.checkBreaker(); err != nil {
		return nil, err
	}

	if !c.limiter.Allow() {
		metrics.RecordRateLimitWait()
		if err := c.limiter.Wait(req.Context()); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}
	}

	retryReq, err := retryablehttp.FromRequest(req)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare request: %w", err)
	}

	resp, err := c.client.Do(retryReq)
	if err != nil {
		c.recordFailure(err)
		return nil, err
	}

	if resp.StatusCode >= 500 {
		c.recordFailure(fmt.Errorf("upstream status %d", resp.StatusCode))
	} else {
		c.recordSuccess()
	}

	return resp, nil
}

// Get executes a GET request
func (c *RateLimitedHTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return c.Do(req)
}

// Close closes any resources held by the client
func (c *RateLimitedHTTPClient) Close() error {
	c.client.HTTPClient.CloseIdleConnections()
	return nil
}

// checkBreaker fails fast while the circuit is open and not yet cooled down.
func (c *RateLimitedHTTPClient) checkBreaker() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isOpen {
		return nil
	}
	if time.Since(c.openedAt) < c.breakerCooldown {
		return fmt.Errorf("%w: %v", ErrCircuitOpen, c.lastError)
	}

	// Cooldown elapsed: let this request through as a probe.
	c.logger.WithField("component", "http_client").Info("Circuit breaker half-open, probing upstream")
	return nil
}

func (c *RateLimitedHTTPClient) recordFailure(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.failures++
	c.lastError = err
	if c.failures >= c.breakerMax && !c.isOpen {
		c.isOpen = true
		c.openedAt = time.Now()
		metrics.SetBreakerOpen(true)
		c.logger.WithFields(logrus.Fields{
			"component":            "http_client",
			"consecutive_failures": c.failures,
		}).Warn("Circuit breaker opened")
	} else if c.isOpen {
		// Failed probe: restart the cooldown window.
		c.openedAt = time.Now()
	}
}

func (c *RateLimitedHTTPClient) recordSuccess() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isOpen {
		metrics.SetBreakerOpen(false)
		c.logger.WithField("component", "http_client").Info("Circuit breaker closed after successful probe")
	}
	c.failures = 0
	c.isOpen = false
}

// customRetryPolicy defines which HTTP responses should trigger a retry
func customRetryPolicy() retryablehttp.CheckRetry {
	return func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		if err != nil {
			// Retry on network errors
			return true, nil
		}

		// Retry on rate limit (429) and transient upstream errors
		switch resp.StatusCode {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true, nil
		}

		// Don't retry on other client errors
		return false, nil
	}
}
