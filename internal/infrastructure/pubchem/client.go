// Package pubchem is the remote lookup client for PubChem PUG-REST and NCBI
// Entrez. Every request goes through a token-bucket limiter and a bounded
// retry loop: 429 and 503 are retried after fixed delays up to MaxAttempts,
// 404 is reported as "no record", anything else fails the call.
package pubchem

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/turtacn/chemidr/internal/config"
	"github.com/turtacn/chemidr/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/chemidr/pkg/errors"
)

// Endpoint labels used for metrics and logs.
const (
	EndpointName      = "name_synonyms"
	EndpointInChIKey  = "cid_inchikey"
	EndpointESearch   = "entrez_esearch"
	EndpointSubstance = "substance_xml"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 16 << 20

// Metrics receives per-attempt observations. *prometheus.AppMetrics
// satisfies it.
type Metrics interface {
	ObserveRemoteRequest(endpoint string, status int, elapsed time.Duration)
	IncRemoteRetry(endpoint string, status int)
	IncRemoteRetryExhausted(endpoint string)
}

type nopMetrics struct{}

func (nopMetrics) ObserveRemoteRequest(string, int, time.Duration) {}
func (nopMetrics) IncRemoteRetry(string, int)                      {}
func (nopMetrics) IncRemoteRetryExhausted(string)                  {}

// RetryPolicy bounds the retry loop.
type RetryPolicy struct {
	MaxAttempts      int
	RateLimitedDelay time.Duration
	BusyDelay        time.Duration
}

// Config configures a Client.
type Config struct {
	BaseURL   string
	EntrezURL string
	APIKey    string
	UserAgent string
	Timeout   time.Duration
	RateLimit float64
	Burst     int
	BatchSize int
	Retry     RetryPolicy
}

// ConfigFrom maps application configuration onto a client Config.
func ConfigFrom(pc config.PubChemConfig, rc config.RetryConfig) Config {
	return Config{
		BaseURL:   pc.BaseURL,
		EntrezURL: pc.EntrezURL,
		APIKey:    pc.APIKey,
		UserAgent: pc.UserAgent,
		Timeout:   pc.Timeout,
		RateLimit: pc.RateLimit,
		Burst:     pc.Burst,
		BatchSize: pc.BatchSize,
		Retry: RetryPolicy{
			MaxAttempts:      rc.MaxAttempts,
			RateLimitedDelay: rc.RateLimitedDelay,
			BusyDelay:        rc.BusyDelay,
		},
	}
}

func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = config.DefaultPubChemBaseURL
	}
	if c.EntrezURL == "" {
		c.EntrezURL = config.DefaultEntrezURL
	}
	if c.UserAgent == "" {
		c.UserAgent = config.DefaultUserAgent
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	if c.RateLimit == 0 {
		c.RateLimit = config.DefaultRateLimit
	}
	if c.Burst == 0 {
		c.Burst = config.DefaultBurst
	}
	if c.BatchSize <= 0 || c.BatchSize > config.MaxPubChemBatch {
		c.BatchSize = config.MaxPubChemBatch
	}
	if c.Retry.MaxAttempts <= 0 {
		c.Retry.MaxAttempts = config.DefaultMaxAttempts
	}
	if c.Retry.RateLimitedDelay == 0 {
		c.Retry.RateLimitedDelay = config.DefaultRateLimitedDelay
	}
	if c.Retry.BusyDelay == 0 {
		c.Retry.BusyDelay = config.DefaultBusyDelay
	}
}

// Client talks to PubChem and Entrez. It holds no per-lookup state and is
// safe for concurrent use.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	logger  logging.Logger
	metrics Metrics
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithMetrics attaches a metrics sink.
func WithMetrics(m Metrics) Option {
	return func(c *Client) {
		if m != nil {
			c.metrics = m
		}
	}
}

// NewClient constructs a Client.
func NewClient(cfg Config, logger logging.Logger, opts ...Option) *Client {
	cfg.applyDefaults()
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	c := &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.Burst),
		logger:  logger.Named("pubchem"),
		metrics: nopMetrics{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BatchSize is the number of CIDs sent per InChIKey request.
func (c *Client) BatchSize() int { return c.cfg.BatchSize }

// fetch GETs rawURL under the retry policy. found is false on 404.
func (c *Client) fetch(ctx context.Context, endpoint, rawURL string) (body []byte, found bool, err error) {
	lastStatus := 0
	for attempt := 1; attempt <= c.cfg.Retry.MaxAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, false, errors.Wrap(err, errors.ErrCodeTimeout, "rate limiter wait")
		}

		status, payload, err := c.do(ctx, endpoint, rawURL)
		if err != nil {
			return nil, false, err
		}
		lastStatus = status

		var delay time.Duration
		switch status {
		case http.StatusOK:
			return payload, true, nil
		case http.StatusNotFound:
			return nil, false, nil
		case http.StatusTooManyRequests:
			delay = c.cfg.Retry.RateLimitedDelay
		case http.StatusServiceUnavailable:
			delay = c.cfg.Retry.BusyDelay
		default:
			return nil, false, errors.Newf(errors.ErrCodeRemoteLookupFailed,
				"%s returned status %d", endpoint, status).WithDetail(rawURL)
		}

		if attempt == c.cfg.Retry.MaxAttempts {
			break
		}
		c.metrics.IncRemoteRetry(endpoint, status)
		c.logger.Debug("transient upstream status, retrying",
			logging.String("endpoint", endpoint),
			logging.Int("status", status),
			logging.Int("attempt", attempt),
			logging.Duration("delay", delay))
		if err := sleep(ctx, delay); err != nil {
			return nil, false, errors.Wrap(err, errors.ErrCodeTimeout, "retry wait interrupted")
		}
	}

	c.metrics.IncRemoteRetryExhausted(endpoint)
	c.logger.Warn("retry limit reached",
		logging.String("endpoint", endpoint),
		logging.Int("attempts", c.cfg.Retry.MaxAttempts),
		logging.Int("last_status", lastStatus))
	return nil, false, errors.RetryExhausted(c.cfg.Retry.MaxAttempts, lastStatus).WithDetail(
		fmt.Sprintf("%s last status %d", endpoint, lastStatus))
}

// do performs a single attempt and returns the status and, for 200, the body.
func (c *Client) do(ctx context.Context, endpoint, rawURL string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, nil, errors.Wrap(err, errors.ErrCodeRemoteLookupFailed, "build request").WithDetail(rawURL)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.ObserveRemoteRequest(endpoint, 0, time.Since(start))
		if ctx.Err() != nil {
			return 0, nil, errors.Wrap(ctx.Err(), errors.ErrCodeTimeout, "request cancelled")
		}
		return 0, nil, errors.Wrap(err, errors.ErrCodeRemoteLookupFailed, "request failed").WithDetail(rawURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		c.metrics.ObserveRemoteRequest(endpoint, resp.StatusCode, time.Since(start))
		return resp.StatusCode, nil, nil
	}

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	c.metrics.ObserveRemoteRequest(endpoint, resp.StatusCode, time.Since(start))
	if err != nil {
		return 0, nil, errors.Wrap(err, errors.ErrCodeRemoteLookupFailed, "read response body").WithDetail(rawURL)
	}
	return resp.StatusCode, payload, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

//Personal.AI order the ending
