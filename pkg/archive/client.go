package archive

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"saafetch/pkg/config"
	errs "saafetch/pkg/errors"
	"saafetch/pkg/logger"
	"saafetch/pkg/ratelimit"
	"saafetch/pkg/retry"
)

// Client talks to the archive's download API
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	endpoints  Endpoints
	retry      *retry.Config
	limiter    ratelimit.Limiter
	logger     logger.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithHeaders sets extra request headers, overriding defaults with the same key
func WithHeaders(headers map[string]string) Option {
	return func(c *Client) {
		for k, v := range headers {
			c.headers[k] = v
		}
	}
}

// WithRetry sets the transport retry policy
func WithRetry(cfg *retry.Config) Option {
	return func(c *Client) { c.retry = cfg }
}

// WithLimiter throttles every request through l
func WithLimiter(l ratelimit.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// NewClient creates a new archive client
func NewClient(endpoints Endpoints, timeout time.Duration, log logger.Logger, opts ...Option) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		headers: map[string]string{
			"User-Agent": config.DefaultUserAgent,
		},
		endpoints: endpoints,
		retry:     &retry.Config{MaxAttempts: 1},
		limiter:   ratelimit.Unlimited{},
		logger:    log.WithField("component", "archive"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.retry.Logger == nil {
		c.retry.Logger = c.logger
	}
	return c
}

// NewClientFromConfig builds a client from the full configuration.
// The limiter is passed in so that every worker shares one budget.
func NewClientFromConfig(cfg *config.Config, limiter ratelimit.Limiter, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}
	if limiter == nil {
		limiter = ratelimit.New(cfg.RateLimit.RequestsPerMinute)
	}
	return NewClient(
		EndpointsFromConfig(cfg.Archive),
		cfg.Download.DownloadTimeout,
		log,
		WithHeaders(cfg.Headers()),
		WithRetry(retry.FromSettings(cfg.Retry, log)),
		WithLimiter(limiter),
	)
}

// Endpoints returns the endpoints the client talks to
func (c *Client) Endpoints() Endpoints {
	return c.endpoints
}

// FetchDescriptor returns the raw descriptor body for an identifier.
// Transport failures and non-2xx statuses are returned as *errors.Error
// before any body classification happens.
func (c *Client) FetchDescriptor(ctx context.Context, identifier string) ([]byte, error) {
	return c.get(ctx, c.endpoints.DescriptorURL(identifier))
}

// QueueDownload asks the archive to prepare an identifier. The response
// body carries no information and is discarded.
func (c *Client) QueueDownload(ctx context.Context, identifier string) error {
	_, err := c.get(ctx, c.endpoints.QueueURL(identifier))
	return err
}

// ResolveHighres parses a ready descriptor and returns the absolute URL of
// its highres part
func (c *Client) ResolveHighres(body []byte) (string, error) {
	d, err := ParseDescriptor(body)
	if err != nil {
		return "", errs.Wrap(errs.ErrorTypeParsing, "", err)
	}
	ref, err := d.HighresURL()
	if err != nil {
		return "", errs.Wrap(errs.ErrorTypeParsing, "", err)
	}
	abs, err := c.endpoints.Resolve(ref)
	if err != nil {
		return "", errs.Wrap(errs.ErrorTypeParsing, ref, err)
	}
	return abs, nil
}

// Download fetches the binary asset at rawURL
func (c *Client) Download(ctx context.Context, rawURL string) ([]byte, error) {
	return c.get(ctx, rawURL)
}

// get performs a GET with throttling and the configured retry policy
func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	return retry.DoWithResult(ctx, func(ctx context.Context) ([]byte, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		return c.getOnce(ctx, rawURL)
	}, c.retry)
}

func (c *Client) getOnce(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeUnknown, rawURL, fmt.Errorf("create request: %w", err))
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.DebugWithFields("HTTP request failed", map[string]interface{}{
			"url":      rawURL,
			"error":    err.Error(),
			"duration": time.Since(start),
		})
		return nil, errs.Wrap(errs.ErrorTypeNetwork, rawURL, err)
	}
	defer resp.Body.Close()

	logger.LogRequest(c.logger, req.Method, rawURL, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, errs.FromStatusCode(resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeNetwork, rawURL, fmt.Errorf("read body: %w", err))
	}
	return body, nil
}
