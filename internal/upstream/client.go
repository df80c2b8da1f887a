// Package upstream talks to the client profile, diet template and recipe
// services over HTTP.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/Veraticus/plate-audit/internal/cache"
	"github.com/Veraticus/plate-audit/internal/common"
)

// Default header sources and timeouts.
const (
	DefaultClientSource      = "cs_db"
	DefaultTemplateSource    = "mentor_db"
	DefaultTimeout           = 30 * time.Second
	DefaultEnrichmentTimeout = 5 * time.Second
)

// maxErrorBody bounds how much of a failed response is kept for diagnostics.
const maxErrorBody = 4096

// Config holds endpoints and credentials for the upstream services.
type Config struct {
	APIToken          string
	ClientURL         string
	ClientSource      string
	TemplateURL       string
	TemplateSource    string
	RecipeURL         string
	RateLimit         float64 // requests per second, 0 disables the limit
	Timeout           time.Duration
	EnrichmentTimeout time.Duration
}

// Client is the shared HTTP adapter for every upstream service.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      cache.IngredientCache
	logger     *slog.Logger
	cfg        Config
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithCache sets the ingredient cache used by Enrich.
func WithCache(ic cache.IngredientCache) Option {
	return func(c *Client) { c.cache = ic }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates an upstream client. Without WithCache an in-memory cache
// is used for the client's lifetime.
func NewClient(cfg Config, opts ...Option) *Client {
	if cfg.ClientSource == "" {
		cfg.ClientSource = DefaultClientSource
	}
	if cfg.TemplateSource == "" {
		cfg.TemplateSource = DefaultTemplateSource
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.EnrichmentTimeout <= 0 {
		cfg.EnrichmentTimeout = DefaultEnrichmentTimeout
	}

	limit := rate.Inf
	burst := 1
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
		burst = max(1, int(cfg.RateLimit))
	}

	c := &Client{
		cfg:     cfg,
		limiter: rate.NewLimiter(limit, burst),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cache == nil {
		c.cache = cache.NewMemory()
	}
	c.logger = common.LoggerOrDefault(c.logger)

	return c
}

// do performs one request and decodes the JSON response into out.
// Every failure is returned as a *common.UpstreamError.
func (c *Client) do(ctx context.Context, method, endpoint, source string, body any, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &common.UpstreamError{Endpoint: endpoint, Err: fmt.Errorf("rate limiter: %w", err)}
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIToken)
	if source != "" {
		req.Header.Set("Source", source)
	}

	c.logger.Debug("upstream request", "method", method, "endpoint", endpoint)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &common.UpstreamError{Endpoint: endpoint, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &common.UpstreamError{Endpoint: endpoint, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("upstream request failed",
			"endpoint", endpoint,
			"status", resp.StatusCode)
		return &common.UpstreamError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       truncate(string(raw), maxErrorBody),
		}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return &common.UpstreamError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       truncate(string(raw), maxErrorBody),
			Err:        fmt.Errorf("failed to parse response: %w", err),
		}
	}

	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
