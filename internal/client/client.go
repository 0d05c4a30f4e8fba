package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"
)

// FastClient defines the interface for talking to the fast.com speed-test service.
type FastClient interface {
	FetchToken(ctx context.Context) (string, error)
	GetTargets(ctx context.Context, token string, urlCount int) (*TargetsResponse, error)
	Download(ctx context.Context, targetURL string, size int64, counter *atomic.Int64) error
	Upload(ctx context.Context, targetURL string, size int64, counter *atomic.Int64) error
	Probe(ctx context.Context, targetURL string) (time.Duration, error)
	BaseURL() string
}

// ClientConfig holds configuration for DefaultClient.
type ClientConfig struct {
	BaseURL        string // web front-end serving the app script, e.g. https://fast.com
	APIURL         string // target discovery API, e.g. https://api.fast.com
	UserAgent      string
	RequestTimeout time.Duration // applies to metadata requests, not transfers
}

// DefaultClient implements FastClient using the standard net/http package.
type DefaultClient struct {
	http   *http.Client
	config ClientConfig
}

// NewDefaultClient constructs a DefaultClient from the given config.
// Returns an error if BaseURL or APIURL is empty.
func NewDefaultClient(cfg ClientConfig) (*DefaultClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("BaseURL is required")
	}
	if cfg.APIURL == "" {
		return nil, fmt.Errorf("APIURL is required")
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	// Every target gets its own connection so parallel transfers are not
	// serialised behind one HTTP/2 stream.
	transport.ForceAttemptHTTP2 = false
	transport.MaxIdleConnsPerHost = 8

	return &DefaultClient{
		// No client-level timeout: transfers run until their context ends.
		http:   &http.Client{Transport: transport},
		config: cfg,
	}, nil
}

// BaseURL returns the configured web front-end URL.
func (c *DefaultClient) BaseURL() string {
	return c.config.BaseURL
}

// doGet performs a bounded GET request against an absolute URL and returns the
// response body bytes, or an error on non-2xx status.
func (c *DefaultClient) doGet(ctx context.Context, url string, accept string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", accept)
	c.setUserAgent(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	const maxResponseBytes = 8 * 1024 * 1024 // the app script is the largest metadata payload
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(body, 200))
	}

	return body, nil
}

func (c *DefaultClient) setUserAgent(req *http.Request) {
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}
}

func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + path
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
