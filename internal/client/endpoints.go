package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const endpointTargets = "/netflix/speedtest/v2"

var (
	// ErrTokenNotFound is returned when the app script carries no API token.
	ErrTokenNotFound = errors.New("api token not found")

	scriptPattern = regexp.MustCompile(`<script src="(/app-[a-zA-Z0-9]+\.js)"`)
	tokenPattern  = regexp.MustCompile(`token:"([a-zA-Z0-9]+)"`)
)

// FetchToken scrapes the API token embedded in the fast.com app script.
func (c *DefaultClient) FetchToken(ctx context.Context) (string, error) {
	page, err := c.doGet(ctx, joinURL(c.config.BaseURL, "/"), "text/html")
	if err != nil {
		return "", fmt.Errorf("FetchToken: %w", err)
	}
	m := scriptPattern.FindSubmatch(page)
	if m == nil {
		return "", fmt.Errorf("FetchToken: app script not found: %w", ErrTokenNotFound)
	}

	script, err := c.doGet(ctx, joinURL(c.config.BaseURL, string(m[1])), "application/javascript")
	if err != nil {
		return "", fmt.Errorf("FetchToken: %w", err)
	}
	m = tokenPattern.FindSubmatch(script)
	if m == nil {
		return "", fmt.Errorf("FetchToken: %w", ErrTokenNotFound)
	}
	return string(m[1]), nil
}

// GetTargets asks the API for urlCount test servers close to the caller.
func (c *DefaultClient) GetTargets(ctx context.Context, token string, urlCount int) (*TargetsResponse, error) {
	q := url.Values{}
	q.Set("https", "true")
	q.Set("token", token)
	q.Set("urlCount", strconv.Itoa(urlCount))

	body, err := c.doGet(ctx, joinURL(c.config.APIURL, endpointTargets)+"?"+q.Encode(), "application/json")
	if err != nil {
		return nil, fmt.Errorf("GetTargets: %w", err)
	}

	var result TargetsResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("GetTargets decode: %w", err)
	}
	return &result, nil
}

// Download fetches size bytes from the target, adding every byte received to
// counter as it arrives.
func (c *DefaultClient) Download(ctx context.Context, targetURL string, size int64, counter *atomic.Int64) error {
	u, err := RangeURL(targetURL, size)
	if err != nil {
		return fmt.Errorf("Download: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("Download: create request: %w", err)
	}
	c.setUserAgent(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("Download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("Download: unexpected status %d", resp.StatusCode)
	}
	if _, err := io.Copy(&countingWriter{n: counter}, resp.Body); err != nil {
		return fmt.Errorf("Download: %w", err)
	}
	return nil
}

// Upload posts size bytes to the target, adding every byte handed to the
// transport to counter.
func (c *DefaultClient) Upload(ctx context.Context, targetURL string, size int64, counter *atomic.Int64) error {
	u, err := RangeURL(targetURL, size)
	if err != nil {
		return fmt.Errorf("Upload: %w", err)
	}
	body := &countingReader{r: io.LimitReader(zeroReader{}, size), n: counter}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, body)
	if err != nil {
		return fmt.Errorf("Upload: create request: %w", err)
	}
	req.ContentLength = size
	req.Header.Set("Content-Type", "application/octet-stream")
	c.setUserAgent(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("Upload: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("Upload: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// Probe measures the round trip of a zero-length range request.
func (c *DefaultClient) Probe(ctx context.Context, targetURL string) (time.Duration, error) {
	u, err := RangeURL(targetURL, 0)
	if err != nil {
		return 0, fmt.Errorf("Probe: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, fmt.Errorf("Probe: create request: %w", err)
	}
	c.setUserAgent(req)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("Probe: %w", err)
	}
	elapsed := time.Since(start)
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("Probe: unexpected status %d", resp.StatusCode)
	}
	return elapsed, nil
}

// RangeURL inserts a /range/0-<size> segment after the target's path,
// keeping its signed query string intact.
func RangeURL(targetURL string, size int64) (string, error) {
	u, err := url.Parse(targetURL)
	if err != nil {
		return "", fmt.Errorf("invalid target URL %q: %w", targetURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid target URL %q: scheme and host are required", targetURL)
	}
	if size < 0 {
		size = 0
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/range/0-" + strconv.FormatInt(size, 10)
	return u.String(), nil
}

type countingWriter struct {
	n *atomic.Int64
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.n.Add(int64(len(p)))
	return len(p), nil
}

type countingReader struct {
	r io.Reader
	n *atomic.Int64
}

func (r *countingReader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	r.n.Add(int64(n))
	return n, err
}

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	clear(p)
	return len(p), nil
}
