package engine

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/dm/fast-go/internal/client"
)

// MockFastClient implements client.FastClient for testing.
type MockFastClient struct {
	TokenFn    func(ctx context.Context) (string, error)
	TargetsFn  func(ctx context.Context, token string, urlCount int) (*client.TargetsResponse, error)
	DownloadFn func(ctx context.Context, u string, size int64, counter *atomic.Int64) error
	UploadFn   func(ctx context.Context, u string, size int64, counter *atomic.Int64) error
	ProbeFn    func(ctx context.Context, u string) (time.Duration, error)

	tokenCalls atomic.Int32
}

func (m *MockFastClient) FetchToken(ctx context.Context) (string, error) {
	m.tokenCalls.Add(1)
	if m.TokenFn != nil {
		return m.TokenFn(ctx)
	}
	return "mock-token", nil
}

func (m *MockFastClient) GetTargets(ctx context.Context, token string, urlCount int) (*client.TargetsResponse, error) {
	if m.TargetsFn != nil {
		return m.TargetsFn(ctx, token, urlCount)
	}
	return &client.TargetsResponse{
		Client: client.ClientInfo{
			IP:       "203.0.113.7",
			ISP:      "Mock ISP",
			Location: client.Location{City: "Berlin", Country: "DE"},
		},
		Targets: []client.Target{
			{URL: "https://a.mock/speedtest?t=1", Location: client.Location{City: "Frankfurt", Country: "DE"}},
			{URL: "https://b.mock/speedtest?t=2", Location: client.Location{City: "Amsterdam", Country: "NL"}},
		},
	}, nil
}

func (m *MockFastClient) Download(ctx context.Context, u string, size int64, counter *atomic.Int64) error {
	if m.DownloadFn != nil {
		return m.DownloadFn(ctx, u, size, counter)
	}
	return steadyTransfer(ctx, counter)
}

func (m *MockFastClient) Upload(ctx context.Context, u string, size int64, counter *atomic.Int64) error {
	if m.UploadFn != nil {
		return m.UploadFn(ctx, u, size, counter)
	}
	return steadyTransfer(ctx, counter)
}

func (m *MockFastClient) Probe(ctx context.Context, u string) (time.Duration, error) {
	if m.ProbeFn != nil {
		return m.ProbeFn(ctx, u)
	}
	return 12 * time.Millisecond, nil
}

func (m *MockFastClient) BaseURL() string {
	return "https://mock.fast"
}

var _ client.FastClient = (*MockFastClient)(nil)

// steadyTransfer moves 10 KB every 2ms until ctx ends.
func steadyTransfer(ctx context.Context, counter *atomic.Int64) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(2 * time.Millisecond):
		counter.Add(10_000)
		return nil
	}
}

var errMockFailure = errors.New("mock failure")
