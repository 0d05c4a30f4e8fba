package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/dm/fast-go/internal/client"
	"github.com/dm/fast-go/internal/format"
	"github.com/dm/fast-go/internal/model"
)

// ErrNoTargets is returned when the service offers no test servers.
var ErrNoTargets = errors.New("no test servers available")

// Measurer produces a finite stream of cumulative snapshots. Measure calls
// emit from a single goroutine and returns when the stream ends.
type Measurer interface {
	Measure(ctx context.Context, emit func(model.Snapshot)) error
}

// MeasurerFunc adapts a plain function to the Measurer interface.
type MeasurerFunc func(ctx context.Context, emit func(model.Snapshot)) error

// Measure implements Measurer.
func (f MeasurerFunc) Measure(ctx context.Context, emit func(model.Snapshot)) error {
	return f(ctx, emit)
}

// Config tunes a measurement run.
type Config struct {
	MeasureUpload bool
	Verbose       bool

	Token          string // skips token discovery when set
	URLCount       int
	MinDuration    time.Duration
	MaxDuration    time.Duration
	SampleInterval time.Duration
	LatencyProbes  int
	PayloadSize    int64
}

const (
	stableWindow       = 5    // samples compared for stability
	stableSpread       = 0.05 // max relative spread of a stable window
	loadedProbeEvery   = 250 * time.Millisecond
	defaultPayloadSize = 25 * 1000 * 1000
)

type direction int

const (
	directionDownload direction = iota
	directionUpload
)

func (d direction) String() string {
	if d == directionUpload {
		return "upload"
	}
	return "download"
}

// Engine measures throughput against fast.com test servers.
type Engine struct {
	client client.FastClient
	cfg    Config
}

// NewEngine creates an Engine, filling zero-valued tuning fields with defaults.
func NewEngine(c client.FastClient, cfg Config) *Engine {
	if cfg.URLCount <= 0 {
		cfg.URLCount = 5
	}
	if cfg.SampleInterval <= 0 {
		cfg.SampleInterval = 200 * time.Millisecond
	}
	if cfg.MaxDuration <= 0 {
		cfg.MaxDuration = 30 * time.Second
	}
	if cfg.MinDuration <= 0 || cfg.MinDuration > cfg.MaxDuration {
		cfg.MinDuration = min(5*time.Second, cfg.MaxDuration)
	}
	if cfg.LatencyProbes <= 0 {
		cfg.LatencyProbes = 5
	}
	if cfg.PayloadSize <= 0 {
		cfg.PayloadSize = defaultPayloadSize
	}
	return &Engine{client: c, cfg: cfg}
}

// Measure implements Measurer. It emits a snapshot per sample and a final
// snapshot with IsDone set.
func (e *Engine) Measure(ctx context.Context, emit func(model.Snapshot)) error {
	token := e.cfg.Token
	if token == "" {
		t, err := e.client.FetchToken(ctx)
		if err != nil {
			return err
		}
		token = t
	}

	resp, err := e.client.GetTargets(ctx, token, e.cfg.URLCount)
	if err != nil {
		return err
	}
	urls := make([]string, 0, len(resp.Targets))
	for _, t := range resp.Targets {
		if t.URL != "" {
			urls = append(urls, t.URL)
		}
	}
	if len(urls) == 0 {
		return ErrNoTargets
	}
	log.Printf("measuring against %d targets", len(urls))

	var snap model.Snapshot
	if e.cfg.Verbose {
		snap.Client = &model.ClientInfo{
			Location: resp.Client.Location.String(),
			IP:       resp.Client.IP,
			ISP:      resp.Client.ISP,
		}
		snap.ServerLocations = resp.ServerLocations()

		lat, err := e.unloadedLatency(ctx, urls)
		if err != nil {
			return err
		}
		snap.Latency, snap.LatencyUnit = format.Latency(lat)
		snap.IsLatencyDone = true
		emit(snap)
	}

	snap, err = e.runPhase(ctx, directionDownload, urls, snap, emit)
	if err != nil {
		return err
	}
	if e.cfg.Verbose {
		snap.IsBufferbloatDone = true
		if !snap.HasBufferbloat() {
			// No loaded probe completed; report the unloaded figure.
			snap.Bufferbloat, snap.BufferbloatUnit = snap.Latency, snap.LatencyUnit
		}
	}

	if e.cfg.MeasureUpload {
		snap, err = e.runPhase(ctx, directionUpload, urls, snap, emit)
		if err != nil {
			return err
		}
	}

	snap.IsDone = true
	emit(snap)
	return nil
}

// unloadedLatency probes the targets round-robin before any load is applied
// and returns the median round trip. Individual probe failures are tolerated
// as long as at least one succeeds.
func (e *Engine) unloadedLatency(ctx context.Context, urls []string) (time.Duration, error) {
	rec := newLatencyRecorder()
	var lastErr error
	for i := 0; i < e.cfg.LatencyProbes; i++ {
		d, err := e.client.Probe(ctx, urls[i%len(urls)])
		if err != nil {
			if ctx.Err() != nil {
				return 0, ctx.Err()
			}
			lastErr = err
			continue
		}
		rec.Record(d)
	}
	median, ok := rec.Median()
	if !ok {
		return 0, fmt.Errorf("latency probes failed: %w", lastErr)
	}
	return median, nil
}

// runPhase saturates every target in one direction and samples the aggregate
// rate until it stabilises or MaxDuration elapses. base is extended with the
// phase's figures and returned.
func (e *Engine) runPhase(ctx context.Context, dir direction, urls []string, base model.Snapshot, emit func(model.Snapshot)) (model.Snapshot, error) {
	phaseCtx, stop := context.WithCancel(ctx)
	defer stop()

	var transferred atomic.Int64
	g, gctx := errgroup.WithContext(phaseCtx)
	for _, u := range urls {
		u := u
		g.Go(func() error {
			for gctx.Err() == nil {
				if err := e.transfer(gctx, dir, u, &transferred); err != nil {
					if gctx.Err() != nil {
						return nil
					}
					return fmt.Errorf("%s from %s: %w", dir, targetHost(u), err)
				}
			}
			return nil
		})
	}

	var loaded *latencyRecorder
	if e.cfg.Verbose && dir == directionDownload {
		loaded = newLatencyRecorder()
		g.Go(func() error {
			e.probeLoop(gctx, urls[0], loaded)
			return nil
		})
	}

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	ticker := time.NewTicker(e.cfg.SampleInterval)
	defer ticker.Stop()

	start := time.Now()
	history := model.NewSampleHistory(stableWindow)
	logSample := rate.Sometimes{Interval: time.Second}
	snap := base

	for {
		select {
		case <-ctx.Done():
			<-done
			return snap, ctx.Err()

		case err := <-done:
			// Workers only return early on failure or parent cancellation.
			if err != nil {
				return snap, err
			}
			return snap, ctx.Err()

		case now := <-ticker.C:
			elapsed := now.Sub(start)
			bps := CalcThroughput(transferred.Load(), elapsed)
			history.Push(model.Sample{Timestamp: now, BitsPerSecond: bps})

			switch dir {
			case directionDownload:
				snap.DownloadSpeed, snap.DownloadUnit = format.Speed(bps)
			case directionUpload:
				snap.UploadSpeed, snap.UploadUnit = format.Speed(bps)
			}
			if loaded != nil {
				if d, ok := loaded.Median(); ok {
					snap.Bufferbloat, snap.BufferbloatUnit = format.Latency(d)
				}
			}
			emit(snap)

			logSample.Do(func() {
				log.Printf("%s: %s after %s (spread %.3f)", dir,
					humanize.SIWithDigits(bps, 1, "bps"), elapsed.Truncate(time.Millisecond), history.Spread())
			})

			stable := history.Full() && history.Spread() <= stableSpread
			if elapsed >= e.cfg.MaxDuration || (elapsed >= e.cfg.MinDuration && stable) {
				stop()
				if err := <-done; err != nil {
					return snap, err
				}
				log.Printf("%s finished: %s transferred in %s", dir,
					humanize.Bytes(uint64(transferred.Load())), elapsed.Truncate(time.Millisecond))
				return snap, nil
			}
		}
	}
}

func (e *Engine) transfer(ctx context.Context, dir direction, u string, counter *atomic.Int64) error {
	if dir == directionUpload {
		return e.client.Upload(ctx, u, e.cfg.PayloadSize, counter)
	}
	return e.client.Download(ctx, u, e.cfg.PayloadSize, counter)
}

// probeLoop records loaded round trips until ctx ends. Probes that fail under
// load are skipped.
func (e *Engine) probeLoop(ctx context.Context, u string, rec *latencyRecorder) {
	for {
		if d, err := e.client.Probe(ctx, u); err == nil {
			rec.Record(d)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(loadedProbeEvery):
		}
	}
}

// targetHost trims a signed target URL down to its host for error messages.
func targetHost(u string) string {
	parsed, err := url.Parse(u)
	if err != nil || parsed.Host == "" {
		return "target"
	}
	return parsed.Host
}
