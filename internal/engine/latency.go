package engine

import (
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Histogram bounds in microseconds: 1µs to 60s at 3 significant figures.
const (
	histMin    = 1
	histMax    = 60_000_000
	histSigFig = 3
)

// latencyRecorder accumulates probe round trips. Safe for concurrent use.
type latencyRecorder struct {
	mu   sync.Mutex
	hist *hdrhistogram.Histogram
}

func newLatencyRecorder() *latencyRecorder {
	return &latencyRecorder{hist: hdrhistogram.New(histMin, histMax, histSigFig)}
}

// Record adds one round trip, clamped into the histogram range.
func (r *latencyRecorder) Record(d time.Duration) {
	us := d.Microseconds()
	if us < histMin {
		us = histMin
	}
	if us > histMax {
		us = histMax
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_ = r.hist.RecordValue(us)
}

// Median returns the 50th percentile, or false when nothing was recorded.
func (r *latencyRecorder) Median() (time.Duration, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.hist.TotalCount() == 0 {
		return 0, false
	}
	return time.Duration(r.hist.ValueAtQuantile(50)) * time.Microsecond, true
}

// Count returns the number of recorded round trips.
func (r *latencyRecorder) Count() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hist.TotalCount()
}
