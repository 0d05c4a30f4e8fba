package model

import (
	"slices"
	"time"
)

const defaultSampleCap = 10

// Sample is a single timestamped throughput reading stored in the ring buffer.
type Sample struct {
	Timestamp     time.Time
	BitsPerSecond float64
}

// SampleHistory is a fixed-size ring buffer of throughput Samples.
// When the buffer is full, new pushes overwrite the oldest entry.
type SampleHistory struct {
	buf  []Sample
	head int // index of the next write position
	size int // number of valid entries
}

// NewSampleHistory creates a SampleHistory with the given capacity.
// If capacity <= 0, the defaultSampleCap (10) is used.
func NewSampleHistory(capacity int) *SampleHistory {
	if capacity <= 0 {
		capacity = defaultSampleCap
	}
	return &SampleHistory{
		buf: make([]Sample, capacity),
	}
}

// Push appends a new sample to the history, overwriting the oldest if full.
func (h *SampleHistory) Push(s Sample) {
	h.buf[h.head] = s
	h.head = (h.head + 1) % len(h.buf)
	if h.size < len(h.buf) {
		h.size++
	}
}

// Len returns the number of valid entries in the history.
func (h *SampleHistory) Len() int {
	return h.size
}

// Full reports whether the history holds capacity entries.
func (h *SampleHistory) Full() bool {
	return h.size == len(h.buf)
}

// Clear resets the history to empty.
func (h *SampleHistory) Clear() {
	h.head = 0
	h.size = 0
}

// Values returns the throughput readings in chronological order (oldest first).
func (h *SampleHistory) Values() []float64 {
	out := make([]float64, h.size)
	// oldest entry sits at (head - size + cap) % cap
	start := (h.head - h.size + len(h.buf)) % len(h.buf)
	for i := 0; i < h.size; i++ {
		out[i] = h.buf[(start+i)%len(h.buf)].BitsPerSecond
	}
	return out
}

// Spread returns (max-min)/max over the stored readings, or 1 when the
// history is empty or the maximum is not positive.
func (h *SampleHistory) Spread() float64 {
	vals := h.Values()
	if len(vals) == 0 {
		return 1
	}
	maxVal := slices.Max(vals)
	if maxVal <= 0 {
		return 1
	}
	return (maxVal - slices.Min(vals)) / maxVal
}
