package engine

import (
	"math"
	"time"
)

// Sanity bounds for sampled throughput.
const (
	minSampleElapsed = time.Millisecond
	maxBitsPerSec    = 400e9 // above any single-host link; counter or clock glitch
)

// clampRate returns 0 for rates that cannot be real (negative, NaN, or above
// maxBitsPerSec), otherwise r unchanged.
func clampRate(r float64) float64 {
	if math.IsNaN(r) || r < 0 || r > maxBitsPerSec {
		return 0
	}
	return r
}

// safeDivide returns a/b, or 0 when b is zero.
func safeDivide(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

// CalcThroughput converts the bytes moved since a phase started into bits
// per second.
//
// Returns 0 when:
//   - elapsed < minSampleElapsed (interval too short, data unreliable)
//   - the resulting rate fails clampRate
func CalcThroughput(bytes int64, elapsed time.Duration) float64 {
	if elapsed < minSampleElapsed {
		return 0
	}
	return clampRate(safeDivide(float64(bytes)*8, elapsed.Seconds()))
}
