package format

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Speed splits a bits-per-second rate into a display value and unit, e.g.
// 17_300_000 → (17, "Mbps"), 4_420_000 → (4.4, "Mbps"), 850_000 → (850, "Kbps").
// Values below 10 keep one decimal place; larger values are whole numbers.
// Negative rates are clamped to zero.
func Speed(bitsPerSec float64) (float64, string) {
	if bitsPerSec < 0 || math.IsNaN(bitsPerSec) {
		bitsPerSec = 0
	}
	value, prefix := humanize.ComputeSI(bitsPerSec)
	if prefix == "k" {
		prefix = "K"
	}
	return Round(value), prefix + "bps"
}

// Latency converts a duration into whole milliseconds and the "ms" unit.
func Latency(d time.Duration) (float64, string) {
	if d < 0 {
		d = 0
	}
	return math.Round(float64(d) / float64(time.Millisecond)), "ms"
}

// Round applies display precision: one decimal below 10, whole numbers above.
func Round(v float64) float64 {
	if v < 10 {
		return math.Round(v*10) / 10
	}
	return math.Round(v)
}

// FormatNumber renders a figure with the shortest exact representation,
// e.g. 17 → "17", 4.4 → "4.4".
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatValue joins a figure and its unit with a single space: "17 Mbps".
func FormatValue(v float64, unit string) string {
	return FormatNumber(v) + " " + unit
}

// FormatLocations joins server locations for the verbose block.
// Empty entries are skipped.
func FormatLocations(locs []string) string {
	out := make([]string, 0, len(locs))
	for _, l := range locs {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, " | ")
}
