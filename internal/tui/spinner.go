package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
)

// tickInterval is the redraw period of the working indicator. It is
// independent of how often the measurement reports progress.
const tickInterval = 50 * time.Millisecond

// newSpinner returns the braille-dots spinner advancing once per tickInterval.
func newSpinner() spinner.Model {
	return spinner.New(
		spinner.WithSpinner(spinner.Spinner{
			Frames: spinner.MiniDot.Frames,
			FPS:    tickInterval,
		}),
		spinner.WithStyle(StyleSpinner),
	)
}
