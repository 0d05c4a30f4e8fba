package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dm/fast-go/internal/format"
	"github.com/dm/fast-go/internal/model"
)

// Options are the display flags fixed at startup.
type Options struct {
	Upload  bool // compose the upload fragment
	Verbose bool // add the latency line and metadata block
}

const (
	arrowDown = "↓"
	arrowUp   = "↑"
)

// paint renders s with st when styled, and returns it untouched otherwise.
func paint(styled bool, st lipgloss.Style, s string) string {
	if !styled {
		return s
	}
	return st.Render(s)
}

// downloadText renders "<speed> <unit> ↓" coloured by its settle state.
func downloadText(s model.Snapshot, styled bool) string {
	st := stateToStyle(downloadState(s), kindSpeed)
	return paint(styled, st, format.FormatNumber(s.DownloadSpeed)) + " " +
		paint(styled, StyleDim, s.DownloadUnit) + " " +
		paint(styled, st, arrowDown)
}

// uploadText renders "<speed> <unit> ↑", or a dim "- Mbps ↑" placeholder
// until the upload measurement has produced a figure.
func uploadText(s model.Snapshot, styled bool) string {
	if !s.HasUpload() {
		return paint(styled, StyleDim, "- Mbps "+arrowUp)
	}
	st := stateToStyle(uploadState(s), kindSpeed)
	return paint(styled, st, format.FormatNumber(s.UploadSpeed)) + " " +
		paint(styled, StyleDim, s.UploadUnit) + " " +
		paint(styled, st, arrowUp)
}

// speedText is the main line: download alone, or "download / upload".
func speedText(s model.Snapshot, opts Options, styled bool) string {
	if !opts.Upload {
		return downloadText(s, styled)
	}
	return downloadText(s, styled) + " " + paint(styled, StyleDim, "/") + " " + uploadText(s, styled)
}

// figure joins a value and unit without a space ("12ms"), or "-ms" when absent.
func figure(present bool, v float64, unit string) string {
	if !present {
		return "-ms"
	}
	return format.FormatNumber(v) + unit
}

// latencyText renders the unloaded/loaded latency line.
func latencyText(s model.Snapshot, styled bool) string {
	lat := paint(styled, stateToStyle(latencyState(s), kindLatency),
		figure(s.HasLatency(), s.Latency, s.LatencyUnit))
	bb := paint(styled, stateToStyle(bufferbloatState(s), kindLatency),
		figure(s.HasBufferbloat(), s.Bufferbloat, s.BufferbloatUnit))
	return "Latency:  " + lat + " " + paint(styled, StyleDim, "(unloaded)") +
		"  " + bb + " " + paint(styled, StyleDim, "(loaded)")
}

// verboseText renders the client and server metadata block (two lines).
func verboseText(s model.Snapshot) string {
	client := "-"
	if s.Client != nil {
		parts := make([]string, 0, 3)
		for _, p := range []string{s.Client.Location, s.Client.IP, s.Client.ISP} {
			if p != "" {
				parts = append(parts, p)
			}
		}
		if len(parts) > 0 {
			client = strings.Join(parts, " ")
		}
	}
	servers := format.FormatLocations(s.ServerLocations)
	if servers == "" {
		servers = "-"
	}
	return "     Client:  " + client + "\n    Servers:  " + servers
}

// speedBlock is the speed line followed by a blank line and, in verbose
// mode, the indented latency line.
func speedBlock(s model.Snapshot, opts Options, styled bool) string {
	var b strings.Builder
	b.WriteString(speedText(s, opts, styled))
	b.WriteString("\n\n")
	if opts.Verbose {
		b.WriteString("    ")
		b.WriteString(latencyText(s, styled))
		b.WriteString("\n")
	}
	return b.String()
}

// liveView is the frame redrawn on every tick. Before any download figure
// arrives it shows only the spinner frame.
func liveView(s model.Snapshot, opts Options, frame string) string {
	pre := "\n\n  " + frame
	if !s.HasDownload() {
		return pre + "\n\n"
	}
	return pre + " " + speedBlock(s, opts, true)
}

// finalView is the settled frame left on screen after a successful run.
func finalView(s model.Snapshot, opts Options) string {
	out := "\n\n    " + speedBlock(s, opts, true)
	if opts.Verbose {
		// The renderer clears the cursor line on exit, so keep it empty.
		out += "\n" + verboseText(s) + "\n"
	}
	return out
}

// PlainText renders the block written when stdout is not a terminal:
// download on the first line, upload on the second when requested, then the
// latency line and metadata block in verbose mode. It never contains escape
// sequences and ends with a single newline.
func PlainText(s model.Snapshot, opts Options) string {
	var b strings.Builder
	b.WriteString(format.FormatValue(s.DownloadSpeed, unitOr(s.DownloadUnit)))
	if opts.Upload {
		b.WriteString("\n")
		if s.HasUpload() {
			b.WriteString(format.FormatValue(s.UploadSpeed, s.UploadUnit))
		} else {
			b.WriteString("- Mbps")
		}
	}
	if opts.Verbose {
		b.WriteString("\n    ")
		b.WriteString(latencyText(s, false))
		b.WriteString("\n")
		b.WriteString(verboseText(s))
	}
	b.WriteString("\n")
	return b.String()
}

func unitOr(unit string) string {
	if unit == "" {
		return "Mbps"
	}
	return unit
}
