package tui

import "github.com/dm/fast-go/internal/model"

// SnapshotMsg delivers the latest cumulative measurement state to the TUI.
type SnapshotMsg struct {
	Snapshot model.Snapshot
}

// StreamDoneMsg signals that the measurement stream completed normally.
type StreamDoneMsg struct{}

// StreamErrorMsg signals that the measurement stream failed.
type StreamErrorMsg struct{ Err error }
