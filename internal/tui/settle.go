package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/dm/fast-go/internal/model"
)

// fragmentState is the visual state of one displayed figure.
type fragmentState int

const (
	stateInProgress fragmentState = iota
	stateSettled
)

// fragmentKind selects which settled style applies to a figure.
type fragmentKind int

const (
	kindSpeed fragmentKind = iota
	kindLatency
)

// uploadState settles only once the whole run is done.
func uploadState(s model.Snapshot) fragmentState {
	if s.IsDone {
		return stateSettled
	}
	return stateInProgress
}

// downloadState settles when the run is done or as soon as an upload figure
// exists: upload only starts after download has finished.
func downloadState(s model.Snapshot) fragmentState {
	if s.IsDone || s.HasUpload() {
		return stateSettled
	}
	return stateInProgress
}

// latencyState settles when unloaded latency probing has finished.
func latencyState(s model.Snapshot) fragmentState {
	if s.IsLatencyDone {
		return stateSettled
	}
	return stateInProgress
}

// bufferbloatState settles when loaded latency probing has finished.
func bufferbloatState(s model.Snapshot) fragmentState {
	if s.IsBufferbloatDone {
		return stateSettled
	}
	return stateInProgress
}

// stateToStyle maps a fragment state to the lipgloss style for its kind.
func stateToStyle(st fragmentState, kind fragmentKind) lipgloss.Style {
	if st == stateInProgress {
		return StyleInProgress
	}
	if kind == kindLatency {
		return StyleSettledLatency
	}
	return StyleSettledSpeed
}
