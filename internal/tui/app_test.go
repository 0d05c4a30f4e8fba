package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dm/fast-go/internal/model"
)

func downloading() model.Snapshot {
	return model.Snapshot{DownloadSpeed: 17, DownloadUnit: "Mbps"}
}

func uploadDone() model.Snapshot {
	return model.Snapshot{
		DownloadSpeed: 17, DownloadUnit: "Mbps",
		UploadSpeed: 4.4, UploadUnit: "Mbps",
		IsDone: true,
	}
}

// tick returns a tick message the app's current spinner accepts.
func tick(app *App) tea.Msg {
	return app.spinner.Tick()
}

func TestApp_InitStartsTicker(t *testing.T) {
	app := NewApp(Options{})
	cmd := app.Init()
	require.NotNil(t, cmd)

	msg := cmd()
	tm, ok := msg.(spinner.TickMsg)
	require.True(t, ok, "expected spinner.TickMsg, got %T", msg)
	assert.Equal(t, app.spinner.ID(), tm.ID)
	assert.Equal(t, model.PhaseAwaitingFirstData, app.Phase())
}

func TestApp_TickPeriod(t *testing.T) {
	app := NewApp(Options{})
	assert.Equal(t, 50*time.Millisecond, app.spinner.Spinner.FPS)

	_, cmd := app.Update(tick(app))
	require.NotNil(t, cmd, "a tick schedules the next tick")

	start := time.Now()
	next := cmd()
	elapsed := time.Since(start)
	_, ok := next.(spinner.TickMsg)
	assert.True(t, ok, "expected spinner.TickMsg, got %T", next)
	assert.GreaterOrEqual(t, elapsed, 45*time.Millisecond)
	assert.Less(t, elapsed, 500*time.Millisecond)
}

func TestApp_TickAdvancesFrameWithoutTouchingState(t *testing.T) {
	app := NewApp(Options{})
	before := stripANSI(app.View())

	newModel, _ := app.Update(tick(app))
	app = newModel.(*App)

	assert.NotEqual(t, before, stripANSI(app.View()), "spinner frame should advance")
	assert.Equal(t, model.Snapshot{}, app.current)
	assert.Equal(t, model.PhaseAwaitingFirstData, app.Phase())
}

func TestApp_SearchingFrameHasNoFigures(t *testing.T) {
	app := NewApp(Options{Upload: true, Verbose: true})
	view := stripANSI(app.View())

	assert.False(t, strings.ContainsAny(view, "0123456789"), "searching frame must not show figures: %q", view)
	assert.NotContains(t, view, "bps")
	assert.Contains(t, view, spinner.MiniDot.Frames[0])
}

func TestApp_SnapshotMsgReplacesState(t *testing.T) {
	app := NewApp(Options{})

	newModel, cmd := app.Update(SnapshotMsg{Snapshot: downloading()})
	app = newModel.(*App)
	assert.Nil(t, cmd)
	assert.Equal(t, model.PhaseReceiving, app.Phase())
	assert.Equal(t, downloading(), app.current)

	next := model.Snapshot{DownloadSpeed: 18, DownloadUnit: "Mbps"}
	newModel, _ = app.Update(SnapshotMsg{Snapshot: next})
	app = newModel.(*App)
	assert.Equal(t, next, app.current)

	view := stripANSI(app.View())
	assert.Contains(t, view, "18 Mbps ↓")
	assert.NotContains(t, view, "17")
}

func TestApp_StreamDoneQuitsWithFinalView(t *testing.T) {
	app := NewApp(Options{Upload: true})
	newModel, _ := app.Update(SnapshotMsg{Snapshot: downloading()})
	newModel, _ = newModel.(*App).Update(SnapshotMsg{Snapshot: uploadDone()})
	app = newModel.(*App)

	newModel, cmd := app.Update(StreamDoneMsg{})
	app = newModel.(*App)
	require.NotNil(t, cmd)
	_, isQuit := cmd().(tea.QuitMsg)
	assert.True(t, isQuit, "expected tea.QuitMsg")
	assert.Equal(t, model.PhaseDone, app.Phase())

	view := stripANSI(app.View())
	assert.Equal(t, "\n\n    17 Mbps ↓ / 4.4 Mbps ↑\n\n", view)
	assert.Equal(t, stateSettled, downloadState(app.current))
	assert.Equal(t, stateSettled, uploadState(app.current))
}

func TestApp_NoTicksAfterDone(t *testing.T) {
	app := NewApp(Options{})
	pending := tick(app)

	newModel, _ := app.Update(StreamDoneMsg{})
	app = newModel.(*App)

	_, cmd := app.Update(pending)
	assert.Nil(t, cmd, "no tick may be scheduled once the run has ended")
}

func TestApp_StreamErrorLeavesLiveFrame(t *testing.T) {
	app := NewApp(Options{Upload: true})
	newModel, _ := app.Update(SnapshotMsg{Snapshot: downloading()})
	app = newModel.(*App)
	live := app.View()

	streamErr := errors.New("could not reach test servers")
	newModel, cmd := app.Update(StreamErrorMsg{Err: streamErr})
	app = newModel.(*App)

	require.NotNil(t, cmd)
	_, isQuit := cmd().(tea.QuitMsg)
	assert.True(t, isQuit)
	assert.Equal(t, model.PhaseFailed, app.Phase())
	assert.Same(t, streamErr, app.Err())
	assert.Equal(t, live, app.View(), "a failed run is not finalised")
	assert.Equal(t, stateInProgress, downloadState(app.current))
}

func TestApp_TerminalPhaseIgnoresStream(t *testing.T) {
	app := NewApp(Options{})
	newModel, _ := app.Update(SnapshotMsg{Snapshot: downloading()})
	newModel, _ = newModel.(*App).Update(StreamErrorMsg{Err: errors.New("boom")})
	app = newModel.(*App)

	_, cmd := app.Update(SnapshotMsg{Snapshot: uploadDone()})
	assert.Nil(t, cmd)
	_, cmd = app.Update(StreamDoneMsg{})
	assert.Nil(t, cmd)
	assert.Equal(t, model.PhaseFailed, app.Phase())
	assert.Equal(t, downloading(), app.current)
}

func TestApp_CtrlCInterrupts(t *testing.T) {
	app := NewApp(Options{})

	newModel, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	app = newModel.(*App)

	require.NotNil(t, cmd)
	_, isInterrupt := cmd().(tea.InterruptMsg)
	assert.True(t, isInterrupt, "expected tea.InterruptMsg")
	assert.True(t, app.Interrupted())
}

func TestApp_OtherKeysIgnored(t *testing.T) {
	app := NewApp(Options{})
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	assert.Nil(t, cmd)
	assert.False(t, app.Interrupted())
}

// stripANSI removes ANSI escape sequences for plain-text content assertions.
// Handles CSI sequences (ESC [ ... final byte) and two-byte escapes.
func stripANSI(s string) string {
	var out strings.Builder
	const (
		text = iota
		escape
		csi
	)
	state := text
	for _, r := range s {
		switch state {
		case escape:
			if r == '[' {
				state = csi
			} else {
				state = text
			}
		case csi:
			// CSI final bytes are in range 0x40-0x7E.
			if r >= 0x40 && r <= 0x7E {
				state = text
			}
		default:
			if r == '\x1b' {
				state = escape
				continue
			}
			out.WriteRune(r)
		}
	}
	return out.String()
}

func TestStripANSI(t *testing.T) {
	assert.Equal(t, "17 Mbps", stripANSI("\x1b[38;2;16;185;129m17\x1b[0m Mbps"))
	assert.Equal(t, "plain", stripANSI("plain"))
}
