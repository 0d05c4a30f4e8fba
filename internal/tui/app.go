package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dm/fast-go/internal/model"
)

// App is the root Bubble Tea model for the interactive speed view.
type App struct {
	opts    Options
	spinner spinner.Model

	// Render state: a copy of the Aggregator's latest snapshot.
	current model.Snapshot
	phase   model.Phase
	err     error

	interrupted bool
}

// NewApp creates an App awaiting its first snapshot.
func NewApp(opts Options) *App {
	return &App{
		opts:    opts,
		spinner: newSpinner(),
		phase:   model.PhaseAwaitingFirstData,
	}
}

// Init implements tea.Model. Starts the redraw ticker immediately.
func (app *App) Init() tea.Cmd {
	return app.spinner.Tick
}

// Update implements tea.Model: the single state-mutation entry point.
// Once the run is Done or Failed every stream and tick message is ignored,
// so no further frames are scheduled.
func (app *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case spinner.TickMsg:
		if app.phase.Terminal() {
			return app, nil
		}
		var cmd tea.Cmd
		app.spinner, cmd = app.spinner.Update(msg)
		return app, cmd

	case SnapshotMsg:
		if app.phase.Terminal() {
			return app, nil
		}
		app.current = msg.Snapshot
		app.phase = model.PhaseReceiving

	case StreamDoneMsg:
		if app.phase.Terminal() {
			return app, nil
		}
		app.phase = model.PhaseDone
		return app, tea.Quit

	case StreamErrorMsg:
		if app.phase.Terminal() {
			return app, nil
		}
		app.phase = model.PhaseFailed
		app.err = msg.Err
		return app, tea.Quit

	case tea.KeyMsg:
		if key.Matches(msg, keys.Interrupt) {
			app.interrupted = true
			return app, tea.Interrupt
		}
	}

	return app, nil
}

// View implements tea.Model. A Done run shows the settled final frame; every
// other phase, Failed included, keeps the live frame as last drawn.
func (app *App) View() string {
	if app.phase == model.PhaseDone {
		return finalView(app.current, app.opts)
	}
	return liveView(app.current, app.opts, app.spinner.View())
}

// Phase returns the lifecycle phase the view has reached.
func (app *App) Phase() model.Phase {
	return app.phase
}

// Err returns the stream error once the phase is Failed.
func (app *App) Err() error {
	return app.err
}

// Interrupted reports whether the user aborted the run.
func (app *App) Interrupted() bool {
	return app.interrupted
}
