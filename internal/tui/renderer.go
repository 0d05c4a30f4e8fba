package tui

import (
	"context"
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dm/fast-go/internal/engine"
	"github.com/dm/fast-go/internal/model"
)

// ErrInterrupted is returned when the user aborts an interactive run.
var ErrInterrupted = errors.New("interrupted")

// Renderer consumes one measurement stream through agg and presents it.
// A nil return means the stream completed and its final state was shown.
type Renderer interface {
	Render(ctx context.Context, agg *engine.Aggregator, m engine.Measurer) error
}

// Interactive redraws the view in place on a terminal.
type Interactive struct {
	opts   Options
	output io.Writer
	input  io.Reader
}

// NewInteractive creates an Interactive renderer writing frames to out.
// A nil in disables keyboard input.
func NewInteractive(opts Options, out io.Writer, in io.Reader) *Interactive {
	return &Interactive{opts: opts, output: out, input: in}
}

// Render runs the Bubble Tea program until the stream ends or the user
// interrupts. The measurement is cancelled when Render returns.
func (r *Interactive) Render(ctx context.Context, agg *engine.Aggregator, m engine.Measurer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app := NewApp(r.opts)
	p := tea.NewProgram(app,
		tea.WithOutput(r.output),
		tea.WithInput(r.input),
	)

	go func() {
		err := agg.Consume(ctx, m, func(s model.Snapshot) {
			p.Send(SnapshotMsg{Snapshot: s})
		})
		if err != nil {
			p.Send(StreamErrorMsg{Err: err})
			return
		}
		p.Send(StreamDoneMsg{})
	}()

	// An interrupt kills the program without rendering a final frame.
	final, err := p.Run()
	if errors.Is(err, tea.ErrInterrupted) {
		return ErrInterrupted
	}
	if err != nil {
		return fmt.Errorf("run interactive view: %w", err)
	}
	done, ok := final.(*App)
	if !ok {
		return fmt.Errorf("run interactive view: unexpected model %T", final)
	}
	if done.Phase() == model.PhaseFailed {
		return done.Err()
	}
	return nil
}

// Plain writes a single unstyled block once the stream completes, for pipes
// and files.
type Plain struct {
	opts   Options
	output io.Writer
}

// NewPlain creates a Plain renderer writing to out.
func NewPlain(opts Options, out io.Writer) *Plain {
	return &Plain{opts: opts, output: out}
}

// Render consumes the stream without intermediate output. On error nothing
// is written.
func (r *Plain) Render(ctx context.Context, agg *engine.Aggregator, m engine.Measurer) error {
	if err := agg.Consume(ctx, m, nil); err != nil {
		return err
	}
	if _, err := io.WriteString(r.output, PlainText(agg.Latest(), r.opts)); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}

var (
	_ Renderer = (*Interactive)(nil)
	_ Renderer = (*Plain)(nil)
)
