package engine

import (
	"context"
	"errors"
	"sync"

	"github.com/dm/fast-go/internal/model"
)

// ErrAlreadyConsumed is returned when Consume is called a second time.
// Measurement streams are not restartable.
var ErrAlreadyConsumed = errors.New("measurement stream already consumed")

// Aggregator owns the current display state for one run. It is the only
// writer of that state; renderers receive copies.
type Aggregator struct {
	mu       sync.RWMutex
	current  model.Snapshot
	phase    model.Phase
	consumed bool
}

// NewAggregator creates an empty Aggregator awaiting its first snapshot.
func NewAggregator() *Aggregator {
	return &Aggregator{phase: model.PhaseAwaitingFirstData}
}

// Consume subscribes to m and blocks until the stream ends. Every emitted
// snapshot replaces the current state and is then passed to onUpdate (which
// may be nil). A nil return means the stream completed normally and the
// Aggregator is Done; a stream error is returned unchanged and leaves it
// Failed. Snapshots emitted after the run has ended are dropped.
func (a *Aggregator) Consume(ctx context.Context, m Measurer, onUpdate func(model.Snapshot)) error {
	a.mu.Lock()
	if a.consumed {
		a.mu.Unlock()
		return ErrAlreadyConsumed
	}
	a.consumed = true
	a.mu.Unlock()

	err := m.Measure(ctx, func(s model.Snapshot) {
		if !a.store(s) {
			return
		}
		if onUpdate != nil {
			onUpdate(s)
		}
	})

	a.mu.Lock()
	defer a.mu.Unlock()
	if err != nil {
		a.phase = model.PhaseFailed
		return err
	}
	a.phase = model.PhaseDone
	return nil
}

func (a *Aggregator) store(s model.Snapshot) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.phase.Terminal() {
		return false
	}
	a.current = s
	a.phase = model.PhaseReceiving
	return true
}

// Latest returns a copy of the most recently stored snapshot.
func (a *Aggregator) Latest() model.Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.current
}

// Phase returns the current lifecycle phase.
func (a *Aggregator) Phase() model.Phase {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.phase
}
