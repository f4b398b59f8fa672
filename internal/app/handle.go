// Package app holds the shared controller handle passed to every goroutine.
package app

import (
	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/narrator/internal/queue"
	"github.com/dgnsrekt/narrator/internal/speed"
	"github.com/dgnsrekt/narrator/internal/state"
)

// Handle bundles the shared state cells, the command queue and the speed
// navigator. It is built once at startup; independent handles do not share
// anything.
type Handle struct {
	Store *state.Store
	Queue *queue.Queue
	Speed speed.Navigator
}

// Options configures NewHandle.
type Options struct {
	Table    *speed.Table
	Strategy string
	Step     speed.StepOptions
	// Initial overrides the table default when it names a preset label.
	Initial string
}

// NewHandle builds a handle whose speed starts at the configured preset.
func NewHandle(opts Options, logger *log.Logger) (*Handle, error) {
	table := opts.Table
	if table == nil {
		table = speed.DefaultTable()
	}

	initial := table.Default()
	if opts.Initial != "" {
		i, err := table.Lookup(opts.Initial)
		if err != nil {
			return nil, err
		}
		initial = table.At(i)
	}

	store := state.NewStore(initial.Scale)
	nav, err := speed.NewNavigator(opts.Strategy, table, store, opts.Step, logger)
	if err != nil {
		return nil, err
	}

	return &Handle{
		Store: store,
		Queue: queue.New(),
		Speed: nav,
	}, nil
}

// Close requests shutdown and wakes the controller.
func (h *Handle) Close() {
	h.Store.RequestExit()
	h.Queue.Wake()
}
