package speed

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
)

// Strategy names accepted by NewNavigator.
const (
	StrategyPreset = "preset"
	StrategyStep   = "step"
)

// ErrUnknownStrategy is returned for an unrecognized navigation strategy.
var ErrUnknownStrategy = errors.New("unknown speed strategy")

// Cell is the shared speed value a navigator reads and writes.
type Cell interface {
	Speed() uint32
	SetSpeed(v uint32)
}

// Navigator moves the shared speed value. A deployment uses exactly one
// strategy, since preset and step navigation keep different invariants.
type Navigator interface {
	// Faster moves toward a smaller scale. It returns false and leaves the
	// value untouched when already at the fastest end.
	Faster() (Preset, bool)
	// Slower moves toward a larger scale. It returns false and leaves the
	// value untouched when already at the slowest end.
	Slower() (Preset, bool)
	// Set writes scale if it differs from the current value.
	Set(scale uint32)
	// Current returns the preset nearest to the stored value.
	Current() Preset
	// CurrentIndex returns the table index nearest to the stored value.
	CurrentIndex() int
	// Table returns the preset table used for labeling.
	Table() *Table
}

// StepOptions configures the additive strategy.
type StepOptions struct {
	Step uint32
	Min  uint32
	Max  uint32
}

// NewNavigator builds the navigator named by strategy.
func NewNavigator(strategy string, table *Table, cell Cell, step StepOptions, logger *log.Logger) (Navigator, error) {
	switch strategy {
	case "", StrategyPreset:
		return NewPresetNavigator(table, cell, logger), nil
	case StrategyStep:
		return NewStepNavigator(table, cell, step, logger)
	default:
		return nil, fmt.Errorf("%q: %w", strategy, ErrUnknownStrategy)
	}
}

// PresetNavigator moves one table entry at a time and never wraps. Driven
// only through it, the stored value is always a table member.
type PresetNavigator struct {
	table  *Table
	cell   Cell
	logger *log.Logger
}

// NewPresetNavigator returns a navigator over table backed by cell.
func NewPresetNavigator(table *Table, cell Cell, logger *log.Logger) *PresetNavigator {
	if logger == nil {
		logger = log.Default()
	}
	return &PresetNavigator{table: table, cell: cell, logger: logger}
}

func (n *PresetNavigator) Faster() (Preset, bool) {
	i := n.CurrentIndex()
	if i+1 >= n.table.Len() {
		return n.table.At(i), false
	}
	p := n.table.At(i + 1)
	n.Set(p.Scale)
	return p, true
}

func (n *PresetNavigator) Slower() (Preset, bool) {
	i := n.CurrentIndex()
	if i == 0 {
		return n.table.At(0), false
	}
	p := n.table.At(i - 1)
	n.Set(p.Scale)
	return p, true
}

func (n *PresetNavigator) Set(scale uint32) {
	set(n.cell, n.table, n.logger, scale)
}

func (n *PresetNavigator) Current() Preset {
	return n.table.Nearest(n.cell.Speed())
}

func (n *PresetNavigator) CurrentIndex() int {
	return n.table.IndexOf(n.cell.Speed())
}

func (n *PresetNavigator) Table() *Table {
	return n.table
}

// StepNavigator adds or subtracts a fixed step clamped to [Min, Max]. The
// stored value may fall between presets; Current reports the nearest one.
type StepNavigator struct {
	table  *Table
	cell   Cell
	opts   StepOptions
	logger *log.Logger
}

// NewStepNavigator validates opts and returns a step navigator.
func NewStepNavigator(table *Table, cell Cell, opts StepOptions, logger *log.Logger) (*StepNavigator, error) {
	if opts.Step == 0 {
		return nil, fmt.Errorf("speed step must be positive")
	}
	if opts.Min == 0 || opts.Min > opts.Max {
		return nil, fmt.Errorf("invalid speed range [%d, %d]", opts.Min, opts.Max)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &StepNavigator{table: table, cell: cell, opts: opts, logger: logger}, nil
}

func (n *StepNavigator) Faster() (Preset, bool) {
	cur := n.cell.Speed()
	if cur <= n.opts.Min {
		return n.Current(), false
	}
	next := n.opts.Min
	if cur-n.opts.Min > n.opts.Step {
		next = cur - n.opts.Step
	}
	n.Set(next)
	return n.Current(), true
}

func (n *StepNavigator) Slower() (Preset, bool) {
	cur := n.cell.Speed()
	if cur >= n.opts.Max {
		return n.Current(), false
	}
	next := n.opts.Max
	if n.opts.Max-cur > n.opts.Step {
		next = cur + n.opts.Step
	}
	n.Set(next)
	return n.Current(), true
}

// Set clamps scale into the configured range before writing it.
func (n *StepNavigator) Set(scale uint32) {
	set(n.cell, n.table, n.logger, min(max(scale, n.opts.Min), n.opts.Max))
}

func (n *StepNavigator) Current() Preset {
	return n.table.Nearest(n.cell.Speed())
}

func (n *StepNavigator) CurrentIndex() int {
	return n.table.IndexOf(n.cell.Speed())
}

func (n *StepNavigator) Table() *Table {
	return n.table
}

func set(cell Cell, table *Table, logger *log.Logger, scale uint32) {
	if cell.Speed() == scale {
		return
	}
	cell.SetSpeed(scale)
	logger.Info("Speed set", "label", table.Nearest(scale).Label, "length_scale", fmt.Sprintf("%.2f", LengthScale(scale)))
}
