// Package speed models the synthesis rate: an ordered preset table and the
// navigation strategies that move the shared speed value through it.
//
// Speed values are Piper length scales multiplied by 100. A lower value means
// faster speech.
package speed

import (
	"errors"
	"fmt"
)

// Table errors
var (
	ErrEmptyTable        = errors.New("speed table has no presets")
	ErrZeroScale         = errors.New("speed preset scale must be positive")
	ErrUnordered         = errors.New("speed presets must be ordered from slowest to fastest")
	ErrDefaultOutOfRange = errors.New("default speed preset index out of range")
	ErrUnknownPreset     = errors.New("unknown speed preset")
)

// Preset is a named speed value.
type Preset struct {
	Label string `mapstructure:"label" yaml:"label"`
	Scale uint32 `mapstructure:"scale" yaml:"scale"`
}

// String returns the preset label.
func (p Preset) String() string {
	return p.Label
}

// LengthScale returns the preset as a Piper length scale.
func (p Preset) LengthScale() float64 {
	return LengthScale(p.Scale)
}

// LengthScale converts a stored speed value into the length scale passed to
// the synthesizer.
func LengthScale(value uint32) float64 {
	return float64(value) / 100
}

// DefaultPresets is the built-in table, slowest first.
var DefaultPresets = []Preset{
	{"x0.5", 200},
	{"x0.75", 133},
	{"x1", 100},
	{"x1.25", 80},
	{"x1.5", 67},
	{"x2", 50},
	{"x3", 33},
}

// DefaultIndex points at x1 in DefaultPresets.
const DefaultIndex = 2

// Table is an immutable ordered sequence of presets with a designated
// default. Scales strictly decrease with the index.
type Table struct {
	presets []Preset
	def     int
}

// NewTable validates presets and returns a table that owns a copy of them.
func NewTable(presets []Preset, defaultIndex int) (*Table, error) {
	if len(presets) == 0 {
		return nil, ErrEmptyTable
	}
	for i, p := range presets {
		if p.Scale == 0 {
			return nil, fmt.Errorf("preset %q: %w", p.Label, ErrZeroScale)
		}
		if i > 0 && p.Scale >= presets[i-1].Scale {
			return nil, fmt.Errorf("preset %q (%d) after %q (%d): %w",
				p.Label, p.Scale, presets[i-1].Label, presets[i-1].Scale, ErrUnordered)
		}
	}
	if defaultIndex < 0 || defaultIndex >= len(presets) {
		return nil, fmt.Errorf("index %d with %d presets: %w", defaultIndex, len(presets), ErrDefaultOutOfRange)
	}

	owned := make([]Preset, len(presets))
	copy(owned, presets)
	return &Table{presets: owned, def: defaultIndex}, nil
}

// DefaultTable returns the built-in table.
func DefaultTable() *Table {
	t, err := NewTable(DefaultPresets, DefaultIndex)
	if err != nil {
		panic(err)
	}
	return t
}

// Len returns the number of presets.
func (t *Table) Len() int {
	return len(t.presets)
}

// At returns the preset at index i. It panics if i is out of range.
func (t *Table) At(i int) Preset {
	return t.presets[i]
}

// Presets returns a copy of the presets.
func (t *Table) Presets() []Preset {
	out := make([]Preset, len(t.presets))
	copy(out, t.presets)
	return out
}

// DefaultIndex returns the index of the default preset.
func (t *Table) DefaultIndex() int {
	return t.def
}

// Default returns the default preset.
func (t *Table) Default() Preset {
	return t.presets[t.def]
}

// Fastest returns the smallest scale in the table.
func (t *Table) Fastest() Preset {
	return t.presets[len(t.presets)-1]
}

// Slowest returns the largest scale in the table.
func (t *Table) Slowest() Preset {
	return t.presets[0]
}

// IndexOf returns the index of the preset whose scale is numerically closest
// to value. Ties resolve to the lowest index.
func (t *Table) IndexOf(value uint32) int {
	best := 0
	bestDiff := absDiff(t.presets[0].Scale, value)
	for i := 1; i < len(t.presets); i++ {
		if d := absDiff(t.presets[i].Scale, value); d < bestDiff {
			best, bestDiff = i, d
		}
	}
	return best
}

// Nearest returns the preset closest to value.
func (t *Table) Nearest(value uint32) Preset {
	return t.presets[t.IndexOf(value)]
}

// Lookup finds a preset by label.
func (t *Table) Lookup(label string) (int, error) {
	for i, p := range t.presets {
		if p.Label == label {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%q: %w", label, ErrUnknownPreset)
}

func absDiff(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return b - a
}
