// Package hotkey binds global keyboard shortcuts to the narrator actions.
package hotkey

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/narrator/internal/speed"
)

var (
	ErrEmptyBinding     = errors.New("empty key binding")
	ErrUnknownKey       = errors.New("unknown key")
	ErrUnknownModifier  = errors.New("unknown modifier")
	ErrDuplicateBinding = errors.New("key bound to more than one action")
	ErrUnknownAction    = errors.New("unknown action")

	// ErrUnavailable is returned when the binary was built without global
	// hotkey support.
	ErrUnavailable = errors.New("global hotkeys are not available in this build")
)

// Action names something a shortcut can trigger.
type Action string

const (
	ActionRead   Action = "read"
	ActionPause  Action = "pause"
	ActionFaster Action = "faster"
	ActionSlower Action = "slower"
)

// DefaultBindings returns the shortcuts used when none are configured.
func DefaultBindings() map[Action]string {
	return map[Action]string{
		ActionRead:   "f8",
		ActionPause:  "f9",
		ActionFaster: "ctrl+up",
		ActionSlower: "ctrl+down",
	}
}

// Binding is a parsed shortcut.
type Binding struct {
	Ctrl  bool
	Shift bool
	Key   string
}

// String returns the canonical form, for example "ctrl+shift+f10".
func (b Binding) String() string {
	var parts []string
	if b.Ctrl {
		parts = append(parts, "ctrl")
	}
	if b.Shift {
		parts = append(parts, "shift")
	}
	return strings.Join(append(parts, b.Key), "+")
}

// Parse reads a binding like "f8", "ctrl+up" or "Ctrl+Shift+F10".
// Modifiers may come in any order; the key is last.
func Parse(s string) (Binding, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Binding{}, ErrEmptyBinding
	}

	parts := strings.Split(s, "+")
	var b Binding
	for _, mod := range parts[:len(parts)-1] {
		switch strings.TrimSpace(mod) {
		case "ctrl", "control":
			b.Ctrl = true
		case "shift":
			b.Shift = true
		default:
			return Binding{}, fmt.Errorf("%w %q in %q", ErrUnknownModifier, mod, s)
		}
	}

	key := strings.TrimSpace(parts[len(parts)-1])
	if key == "" {
		return Binding{}, fmt.Errorf("%w: %q has no key", ErrEmptyBinding, s)
	}
	if !isKnownKey(key) {
		return Binding{}, fmt.Errorf("%w %q in %q", ErrUnknownKey, key, s)
	}
	b.Key = key
	return b, nil
}

// ParseAll parses a whole action table and rejects shortcuts shared by two
// actions. Empty entries unbind the action.
func ParseAll(raw map[Action]string) (map[Action]Binding, error) {
	out := make(map[Action]Binding, len(raw))
	seen := make(map[string]Action, len(raw))

	actions := make([]Action, 0, len(raw))
	for a := range raw {
		actions = append(actions, a)
	}
	sort.Slice(actions, func(i, j int) bool { return actions[i] < actions[j] })

	for _, a := range actions {
		if !a.valid() {
			return nil, fmt.Errorf("%w %q", ErrUnknownAction, a)
		}
		if strings.TrimSpace(raw[a]) == "" {
			continue
		}
		b, err := Parse(raw[a])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", a, err)
		}
		if other, ok := seen[b.String()]; ok {
			return nil, fmt.Errorf("%w: %s is used by %s and %s", ErrDuplicateBinding, b, other, a)
		}
		seen[b.String()] = a
		out[a] = b
	}
	return out, nil
}

func (a Action) valid() bool {
	switch a {
	case ActionRead, ActionPause, ActionFaster, ActionSlower:
		return true
	}
	return false
}

// Actions is what a shortcut ends up calling.
type Actions interface {
	Read() error
	TogglePause()
	Faster() speed.Preset
	Slower() speed.Preset
}

// Dispatch runs the handler for a. Handler errors are logged.
func Dispatch(h Actions, a Action, logger *log.Logger) {
	logger.Debug("Hotkey pressed", "action", a)

	switch a {
	case ActionRead:
		if err := h.Read(); err != nil {
			logger.Debug("Read trigger rejected", "error", err)
		}
	case ActionPause:
		h.TogglePause()
	case ActionFaster:
		p := h.Faster()
		logger.Info("Speed", "label", p.Label)
	case ActionSlower:
		p := h.Slower()
		logger.Info("Speed", "label", p.Label)
	default:
		logger.Warn("Unhandled hotkey action", "action", a)
	}
}

func isKnownKey(k string) bool {
	if len(k) == 1 {
		c := k[0]
		return (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
	}
	if _, ok := functionKey(k); ok {
		return true
	}
	switch k {
	case "space", "up", "down", "left", "right", "return", "escape", "tab", "delete":
		return true
	}
	return false
}

// functionKey returns n for "fN" with 1 <= N <= 12.
func functionKey(k string) (int, bool) {
	if len(k) < 2 || k[0] != 'f' {
		return 0, false
	}
	n := 0
	for _, c := range k[1:] {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	if n < 1 || n > 12 {
		return 0, false
	}
	return n, true
}
