//go:build !nocgo

package hotkey

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"golang.design/x/hotkey"
)

var namedKeys = map[string]hotkey.Key{
	"space":  hotkey.KeySpace,
	"up":     hotkey.KeyUp,
	"down":   hotkey.KeyDown,
	"left":   hotkey.KeyLeft,
	"right":  hotkey.KeyRight,
	"return": hotkey.KeyReturn,
	"escape": hotkey.KeyEscape,
	"tab":    hotkey.KeyTab,
	"delete": hotkey.KeyDelete,
}

var functionKeys = [...]hotkey.Key{
	hotkey.KeyF1, hotkey.KeyF2, hotkey.KeyF3, hotkey.KeyF4,
	hotkey.KeyF5, hotkey.KeyF6, hotkey.KeyF7, hotkey.KeyF8,
	hotkey.KeyF9, hotkey.KeyF10, hotkey.KeyF11, hotkey.KeyF12,
}

var letterKeys = [...]hotkey.Key{
	hotkey.KeyA, hotkey.KeyB, hotkey.KeyC, hotkey.KeyD, hotkey.KeyE,
	hotkey.KeyF, hotkey.KeyG, hotkey.KeyH, hotkey.KeyI, hotkey.KeyJ,
	hotkey.KeyK, hotkey.KeyL, hotkey.KeyM, hotkey.KeyN, hotkey.KeyO,
	hotkey.KeyP, hotkey.KeyQ, hotkey.KeyR, hotkey.KeyS, hotkey.KeyT,
	hotkey.KeyU, hotkey.KeyV, hotkey.KeyW, hotkey.KeyX, hotkey.KeyY,
	hotkey.KeyZ,
}

var digitKeys = [...]hotkey.Key{
	hotkey.Key0, hotkey.Key1, hotkey.Key2, hotkey.Key3, hotkey.Key4,
	hotkey.Key5, hotkey.Key6, hotkey.Key7, hotkey.Key8, hotkey.Key9,
}

func (b Binding) nativeKey() (hotkey.Key, error) {
	if k, ok := namedKeys[b.Key]; ok {
		return k, nil
	}
	if n, ok := functionKey(b.Key); ok {
		return functionKeys[n-1], nil
	}
	if len(b.Key) == 1 {
		switch c := b.Key[0]; {
		case c >= 'a' && c <= 'z':
			return letterKeys[c-'a'], nil
		case c >= '0' && c <= '9':
			return digitKeys[c-'0'], nil
		}
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownKey, b.Key)
}

func (b Binding) nativeMods() []hotkey.Modifier {
	var mods []hotkey.Modifier
	if b.Ctrl {
		mods = append(mods, hotkey.ModCtrl)
	}
	if b.Shift {
		mods = append(mods, hotkey.ModShift)
	}
	return mods
}

// Dispatcher owns the registered shortcuts and the goroutine that acts on
// them.
type Dispatcher struct {
	bindings map[Action]Binding
	actions  Actions
	logger   *log.Logger
}

// NewDispatcher returns a dispatcher. Nothing is registered until Run.
func NewDispatcher(bindings map[Action]Binding, actions Actions, logger *log.Logger) *Dispatcher {
	if logger == nil {
		logger = log.Default()
	}
	return &Dispatcher{bindings: bindings, actions: actions, logger: logger}
}

// Run registers every binding and dispatches key presses until ctx is done.
// Shortcuts are unregistered on return.
func (d *Dispatcher) Run(ctx context.Context) error {
	events := make(chan Action)
	var registered []*hotkey.Hotkey
	defer func() {
		for _, hk := range registered {
			if err := hk.Unregister(); err != nil {
				d.logger.Debug("Failed to unregister hotkey", "hotkey", hk, "error", err)
			}
		}
	}()

	var failed error
	for action, b := range d.bindings {
		if err := d.register(ctx, action, b, events, &registered); err != nil {
			d.logger.Warn("Hotkey not registered", "action", action, "binding", b, "error", err)
			failed = errors.Join(failed, err)
		}
	}
	if len(registered) == 0 && failed != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, failed)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case a := <-events:
			Dispatch(d.actions, a, d.logger)
		}
	}
}

func (d *Dispatcher) register(ctx context.Context, action Action, b Binding, events chan<- Action, registered *[]*hotkey.Hotkey) error {
	key, err := b.nativeKey()
	if err != nil {
		return err
	}
	hk := hotkey.New(b.nativeMods(), key)
	if err := hk.Register(); err != nil {
		return fmt.Errorf("failed to register %s for %s: %w", b, action, err)
	}
	*registered = append(*registered, hk)
	d.logger.Debug("Registered hotkey", "action", action, "binding", b)

	go forward(ctx, hk.Keydown(), action, events)
	return nil
}

func forward(ctx context.Context, keydown <-chan hotkey.Event, a Action, out chan<- Action) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-keydown:
			if !ok {
				return
			}
			select {
			case out <- a:
			case <-ctx.Done():
				return
			}
		}
	}
}
