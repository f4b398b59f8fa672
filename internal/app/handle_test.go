package app

import (
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/narrator/internal/queue"
	"github.com/dgnsrekt/narrator/internal/speed"
	"github.com/dgnsrekt/narrator/internal/state"
)

func TestNewHandleDefaults(t *testing.T) {
	h, err := NewHandle(Options{}, log.New(io.Discard))
	if err != nil {
		t.Fatalf("NewHandle() error = %v", err)
	}

	if got := h.Store.Speed(); got != 100 {
		t.Errorf("Speed() = %v, want %v", got, 100)
	}
	if got := h.Store.Playback(); got != state.Idle {
		t.Errorf("Playback() = %v, want %v", got, state.Idle)
	}
	if got := h.Speed.Current().Label; got != "x1" {
		t.Errorf("Current() = %v, want %v", got, "x1")
	}
}

func TestNewHandleInitialPreset(t *testing.T) {
	h, err := NewHandle(Options{Initial: "x2"}, log.New(io.Discard))
	if err != nil {
		t.Fatalf("NewHandle() error = %v", err)
	}
	if got := h.Store.Speed(); got != 50 {
		t.Errorf("Speed() = %v, want %v", got, 50)
	}

	if _, err := NewHandle(Options{Initial: "x42"}, nil); !errors.Is(err, speed.ErrUnknownPreset) {
		t.Errorf("NewHandle() error = %v, want %v", err, speed.ErrUnknownPreset)
	}
}

func TestNewHandleStrategy(t *testing.T) {
	_, err := NewHandle(Options{Strategy: "spiral"}, log.New(io.Discard))
	if !errors.Is(err, speed.ErrUnknownStrategy) {
		t.Errorf("NewHandle() error = %v, want %v", err, speed.ErrUnknownStrategy)
	}

	h, err := NewHandle(Options{
		Strategy: speed.StrategyStep,
		Step:     speed.StepOptions{Step: 10, Min: 33, Max: 200},
	}, log.New(io.Discard))
	if err != nil {
		t.Fatalf("NewHandle() error = %v", err)
	}
	h.Speed.Faster()
	if got := h.Store.Speed(); got != 90 {
		t.Errorf("Speed() after Faster() = %v, want %v", got, 90)
	}
}

// TestHandlesAreIndependent checks two handles share no cells or queues.
func TestHandlesAreIndependent(t *testing.T) {
	a, _ := NewHandle(Options{}, log.New(io.Discard))
	b, _ := NewHandle(Options{}, log.New(io.Discard))

	a.Speed.Faster()
	_ = a.Queue.Send(queue.Play)
	a.Close()

	if b.Store.Speed() != 100 {
		t.Errorf("b.Speed() = %v, want %v", b.Store.Speed(), 100)
	}
	if b.Queue.Len() != 0 {
		t.Errorf("b.Queue.Len() = %v, want 0", b.Queue.Len())
	}
	if b.Store.Exiting() {
		t.Error("b.Exiting() = true, want false")
	}
	if !a.Store.Exiting() {
		t.Error("a.Exiting() = false after Close")
	}
}
