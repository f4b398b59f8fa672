package player

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/narrator/internal/audio"
	"github.com/dgnsrekt/narrator/internal/queue"
	"github.com/dgnsrekt/narrator/internal/state"
)

type harness struct {
	store    *state.Store
	queue    *queue.Queue
	output   *audio.MockOutput
	ctrl     *Controller
	artifact string
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	artifact := filepath.Join(t.TempDir(), "speech.wav")
	if err := os.WriteFile(artifact, []byte("fake audio"), 0o600); err != nil {
		t.Fatal(err)
	}

	h := &harness{
		store:    state.NewStore(100),
		queue:    queue.New(),
		output:   audio.NewMockOutput(),
		artifact: artifact,
	}
	h.ctrl = New(h.store, h.queue, h.output, Config{
		ArtifactPath: artifact,
		PollInterval: 5 * time.Millisecond,
	}, log.New(io.Discard))
	return h
}

// drive applies a command the way Run does: handle, then check for end of
// stream.
func (h *harness) drive(cmd queue.Command) state.PlaybackState {
	h.ctrl.Handle(cmd)
	h.ctrl.CheckEnd()
	return h.store.Playback()
}

// reach puts the controller into the requested state from Idle.
func (h *harness) reach(t *testing.T, s state.PlaybackState) {
	t.Helper()
	switch s {
	case state.Playing:
		h.drive(queue.Play)
	case state.Paused:
		h.drive(queue.Play)
		h.drive(queue.TogglePause)
	}
	if got := h.store.Playback(); got != s {
		t.Fatalf("setup reached %v, want %v", got, s)
	}
}

func TestTransitionTable(t *testing.T) {
	tests := []struct {
		from state.PlaybackState
		cmd  queue.Command
		want state.PlaybackState
	}{
		{state.Idle, queue.Play, state.Playing},
		{state.Playing, queue.Play, state.Playing},
		{state.Paused, queue.Play, state.Playing},
		{state.Idle, queue.Stop, state.Idle},
		{state.Playing, queue.Stop, state.Idle},
		{state.Paused, queue.Stop, state.Idle},
		{state.Idle, queue.TogglePause, state.Idle},
		{state.Playing, queue.TogglePause, state.Paused},
		{state.Paused, queue.TogglePause, state.Playing},
	}

	for _, tt := range tests {
		t.Run(tt.from.String()+"+"+tt.cmd.String(), func(t *testing.T) {
			h := newHarness(t)
			h.reach(t, tt.from)

			if got := h.drive(tt.cmd); got != tt.want {
				t.Errorf("%v + %v = %v, want %v", tt.from, tt.cmd, got, tt.want)
			}
		})
	}
}

func TestStopClearsSink(t *testing.T) {
	for _, from := range []state.PlaybackState{state.Idle, state.Playing, state.Paused} {
		t.Run(from.String(), func(t *testing.T) {
			h := newHarness(t)
			h.reach(t, from)
			prev := h.output.LastSink()

			h.drive(queue.Stop)

			if h.ctrl.HasSink() {
				t.Error("HasSink() = true after Stop")
			}
			if prev != nil && !prev.Stopped() {
				t.Error("previous sink was not stopped")
			}
		})
	}
}

func TestPlayPreemptsCurrentSink(t *testing.T) {
	h := newHarness(t)

	h.drive(queue.Play)
	first := h.output.LastSink()
	h.drive(queue.Play)
	second := h.output.LastSink()

	if first == second {
		t.Fatal("second Play reused the first sink")
	}
	if !first.Stopped() {
		t.Error("first sink was not stopped by the second Play")
	}
	if second.Stopped() {
		t.Error("second sink is stopped")
	}
	if h.output.Opens() != 1 {
		t.Errorf("Opens() = %v, want a single lazily opened stream", h.output.Opens())
	}
}

// TestStaleEmptyDoesNotRegress plays twice before the first sink drains and
// checks the drained old sink never ends the new playback.
func TestStaleEmptyDoesNotRegress(t *testing.T) {
	h := newHarness(t)

	h.drive(queue.Play)
	first := h.output.LastSink()
	h.drive(queue.Play)

	first.Drain()
	h.ctrl.CheckEnd()

	if got := h.store.Playback(); got != state.Playing {
		t.Errorf("Playback() = %v, want %v", got, state.Playing)
	}
}

func TestEndOfStream(t *testing.T) {
	h := newHarness(t)
	h.drive(queue.Play)

	h.ctrl.CheckEnd()
	if got := h.store.Playback(); got != state.Playing {
		t.Fatalf("Playback() before drain = %v, want %v", got, state.Playing)
	}

	h.output.LastSink().Drain()
	h.ctrl.CheckEnd()
	if got := h.store.Playback(); got != state.Idle {
		t.Errorf("Playback() after drain = %v, want %v", got, state.Idle)
	}
	if h.ctrl.HasSink() {
		t.Error("HasSink() = true after end of stream")
	}
}

func TestPausedSinkIsNotEnded(t *testing.T) {
	h := newHarness(t)
	h.reach(t, state.Paused)

	h.output.LastSink().Drain()
	h.ctrl.CheckEnd()

	if got := h.store.Playback(); got != state.Paused {
		t.Errorf("Playback() = %v, want %v", got, state.Paused)
	}
}

func TestPlayFailureLeavesStateUnchanged(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name   string
		script func(h *harness)
		// the stream opens once, so its failure only applies before the first Play
		idleOnly bool
	}{
		{"open stream", func(h *harness) { h.output.SetOpenErr(boom) }, true},
		{"create sink", func(h *harness) { h.output.SetSinkErr(boom) }, false},
		{"open artifact", func(h *harness) { _ = os.Remove(h.artifact) }, false},
		{"decode", func(h *harness) { h.output.SetDecodeErr(boom) }, false},
	}

	for _, from := range []state.PlaybackState{state.Idle, state.Playing, state.Paused} {
		for _, tt := range tests {
			if tt.idleOnly && from != state.Idle {
				continue
			}
			t.Run(from.String()+"/"+tt.name, func(t *testing.T) {
				h := newHarness(t)
				h.reach(t, from)
				tt.script(h)

				h.ctrl.Handle(queue.Play)

				if got := h.store.Playback(); got != from {
					t.Errorf("Playback() = %v, want unchanged %v", got, from)
				}
				if h.ctrl.HasSink() {
					t.Error("HasSink() = true after a failed Play")
				}
			})
		}
	}
}

func TestOpenFailureRetriedOnNextPlay(t *testing.T) {
	h := newHarness(t)
	h.output.SetOpenErr(errors.New("device busy"))

	h.drive(queue.Play)
	if got := h.store.Playback(); got != state.Idle {
		t.Fatalf("Playback() = %v, want %v", got, state.Idle)
	}

	h.output.SetOpenErr(nil)
	if got := h.drive(queue.Play); got != state.Playing {
		t.Errorf("Playback() after retry = %v, want %v", got, state.Playing)
	}
}

func TestFailedPlayWhilePlayingEndsOnNextPoll(t *testing.T) {
	h := newHarness(t)
	h.reach(t, state.Playing)
	h.output.SetDecodeErr(errors.New("corrupt"))

	h.ctrl.Handle(queue.Play)
	if got := h.store.Playback(); got != state.Playing {
		t.Fatalf("Playback() = %v, want %v", got, state.Playing)
	}

	h.ctrl.CheckEnd()
	if got := h.store.Playback(); got != state.Idle {
		t.Errorf("Playback() after poll = %v, want %v", got, state.Idle)
	}
}

func TestPauseResumeCallsSink(t *testing.T) {
	h := newHarness(t)
	h.drive(queue.Play)
	h.drive(queue.TogglePause)
	h.drive(queue.TogglePause)

	if p, r := h.output.LastSink().Calls(); p != 1 || r != 1 {
		t.Errorf("Calls() = %d, %d, want 1, 1", p, r)
	}
}

func TestRunExitsOnFlag(t *testing.T) {
	h := newHarness(t)
	done := make(chan error, 1)

	go func() { done <- h.ctrl.Run(context.Background()) }()

	if err := h.queue.Send(queue.Play); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return h.store.Playback() == state.Playing })
	sink := h.output.LastSink()

	h.store.RequestExit()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run() did not observe the exit flag")
	}

	if !sink.Stopped() {
		t.Error("active sink was not stopped on exit")
	}
	if h.output.Closes() != 1 {
		t.Errorf("Closes() = %v, want %v", h.output.Closes(), 1)
	}
	if err := h.queue.Send(queue.Stop); !errors.Is(err, queue.ErrClosed) {
		t.Errorf("Send() after exit error = %v, want %v", err, queue.ErrClosed)
	}
}

func TestRunExitsOnContextAndClosedQueue(t *testing.T) {
	t.Run("context", func(t *testing.T) {
		h := newHarness(t)
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- h.ctrl.Run(ctx) }()

		cancel()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("Run() did not observe context cancellation")
		}
	})

	t.Run("closed queue", func(t *testing.T) {
		h := newHarness(t)
		h.queue.Close()

		done := make(chan error, 1)
		go func() { done <- h.ctrl.Run(context.Background()) }()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("Run() did not return on a closed queue")
		}
	})
}

func TestRunDetectsCompletionThroughWake(t *testing.T) {
	h := newHarness(t)
	// a long poll interval proves the wake-up, not the timeout, ended playback
	h.ctrl.config.PollInterval = 10 * time.Second

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = h.ctrl.Run(ctx) }()

	_ = h.queue.Send(queue.Play)
	waitFor(t, func() bool { return h.store.Playback() == state.Playing })

	h.output.LastSink().Drain()
	waitFor(t, func() bool { return h.store.Playback() == state.Idle })

	h.store.RequestExit()
	h.queue.Wake()
}

func TestCommandSequences(t *testing.T) {
	h := newHarness(t)
	seq := []struct {
		cmd  queue.Command
		want state.PlaybackState
	}{
		{queue.TogglePause, state.Idle},
		{queue.Play, state.Playing},
		{queue.TogglePause, state.Paused},
		{queue.Play, state.Playing},
		{queue.TogglePause, state.Paused},
		{queue.TogglePause, state.Playing},
		{queue.Stop, state.Idle},
		{queue.Stop, state.Idle},
		{queue.TogglePause, state.Idle},
	}

	for i, step := range seq {
		if got := h.drive(step.cmd); got != step.want {
			t.Fatalf("step %d: %v = %v, want %v", i, step.cmd, got, step.want)
		}
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
