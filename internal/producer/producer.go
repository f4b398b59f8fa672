// Package producer turns user triggers (hotkeys, tray selections, terminal
// keys) into command queue sends and speed changes.
package producer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/dgnsrekt/narrator/internal/app"
	"github.com/dgnsrekt/narrator/internal/capture"
	"github.com/dgnsrekt/narrator/internal/queue"
	"github.com/dgnsrekt/narrator/internal/speed"
	"github.com/dgnsrekt/narrator/internal/state"
)

// DefaultWorkers bounds the number of read tasks running at once.
const DefaultWorkers = 2

var (
	// ErrBusy is returned by Read when every worker is occupied.
	ErrBusy = errors.New("all read workers are busy")

	// ErrDebounced is returned by Read when a trigger arrives too soon after
	// the previous one.
	ErrDebounced = errors.New("read trigger debounced")

	// ErrPresetOutOfRange is returned by SelectPreset for a bad index.
	ErrPresetOutOfRange = errors.New("preset index out of range")
)

// Pipeline captures text and leaves fresh audio at the artifact location.
type Pipeline interface {
	Run(ctx context.Context, scale uint32) (capture.Result, error)
}

// Options configures New.
type Options struct {
	// Workers is the read pool size; 0 selects DefaultWorkers.
	Workers int
	// Debounce is the minimum spacing between accepted read triggers.
	Debounce time.Duration
}

// Handlers are the actions every front end calls. They are safe for
// concurrent use.
type Handlers struct {
	handle   *app.Handle
	pipeline Pipeline
	logger   *log.Logger

	ctx     context.Context
	pool    *errgroup.Group
	limiter *rate.Limiter

	inFlight atomic.Int32
	mu       sync.Mutex
	last     capture.Result
	lastErr  error
}

// New returns handlers bound to h. Read tasks run under ctx.
func New(ctx context.Context, h *app.Handle, p Pipeline, opts Options, logger *log.Logger) *Handlers {
	if logger == nil {
		logger = log.Default()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	limit := rate.Inf
	if opts.Debounce > 0 {
		limit = rate.Every(opts.Debounce)
	}

	pool := &errgroup.Group{}
	pool.SetLimit(workers)

	return &Handlers{
		handle:   h,
		pipeline: p,
		logger:   logger,
		ctx:      ctx,
		pool:     pool,
		limiter:  rate.NewLimiter(limit, 1),
	}
}

// Read interrupts playback and starts a capture task that enqueues Play when
// the audio is ready. When two reads overlap, the last Play enqueued wins. A
// debounced trigger still interrupts playback but starts no task.
func (h *Handlers) Read() error {
	h.send(queue.Stop)

	if !h.limiter.Allow() {
		h.logger.Debug("Read ignored", "reason", ErrDebounced)
		return ErrDebounced
	}

	h.inFlight.Add(1)
	if !h.pool.TryGo(h.readTask) {
		h.inFlight.Add(-1)
		h.logger.Warn("Read dropped, workers busy")
		return ErrBusy
	}
	return nil
}

// readTask reports failures through Last and the log, never through the group.
func (h *Handlers) readTask() error {
	defer h.inFlight.Add(-1)
	defer func() {
		if r := recover(); r != nil {
			h.record(capture.Result{}, fmt.Errorf("read task panicked: %v", r))
			h.logger.Error("Read task panicked", "panic", r)
		}
	}()

	scale := h.handle.Store.Speed()
	res, err := h.pipeline.Run(h.ctx, scale)
	h.record(res, err)
	if err != nil {
		h.logger.Error("Read failed", "error", err)
		return nil
	}

	if h.handle.Store.Exiting() {
		return nil
	}
	h.send(queue.Play)
	return nil
}

// TogglePause pauses or resumes playback. It does nothing while idle.
func (h *Handlers) TogglePause() {
	if h.handle.Store.Playback() == state.Idle {
		h.logger.Debug("Nothing to pause")
		return
	}
	h.send(queue.TogglePause)
}

// Stop discards the current audio.
func (h *Handlers) Stop() {
	h.send(queue.Stop)
}

// Faster selects the next faster speed for future reads.
func (h *Handlers) Faster() speed.Preset {
	p, ok := h.handle.Speed.Faster()
	if !ok {
		h.logger.Debug("Already at fastest speed", "label", p.Label)
	}
	return p
}

// Slower selects the next slower speed for future reads.
func (h *Handlers) Slower() speed.Preset {
	p, ok := h.handle.Speed.Slower()
	if !ok {
		h.logger.Debug("Already at slowest speed", "label", p.Label)
	}
	return p
}

// SelectPreset sets the speed to the i-th table entry.
func (h *Handlers) SelectPreset(i int) error {
	table := h.handle.Speed.Table()
	if i < 0 || i >= table.Len() {
		return fmt.Errorf("%w: %d", ErrPresetOutOfRange, i)
	}
	h.handle.Speed.Set(table.At(i).Scale)
	return nil
}

// Exit requests shutdown and wakes the controller.
func (h *Handlers) Exit() {
	h.logger.Info("Exit requested")
	h.handle.Close()
}

// Wait blocks until running read tasks finish.
func (h *Handlers) Wait() {
	_ = h.pool.Wait()
}

// Last returns the outcome of the most recent finished read.
func (h *Handlers) Last() (capture.Result, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.last, h.lastErr
}

// InFlight reports how many read tasks are running.
func (h *Handlers) InFlight() int {
	return int(h.inFlight.Load())
}

// Handle returns the shared handle.
func (h *Handlers) Handle() *app.Handle {
	return h.handle
}

func (h *Handlers) record(res capture.Result, err error) {
	h.mu.Lock()
	h.last, h.lastErr = res, err
	h.mu.Unlock()
}

func (h *Handlers) send(cmd queue.Command) {
	if err := h.handle.Queue.Send(cmd); err != nil {
		h.logger.Debug("Command not sent", "command", cmd, "error", err)
	}
}
