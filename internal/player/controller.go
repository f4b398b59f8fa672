// Package player implements the playback controller: the single consumer of
// the command queue and the only writer of the playback state.
package player

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/narrator/internal/audio"
	"github.com/dgnsrekt/narrator/internal/queue"
	"github.com/dgnsrekt/narrator/internal/state"
)

// DefaultPollInterval bounds shutdown and end-of-stream detection latency.
const DefaultPollInterval = 100 * time.Millisecond

// Config holds controller settings.
type Config struct {
	// ArtifactPath is where the synthesizer writes fresh audio.
	ArtifactPath string
	// PollInterval is the queue receive timeout.
	PollInterval time.Duration
}

// Controller owns the output stream and the current sink. Nothing else ever
// holds a reference to either.
type Controller struct {
	store  *state.Store
	queue  *queue.Queue
	output audio.Output
	config Config
	logger *log.Logger

	stream audio.Stream
	sink   audio.Sink
}

// New creates a controller. The output stream is opened lazily by the first
// Play, and reopened on a later Play if opening failed.
func New(store *state.Store, q *queue.Queue, output audio.Output, cfg Config, logger *log.Logger) *Controller {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Controller{
		store:  store,
		queue:  q,
		output: output,
		config: cfg,
		logger: logger,
	}
}

// Run processes commands until the exit flag is set, ctx is done or the queue
// is closed. Each iteration handles at most one command and then checks for
// end of stream. On return the sink is stopped, the stream closed and the
// queue closed.
func (c *Controller) Run(ctx context.Context) error {
	defer c.shutdown()

	c.logger.Debug("Playback controller started", "poll_interval", c.config.PollInterval)
	for !c.store.Exiting() && ctx.Err() == nil {
		cmd, err := c.queue.Receive(c.config.PollInterval)
		switch {
		case err == nil:
			c.Handle(cmd)
		case errors.Is(err, queue.ErrClosed):
			c.logger.Debug("Command queue closed")
			return nil
		case errors.Is(err, queue.ErrTimedOut):
			// poll tick
		}
		c.CheckEnd()
	}
	return nil
}

// Handle applies one command. It must only be called from the goroutine that
// owns the controller.
func (c *Controller) Handle(cmd queue.Command) {
	c.logger.Debug("Handling command", "command", cmd, "state", c.store.Playback())

	switch cmd {
	case queue.Play:
		if err := c.play(); err != nil {
			c.logger.Error("Playback failed", "error", err)
		}
	case queue.Stop:
		c.dropSink()
		c.store.SetPlayback(state.Idle)
	case queue.TogglePause:
		c.togglePause()
	default:
		c.logger.Warn("Ignoring unknown command", "command", int(cmd))
	}
}

// play replaces the current sink with one playing the artifact. On any
// failure the playback state is left as it was.
func (c *Controller) play() error {
	c.dropSink()

	if c.stream == nil {
		stream, err := c.output.OpenStream()
		if err != nil {
			return fmt.Errorf("failed to open audio stream: %w", err)
		}
		c.stream = stream
	}

	sink, err := c.stream.NewSink(c.queue.Wake)
	if err != nil {
		return fmt.Errorf("failed to create sink: %w", err)
	}

	f, err := os.Open(c.config.ArtifactPath)
	if err != nil {
		sink.Stop()
		return fmt.Errorf("failed to open audio artifact: %w", err)
	}
	defer f.Close()

	src, err := c.stream.Decode(f)
	if err != nil {
		sink.Stop()
		return fmt.Errorf("failed to decode %s: %w", c.config.ArtifactPath, err)
	}

	sink.Append(src)
	c.sink = sink
	c.store.SetPlayback(state.Playing)
	c.logger.Info("Playing", "duration", src.Duration().Round(10*time.Millisecond))
	return nil
}

func (c *Controller) togglePause() {
	switch c.store.Playback() {
	case state.Playing:
		if c.sink != nil {
			c.sink.Pause()
		}
		c.store.SetPlayback(state.Paused)
		c.logger.Info("Paused")
	case state.Paused:
		if c.sink != nil {
			c.sink.Resume()
		}
		c.store.SetPlayback(state.Playing)
		c.logger.Info("Resumed")
	}
}

// CheckEnd moves Playing to Idle once the current sink has drained. Only the
// current sink is consulted, so a superseded sink can never end a newer
// playback. A Playing state with no sink, left behind by a failed Play, is
// treated as drained.
func (c *Controller) CheckEnd() {
	if c.store.Playback() != state.Playing {
		return
	}
	if c.sink != nil && !c.sink.Empty() {
		return
	}
	c.sink = nil
	c.store.SetPlayback(state.Idle)
	c.logger.Debug("Playback finished")
}

func (c *Controller) dropSink() {
	if c.sink != nil {
		c.sink.Stop()
		c.sink = nil
	}
}

func (c *Controller) shutdown() {
	c.dropSink()
	if c.stream != nil {
		if err := c.stream.Close(); err != nil {
			c.logger.Warn("Failed to close audio stream", "error", err)
		}
		c.stream = nil
	}
	c.queue.Close()
	c.logger.Debug("Playback controller stopped")
}

// HasSink reports whether a sink is held. Used by tests on the owning
// goroutine.
func (c *Controller) HasSink() bool {
	return c.sink != nil
}
