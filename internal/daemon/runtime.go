// Package daemon assembles the playback controller, the producers and the
// front ends into one process and runs them until shutdown.
package daemon

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/dgnsrekt/narrator/internal/app"
	"github.com/dgnsrekt/narrator/internal/audio"
	"github.com/dgnsrekt/narrator/internal/cache"
	"github.com/dgnsrekt/narrator/internal/capture"
	"github.com/dgnsrekt/narrator/internal/config"
	"github.com/dgnsrekt/narrator/internal/hotkey"
	"github.com/dgnsrekt/narrator/internal/logging"
	"github.com/dgnsrekt/narrator/internal/player"
	"github.com/dgnsrekt/narrator/internal/producer"
)

// Front is the part of the process that owns the main goroutine: the tray,
// the terminal UI or a one-shot command. It returns when the user is done or
// ctx is cancelled.
type Front func(ctx context.Context, rt *Runtime) error

// hotkeyRunner is the part of hotkey.Dispatcher the runtime drives.
type hotkeyRunner interface {
	Run(ctx context.Context) error
}

var newDispatcher = func(bindings map[hotkey.Action]hotkey.Binding, actions hotkey.Actions, logger *log.Logger) hotkeyRunner {
	return hotkey.NewDispatcher(bindings, actions, logger)
}

// Options selects optional pieces.
type Options struct {
	// Hotkeys registers the global shortcuts.
	Hotkeys bool
	// Clipboard overrides the system clipboard, for one-shot text.
	Clipboard capture.Clipboard
	// NoCopy skips the copy command.
	NoCopy bool
}

// Runtime holds every long-lived component.
type Runtime struct {
	Config     *config.Config
	Handle     *app.Handle
	Handlers   *producer.Handlers
	Controller *player.Controller
	Pipeline   *capture.Pipeline

	cache  cache.Store
	opts   Options
	logger *log.Logger
	logs   *logging.Family
	ctx    context.Context
	cancel context.CancelFunc
}

// New builds the runtime from cfg. Nothing runs until Run.
func New(cfg *config.Config, opts Options, logger *log.Logger) (*Runtime, error) {
	logs := logging.NewFamily(logger)
	logger = logs.Root()

	table, err := cfg.SpeedTable()
	if err != nil {
		return nil, err
	}
	handle, err := app.NewHandle(app.Options{
		Table:    table,
		Strategy: cfg.Speed.Strategy,
		Step:     cfg.StepOptions(),
	}, logs.Named("speed"))
	if err != nil {
		return nil, err
	}

	output, err := audio.New(cfg.AudioConfig(), logs.Named("audio"))
	if err != nil {
		return nil, err
	}
	controller := player.New(handle.Store, handle.Queue, output, player.Config{
		ArtifactPath: cfg.Piper.Artifact,
		PollInterval: cfg.Player.PollInterval,
	}, logs.Named("player"))

	var store cache.Store
	if cfg.Cache.Enabled {
		tiered, err := cache.NewTiered(cfg.CacheConfig())
		if err != nil {
			logger.Warn("Audio cache disabled", "dir", cfg.Cache.Dir, "error", err)
		} else {
			store = tiered
		}
	}

	pipeline := &capture.Pipeline{
		Clipboard: capture.SystemClipboard{},
		Cleaner:   capture.NewCleaner(cfg.Capture.StripMarkdown, cfg.Capture.MaxChars),
		Synth: &capture.Piper{
			Binary:  cfg.Piper.Binary,
			Model:   cfg.Piper.Model,
			Timeout: cfg.Piper.Timeout,
		},
		Cache:    store,
		Model:    cfg.Piper.Model,
		Artifact: cfg.Piper.Artifact,
		Logger:   logs.Named("capture"),
	}
	if !opts.NoCopy {
		pipeline.Copier = &capture.CommandCopier{Command: cfg.Capture.CopyCommand, Delay: cfg.Capture.CopyDelay}
	}
	if opts.Clipboard != nil {
		pipeline.Clipboard = opts.Clipboard
	}

	if cfg.Piper.Model == "" {
		logger.Warn("No piper voice model configured", "key", "piper.model")
	}

	ctx, cancel := context.WithCancel(context.Background())
	handlers := producer.New(ctx, handle, pipeline, producer.Options{
		Workers:  cfg.Workers,
		Debounce: cfg.Hotkeys.Debounce,
	}, logs.Named("producer"))

	return &Runtime{
		Config:     cfg,
		Handle:     handle,
		Handlers:   handlers,
		Controller: controller,
		Pipeline:   pipeline,
		cache:      store,
		opts:       opts,
		logger:     logger,
		logs:       logs,
		ctx:        ctx,
		cancel:     cancel,
	}, nil
}

// Run starts the controller and the hotkeys, then hands the calling goroutine
// to front. It returns once everything has stopped. Shutdown starts when the
// exit flag is set, SIGINT or SIGTERM arrives, ctx is cancelled or front
// returns.
func (r *Runtime) Run(ctx context.Context, front Front) error {
	var dispatcher hotkeyRunner
	if r.opts.Hotkeys && r.Config.Hotkeys.Enabled {
		bindings, err := hotkey.ParseAll(r.Config.Bindings())
		if err != nil {
			return err
		}
		dispatcher = newDispatcher(bindings, r.Handlers, r.logs.Named("hotkey"))
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		return r.Controller.Run(gctx)
	})

	// Hotkey failures are logged and do not stop the runtime.
	if dispatcher != nil {
		g.Go(func() error {
			err := dispatcher.Run(gctx)
			switch {
			case errors.Is(err, hotkey.ErrUnavailable):
				r.logger.Warn("Global hotkeys unavailable", "error", err)
			case err != nil:
				r.logger.Error("Global hotkeys stopped", "error", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		r.Handle.Close()
		return nil
	})

	r.logger.Info("Narrator started", "speed", r.Handle.Speed.Current().Label, "backend", r.Config.Audio.Backend)
	frontErr := front(gctx, r)

	r.Handle.Close()
	cancel()
	err := g.Wait()

	r.cancel()
	r.Handlers.Wait()
	r.close()

	return errors.Join(frontErr, err)
}

// Logger returns a component logger that follows SetLogLevel.
func (r *Runtime) Logger(prefix string) *log.Logger {
	return r.logs.Named(prefix)
}

// SetLogLevel changes the level of every logger the runtime handed out.
func (r *Runtime) SetLogLevel(name string) {
	r.logs.SetLevel(name)
}

func (r *Runtime) close() {
	if r.cache == nil {
		return
	}
	stats := r.cache.Stats()
	r.logger.Debug("Audio cache",
		"items", stats.ItemCount,
		"size", humanize.Bytes(uint64(stats.Size)),
		"hit_rate", humanize.FtoaWithDigits(stats.HitRate()*100, 1)+"%",
	)
	if err := r.cache.Close(); err != nil {
		r.logger.Warn("Failed to close audio cache", "error", err)
	}
}
