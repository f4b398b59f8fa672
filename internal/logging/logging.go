// Package logging sets up the process logger: an append-only file with
// RFC3339 timestamps, optionally mirrored to the terminal.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Options configures Setup.
type Options struct {
	// Path is the log file. Empty disables the file.
	Path  string
	Level string
	// Console, when set, receives the same lines as the file.
	Console io.Writer
}

// Setup builds the logger, installs it as the default and returns a closer
// for the file.
func Setup(opts Options) (*log.Logger, func() error, error) {
	level := log.InfoLevel
	if opts.Level != "" {
		l, err := log.ParseLevel(opts.Level)
		if err != nil {
			return nil, nil, err
		}
		level = l
	}

	var (
		writers []io.Writer
		closer  = func() error { return nil }
	)
	if opts.Path != "" {
		if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("unable to create log directory: %w", err)
		}
		f, err := os.OpenFile(opts.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("unable to open log file: %w", err)
		}
		writers = append(writers, f)
		closer = f.Close
	}
	if opts.Console != nil {
		writers = append(writers, opts.Console)
	}

	var out io.Writer = io.Discard
	switch len(writers) {
	case 0:
	case 1:
		out = writers[0]
	default:
		out = io.MultiWriter(writers...)
	}

	logger := log.NewWithOptions(out, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          "narrator",
	})
	log.SetDefault(logger)
	return logger, closer, nil
}

// SetLevel changes the level of logger, ignoring names it does not know.
// Loggers derived from logger keep their own level; use a Family to change
// them together.
func SetLevel(logger *log.Logger, name string) {
	level, err := log.ParseLevel(name)
	if err != nil {
		logger.Warn("Unknown log level", "level", name)
		return
	}
	if logger.GetLevel() != level {
		logger.SetLevel(level)
		logger.Info("Log level changed", "level", level)
	}
}

// Family hands out prefixed loggers derived from one root and changes their
// level together.
type Family struct {
	mu      sync.Mutex
	root    *log.Logger
	members []*log.Logger
}

// NewFamily returns a family rooted at root. A nil root uses the default
// logger.
func NewFamily(root *log.Logger) *Family {
	if root == nil {
		root = log.Default()
	}
	return &Family{root: root}
}

// Root returns the logger the family was built from.
func (f *Family) Root() *log.Logger {
	return f.root
}

// Named returns a logger with prefix that follows SetLevel.
func (f *Family) Named(prefix string) *log.Logger {
	f.mu.Lock()
	defer f.mu.Unlock()

	l := f.root.WithPrefix(prefix)
	l.SetLevel(f.root.GetLevel())
	f.members = append(f.members, l)
	return l
}

// SetLevel changes the level of the root and every named logger.
func (f *Family) SetLevel(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	SetLevel(f.root, name)
	level := f.root.GetLevel()
	for _, l := range f.members {
		l.SetLevel(level)
	}
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}
