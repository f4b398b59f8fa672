// Package capture turns the user's current selection into a synthesized
// speech artifact: copy, read the clipboard, clean the text, synthesize.
package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/atotto/clipboard"
)

// DefaultCopyDelay gives the focused application time to fill the clipboard.
const DefaultCopyDelay = 150 * time.Millisecond

var (
	// ErrEmptyClipboard is returned when the clipboard holds no text.
	ErrEmptyClipboard = errors.New("clipboard is empty or holds no text")

	// ErrEmptyText is returned when nothing speakable is left after cleaning.
	ErrEmptyText = errors.New("text is empty after cleaning")
)

// Copier makes the focused application copy its selection.
type Copier interface {
	Copy(ctx context.Context) error
}

// CommandCopier runs an external command that sends the copy keystroke, for
// example "xdotool key --clearmodifiers ctrl+c", and then waits Delay.
type CommandCopier struct {
	Command string
	Delay   time.Duration
	Timeout time.Duration
}

// Copy runs the command. An empty command only waits, which suits setups
// where the selection is copied by hand.
func (c *CommandCopier) Copy(ctx context.Context) error {
	if args := strings.Fields(c.Command); len(args) > 0 {
		timeout := c.Timeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		runCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		cmd := exec.CommandContext(runCtx, args[0], args[1:]...)
		var stderr bytes.Buffer
		cmd.Stderr = &stderr
		if err := cmd.Run(); err != nil {
			if msg := strings.TrimSpace(stderr.String()); msg != "" {
				return fmt.Errorf("copy command failed: %w\nstderr: %s", err, msg)
			}
			return fmt.Errorf("copy command failed: %w", err)
		}
	}

	select {
	case <-time.After(c.Delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Clipboard reads text from the clipboard.
type Clipboard interface {
	ReadText() (string, error)
}

// SystemClipboard reads the desktop clipboard.
type SystemClipboard struct{}

// ReadText returns the clipboard text, or ErrEmptyClipboard if it is blank.
func (SystemClipboard) ReadText() (string, error) {
	if clipboard.Unsupported {
		return "", fmt.Errorf("no clipboard utility available")
	}
	text, err := clipboard.ReadAll()
	if err != nil {
		return "", fmt.Errorf("failed to read clipboard: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyClipboard
	}
	return text, nil
}

// StaticText is a Clipboard that always returns the same text. The say
// command feeds its argument through it.
type StaticText string

func (s StaticText) ReadText() (string, error) {
	if strings.TrimSpace(string(s)) == "" {
		return "", ErrEmptyClipboard
	}
	return string(s), nil
}
