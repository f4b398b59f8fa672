package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Synthesizer writes speech for text to output.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, lengthScale float64, output string) error
}

// Piper runs the piper command line synthesizer. Text goes in on stdin and
// the voice writes a WAV file.
type Piper struct {
	Binary  string
	Model   string
	Timeout time.Duration
}

// Args returns the command line for one synthesis.
func (p *Piper) Args(lengthScale float64, output string) []string {
	return []string{
		"--model", p.Model,
		"--output_file", output,
		"--length_scale", strconv.FormatFloat(lengthScale, 'f', 2, 64),
	}
}

func (p *Piper) Synthesize(ctx context.Context, text string, lengthScale float64, output string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyText
	}

	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, p.Binary, p.Args(lengthScale, output)...)
	hideWindow(cmd)

	// stdin is attached before the process starts
	cmd.Stdin = strings.NewReader(text)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start piper: %w", err)
	}
	err := cmd.Wait()

	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return fmt.Errorf("piper timed out after %v", timeout)
		}
		return fmt.Errorf("piper cancelled: %w", ctxErr)
	}
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("piper failed: %w\nstderr: %s", err, msg)
		}
		return fmt.Errorf("piper failed: %w", err)
	}
	return nil
}
