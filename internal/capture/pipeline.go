package capture

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"

	"github.com/dgnsrekt/narrator/internal/cache"
	"github.com/dgnsrekt/narrator/internal/speed"
)

// previewLen is how much captured text is shown in log lines.
const previewLen = 50

// Result describes one successful capture.
type Result struct {
	Text   string
	Path   string
	Size   int64
	Cached bool
}

// Pipeline runs copy, clipboard read, cleaning and synthesis in order. The
// artifact at Artifact is replaced atomically, so a decoder opening it never
// sees a partial file.
type Pipeline struct {
	Copier    Copier
	Clipboard Clipboard
	Cleaner   *Cleaner
	Synth     Synthesizer
	// Cache is optional.
	Cache cache.Store
	// Model is part of the cache key.
	Model    string
	Artifact string
	Logger   *log.Logger
}

// Run captures the selection and synthesizes it at the given speed value.
func (p *Pipeline) Run(ctx context.Context, scale uint32) (Result, error) {
	logger := p.Logger
	if logger == nil {
		logger = log.Default()
	}

	if p.Copier != nil {
		logger.Debug("Copying selection")
		if err := p.Copier.Copy(ctx); err != nil {
			return Result{}, err
		}
	}

	raw, err := p.Clipboard.ReadText()
	if err != nil {
		return Result{}, err
	}
	logger.Debug("Read clipboard", "chars", len([]rune(raw)))

	cleaner := p.Cleaner
	if cleaner == nil {
		cleaner = NewCleaner(false, 0)
	}
	text, err := cleaner.Clean(raw)
	if err != nil {
		return Result{}, err
	}

	lengthScale := speed.LengthScale(scale)
	logger.Info("Synthesizing", "length_scale", fmt.Sprintf("%.2f", lengthScale), "text", Preview(text, previewLen))

	key := cache.Key(text, p.Model, scale)
	if p.Cache != nil {
		if data, ok := p.Cache.Get(key); ok {
			if err := p.install(data); err != nil {
				return Result{}, err
			}
			logger.Debug("Cache hit", "size", humanize.Bytes(uint64(len(data))))
			return Result{Text: text, Path: p.Artifact, Size: int64(len(data)), Cached: true}, nil
		}
	}

	tmp, err := p.tempPath()
	if err != nil {
		return Result{}, err
	}
	defer os.Remove(tmp)

	if err := p.Synth.Synthesize(ctx, text, lengthScale, tmp); err != nil {
		return Result{}, err
	}
	data, err := os.ReadFile(tmp)
	if err != nil {
		return Result{}, fmt.Errorf("synthesizer wrote no audio: %w", err)
	}
	if err := os.Rename(tmp, p.Artifact); err != nil {
		return Result{}, fmt.Errorf("failed to install audio artifact: %w", err)
	}

	if p.Cache != nil {
		if err := p.Cache.Put(key, data); err != nil {
			logger.Warn("Failed to cache audio", "error", err)
		}
	}

	logger.Info("Synthesis finished", "size", humanize.Bytes(uint64(len(data))))
	return Result{Text: text, Path: p.Artifact, Size: int64(len(data))}, nil
}

// tempPath reserves a unique file next to the artifact.
func (p *Pipeline) tempPath() (string, error) {
	dir := filepath.Dir(p.Artifact)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create artifact directory: %w", err)
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(p.Artifact)+"-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp artifact: %w", err)
	}
	name := f.Name()
	_ = f.Close()
	return name, nil
}

// install writes cached audio to the artifact location.
func (p *Pipeline) install(data []byte) error {
	tmp, err := p.tempPath()
	if err != nil {
		return err
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write cached audio: %w", err)
	}
	if err := os.Rename(tmp, p.Artifact); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to install cached audio: %w", err)
	}
	return nil
}
