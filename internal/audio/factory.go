package audio

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

// Config selects and configures a backend.
type Config struct {
	Backend    string
	SampleRate int
	Channels   int
	Buffer     time.Duration
}

// DefaultConfig returns the oto backend at the Piper voice format.
func DefaultConfig() Config {
	return Config{
		Backend:    BackendOto,
		SampleRate: DefaultSampleRate,
		Channels:   DefaultChannels,
	}
}

// New returns the output named by cfg.Backend.
func New(cfg Config, logger *log.Logger) (Output, error) {
	if logger == nil {
		logger = log.Default()
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = DefaultSampleRate
	}
	if cfg.Channels <= 0 {
		cfg.Channels = DefaultChannels
	}

	switch cfg.Backend {
	case "", BackendOto:
		return NewOtoOutput(Format{SampleRate: cfg.SampleRate, Channels: cfg.Channels}, cfg.Buffer, logger), nil
	case BackendBeep:
		return NewBeepOutput(cfg.SampleRate, cfg.Buffer, logger), nil
	case BackendMock:
		out := NewMockOutput()
		out.AutoDrain = true
		return out, nil
	default:
		return nil, fmt.Errorf("%q: %w", cfg.Backend, ErrUnknownBackend)
	}
}
