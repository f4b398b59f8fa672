//go:build !nocgo
// +build !nocgo

package audio

import (
	"bytes"
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ebitengine/oto/v3"
)

// oto allows one context per process; every OtoOutput shares it.
var shared struct {
	mu     sync.Mutex
	ctx    *oto.Context
	format Format
}

// OtoOutput opens the process-wide oto context.
type OtoOutput struct {
	format       Format
	buffer       time.Duration
	readyTimeout time.Duration
	logger       *log.Logger
}

// NewOtoOutput returns an output for the given device format. A zero buffer
// picks a platform default.
func NewOtoOutput(format Format, buffer time.Duration, logger *log.Logger) *OtoOutput {
	if buffer <= 0 {
		switch runtime.GOOS {
		case "darwin":
			buffer = 100 * time.Millisecond
		case "windows":
			buffer = 80 * time.Millisecond
		default:
			buffer = 50 * time.Millisecond
		}
	}
	return &OtoOutput{format: format, buffer: buffer, readyTimeout: 5 * time.Second, logger: logger}
}

// OpenStream creates the oto context on first use and reuses it afterwards.
func (o *OtoOutput) OpenStream() (Stream, error) {
	shared.mu.Lock()
	defer shared.mu.Unlock()

	if shared.ctx != nil {
		if shared.format != o.format {
			return nil, fmt.Errorf("context already open at %d Hz/%d ch: %w",
				shared.format.SampleRate, shared.format.Channels, ErrFormatMismatch)
		}
		return &otoStream{ctx: shared.ctx, format: o.format}, nil
	}

	options := &oto.NewContextOptions{
		SampleRate:   o.format.SampleRate,
		ChannelCount: o.format.Channels,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   o.buffer,
	}

	o.logger.Debug("Initializing audio context",
		"sample_rate", options.SampleRate,
		"channels", options.ChannelCount,
		"buffer_size", options.BufferSize)

	ctx, ready, err := oto.NewContext(options)
	if err != nil {
		return nil, fmt.Errorf("failed to create audio context: %w", err)
	}

	select {
	case <-ready:
	case <-time.After(o.readyTimeout):
		return nil, fmt.Errorf("audio context initialization timeout after %v: %w", o.readyTimeout, ErrUnavailable)
	}

	shared.ctx = ctx
	shared.format = o.format
	return &otoStream{ctx: ctx, format: o.format}, nil
}

type otoStream struct {
	ctx    *oto.Context
	format Format

	mu     sync.Mutex
	closed bool
}

func (s *otoStream) NewSink(func()) (Sink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrStreamClosed
	}
	return &otoSink{ctx: s.ctx}, nil
}

func (s *otoStream) Decode(r io.ReadSeeker) (Source, error) {
	pcm, err := DecodePCM(r)
	if err != nil {
		return nil, err
	}
	if pcm.Format().SampleRate != s.format.SampleRate {
		return nil, fmt.Errorf("source at %d Hz, stream at %d Hz: %w",
			pcm.Format().SampleRate, s.format.SampleRate, ErrFormatMismatch)
	}
	return pcm.WithChannels(s.format.Channels)
}

// Close detaches the stream. The oto context itself lives until the process
// exits.
func (s *otoStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// otoSink plays sources one after another, each on its own oto player. oto
// has no completion callback, so progress is observed in Empty.
type otoSink struct {
	ctx *oto.Context

	mu      sync.Mutex
	player  *oto.Player
	pending []*PCM
	paused  bool
}

func (s *otoSink) Append(src Source) {
	pcm, ok := src.(*PCM)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, pcm)
	s.advance()
}

// advance starts the next pending source once the current one has drained.
func (s *otoSink) advance() {
	if s.player != nil {
		if s.paused || s.player.IsPlaying() || s.player.BufferedSize() > 0 {
			return
		}
		_ = s.player.Close()
		s.player = nil
	}
	if len(s.pending) == 0 {
		return
	}

	next := s.pending[0]
	s.pending = s.pending[1:]
	s.player = s.ctx.NewPlayer(bytes.NewReader(next.Bytes()))
	if !s.paused {
		s.player.Play()
	}
}

func (s *otoSink) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = true
	if s.player != nil {
		s.player.Pause()
	}
}

func (s *otoSink) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = false
	if s.player != nil {
		s.player.Play()
	} else {
		s.advance()
	}
}

func (s *otoSink) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.player != nil {
		s.player.Pause()
		_ = s.player.Close()
		s.player = nil
	}
	s.pending = nil
}

func (s *otoSink) Empty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.advance()
	return s.player == nil && len(s.pending) == 0
}
