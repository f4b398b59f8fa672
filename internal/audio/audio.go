// Package audio defines the output device seen by the playback controller and
// provides the oto, beep and mock backends behind it.
//
// Every call is synchronous. Opening a stream, creating a sink and decoding
// can fail; sink operations after that cannot.
package audio

import (
	"errors"
	"io"
	"time"
)

// Backend names.
const (
	BackendOto  = "oto"
	BackendBeep = "beep"
	BackendMock = "mock"
)

// Audio format constants for synthesized speech. Piper voices emit 16-bit
// mono at 22050 Hz.
const (
	DefaultSampleRate = 22050
	DefaultChannels   = 1
	BitDepth          = 16
	BytesPerSample    = BitDepth / 8
)

var (
	// ErrUnavailable is returned when no audio device can be opened.
	ErrUnavailable = errors.New("audio output unavailable")

	// ErrUnsupportedFormat is returned for sources that are neither WAV nor MP3.
	ErrUnsupportedFormat = errors.New("unsupported audio format")

	// ErrFormatMismatch is returned when a source cannot be played on an
	// already opened device.
	ErrFormatMismatch = errors.New("audio format does not match output stream")

	// ErrStreamClosed is returned by operations on a closed stream.
	ErrStreamClosed = errors.New("audio stream is closed")

	// ErrUnknownBackend is returned by New for an unrecognized backend name.
	ErrUnknownBackend = errors.New("unknown audio backend")
)

// Format describes interleaved PCM audio.
type Format struct {
	SampleRate int
	Channels   int
}

// Output acquires the device stream.
type Output interface {
	OpenStream() (Stream, error)
}

// Stream is an opened output device.
type Stream interface {
	// NewSink creates an independent playback sink. Backends that can detect
	// completion call onDone when the sink drains; onDone may be nil.
	NewSink(onDone func()) (Sink, error)
	// Decode reads a complete audio file into a source playable on this stream.
	Decode(r io.ReadSeeker) (Source, error)
	// Close releases the device. Sinks created from it must not be used after.
	Close() error
}

// Sink plays appended sources in order.
type Sink interface {
	Append(src Source)
	Pause()
	Resume()
	// Stop discards every queued source. A stopped sink is empty.
	Stop()
	// Empty reports whether nothing is left to play. A paused sink with
	// remaining audio is not empty.
	Empty() bool
}

// Source is a decoded audio clip.
type Source interface {
	Format() Format
	Duration() time.Duration
}
