//go:build !nocgo
// +build !nocgo

package audio

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"
)

// resampleQuality is passed to beep.Resample.
const resampleQuality = 4

var speakerState struct {
	mu   sync.Mutex
	init bool
	rate beep.SampleRate
}

// BeepOutput plays through the beep speaker. Sources at any sample rate are
// resampled to the speaker rate, and sinks report completion through their
// onDone callback.
type BeepOutput struct {
	rate   beep.SampleRate
	buffer time.Duration
	logger *log.Logger
}

// NewBeepOutput returns an output whose speaker runs at sampleRate.
func NewBeepOutput(sampleRate int, buffer time.Duration, logger *log.Logger) *BeepOutput {
	if buffer <= 0 {
		buffer = 100 * time.Millisecond
	}
	return &BeepOutput{rate: beep.SampleRate(sampleRate), buffer: buffer, logger: logger}
}

func (o *BeepOutput) OpenStream() (Stream, error) {
	speakerState.mu.Lock()
	defer speakerState.mu.Unlock()

	if !speakerState.init {
		o.logger.Debug("Initializing speaker", "sample_rate", int(o.rate), "buffer_size", o.buffer)
		if err := speaker.Init(o.rate, o.rate.N(o.buffer)); err != nil {
			return nil, fmt.Errorf("failed to initialize speaker: %w", err)
		}
		speakerState.init = true
		speakerState.rate = o.rate
	}
	return &beepStream{rate: speakerState.rate}, nil
}

type beepStream struct {
	rate beep.SampleRate

	mu     sync.Mutex
	closed bool
}

func (s *beepStream) NewSink(onDone func()) (Sink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrStreamClosed
	}

	q := &sinkQueue{}
	sink := &beepSink{
		rate:   s.rate,
		queue:  q,
		ctrl:   &beep.Ctrl{Streamer: q},
		onDone: onDone,
	}
	speaker.Play(sink.ctrl)
	return sink, nil
}

func (s *beepStream) Decode(r io.ReadSeeker) (Source, error) {
	kind, err := Sniff(r)
	if err != nil {
		return nil, err
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch kind {
	case KindWAV:
		streamer, format, err = wav.Decode(r)
	case KindMP3:
		streamer, format, err = mp3.Decode(io.NopCloser(r))
	default:
		return nil, ErrUnsupportedFormat
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode audio: %w", err)
	}
	defer streamer.Close()

	buf := beep.NewBuffer(format)
	buf.Append(streamer)
	if err := streamer.Err(); err != nil {
		return nil, fmt.Errorf("failed to decode audio: %w", err)
	}
	return &beepSource{buf: buf, format: format}, nil
}

// Close drops every sink still attached to the speaker. The speaker stays
// initialized for the lifetime of the process.
func (s *beepStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		speaker.Clear()
	}
	return nil
}

type beepSource struct {
	buf    *beep.Buffer
	format beep.Format
}

func (b *beepSource) Format() Format {
	return Format{SampleRate: int(b.format.SampleRate), Channels: b.format.NumChannels}
}

func (b *beepSource) Duration() time.Duration {
	return b.format.SampleRate.D(b.buf.Len())
}

type beepSink struct {
	rate   beep.SampleRate
	queue  *sinkQueue
	ctrl   *beep.Ctrl
	onDone func()
}

func (s *beepSink) Append(src Source) {
	b, ok := src.(*beepSource)
	if !ok {
		return
	}

	var streamer beep.Streamer = b.buf.Streamer(0, b.buf.Len())
	if b.format.SampleRate != s.rate {
		streamer = beep.Resample(resampleQuality, b.format.SampleRate, s.rate, streamer)
	}
	if s.onDone != nil {
		streamer = beep.Seq(streamer, beep.Callback(s.onDone))
	}

	speaker.Lock()
	s.queue.add(streamer)
	speaker.Unlock()
}

func (s *beepSink) Pause() {
	speaker.Lock()
	s.ctrl.Paused = true
	speaker.Unlock()
}

func (s *beepSink) Resume() {
	speaker.Lock()
	s.ctrl.Paused = false
	speaker.Unlock()
}

// Stop detaches the sink from the speaker mixer.
func (s *beepSink) Stop() {
	speaker.Lock()
	s.queue.clear()
	s.ctrl.Streamer = nil
	speaker.Unlock()
}

func (s *beepSink) Empty() bool {
	speaker.Lock()
	defer speaker.Unlock()
	return s.queue.len() == 0
}

// sinkQueue plays streamers back to back and emits silence while empty, so a
// sink stays attached to the speaker until it is stopped. It is only touched
// under the speaker lock.
type sinkQueue struct {
	streamers []beep.Streamer
}

func (q *sinkQueue) add(s beep.Streamer) {
	q.streamers = append(q.streamers, s)
}

func (q *sinkQueue) clear() {
	q.streamers = nil
}

func (q *sinkQueue) len() int {
	return len(q.streamers)
}

func (q *sinkQueue) Stream(samples [][2]float64) (int, bool) {
	filled := 0
	for filled < len(samples) && len(q.streamers) > 0 {
		n, ok := q.streamers[0].Stream(samples[filled:])
		if !ok {
			q.streamers = q.streamers[1:]
		} else if n == 0 {
			break
		}
		filled += n
	}
	for i := range samples[filled:] {
		samples[filled+i] = [2]float64{}
	}
	return len(samples), true
}

func (q *sinkQueue) Err() error {
	return nil
}
