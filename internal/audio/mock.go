package audio

import (
	"fmt"
	"io"
	"sync"
)

// MockOutput is an in-memory output for tests and headless runs. Failures can
// be scripted per step, and playback only finishes when Drain is called.
type MockOutput struct {
	mu sync.Mutex

	// Scripted failures. A non-nil error is returned by the matching call.
	OpenErr   error
	SinkErr   error
	DecodeErr error

	// AutoDrain finishes every appended source immediately.
	AutoDrain bool

	opens   int
	closes  int
	decodes int
	sinks   []*MockSink
}

// NewMockOutput returns a mock output that succeeds at every step.
func NewMockOutput() *MockOutput {
	return &MockOutput{}
}

func (m *MockOutput) OpenStream() (Stream, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.OpenErr != nil {
		return nil, m.OpenErr
	}
	m.opens++
	return &mockStream{out: m}, nil
}

// SetOpenErr scripts the next OpenStream calls to fail.
func (m *MockOutput) SetOpenErr(err error) {
	m.mu.Lock()
	m.OpenErr = err
	m.mu.Unlock()
}

// SetSinkErr scripts the next NewSink calls to fail.
func (m *MockOutput) SetSinkErr(err error) {
	m.mu.Lock()
	m.SinkErr = err
	m.mu.Unlock()
}

// SetDecodeErr scripts the next Decode calls to fail.
func (m *MockOutput) SetDecodeErr(err error) {
	m.mu.Lock()
	m.DecodeErr = err
	m.mu.Unlock()
}

// Opens returns how many streams were opened.
func (m *MockOutput) Opens() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opens
}

// Closes returns how many streams were closed.
func (m *MockOutput) Closes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closes
}

// Decodes returns how many sources were decoded successfully.
func (m *MockOutput) Decodes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.decodes
}

// Sinks returns every sink created so far, oldest first.
func (m *MockOutput) Sinks() []*MockSink {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*MockSink, len(m.sinks))
	copy(out, m.sinks)
	return out
}

// LastSink returns the most recently created sink, or nil.
func (m *MockOutput) LastSink() *MockSink {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sinks) == 0 {
		return nil
	}
	return m.sinks[len(m.sinks)-1]
}

type mockStream struct {
	out *MockOutput

	mu     sync.Mutex
	closed bool
}

func (s *mockStream) NewSink(onDone func()) (Sink, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil, ErrStreamClosed
	}

	s.out.mu.Lock()
	defer s.out.mu.Unlock()
	if s.out.SinkErr != nil {
		return nil, s.out.SinkErr
	}
	sink := &MockSink{onDone: onDone, autoDrain: s.out.AutoDrain}
	s.out.sinks = append(s.out.sinks, sink)
	return sink, nil
}

// Decode accepts any non-empty input and treats every byte as one frame of
// 16-bit mono audio at the default rate.
func (s *mockStream) Decode(r io.ReadSeeker) (Source, error) {
	s.out.mu.Lock()
	decodeErr := s.out.DecodeErr
	s.out.mu.Unlock()
	if decodeErr != nil {
		return nil, decodeErr
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read source: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty source: %w", ErrUnsupportedFormat)
	}

	s.out.mu.Lock()
	s.out.decodes++
	s.out.mu.Unlock()
	return NewPCM(Format{SampleRate: DefaultSampleRate, Channels: DefaultChannels}, data), nil
}

func (s *mockStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	s.out.mu.Lock()
	s.out.closes++
	s.out.mu.Unlock()
	return nil
}

// MockSink records every call made on it.
type MockSink struct {
	mu        sync.Mutex
	onDone    func()
	autoDrain bool
	queued    int
	appended  int
	paused    bool
	stopped   bool
	pauses    int
	resumes   int
}

func (s *MockSink) Append(Source) {
	s.mu.Lock()
	s.appended++
	if s.stopped {
		s.mu.Unlock()
		return
	}
	if !s.autoDrain {
		s.queued++
		s.mu.Unlock()
		return
	}
	onDone := s.onDone
	s.mu.Unlock()

	if onDone != nil {
		onDone()
	}
}

func (s *MockSink) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = true
	s.pauses++
}

func (s *MockSink) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = false
	s.resumes++
}

func (s *MockSink) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	s.queued = 0
}

func (s *MockSink) Empty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queued == 0
}

// Drain finishes every queued source as if playback reached its end, and
// fires the completion callback.
func (s *MockSink) Drain() {
	s.mu.Lock()
	had := s.queued > 0
	s.queued = 0
	onDone := s.onDone
	s.mu.Unlock()

	if had && onDone != nil {
		onDone()
	}
}

// Stopped reports whether Stop was called.
func (s *MockSink) Stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

// Paused reports whether the sink is currently paused.
func (s *MockSink) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// Appended returns how many sources were appended.
func (s *MockSink) Appended() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appended
}

// Calls returns the number of Pause and Resume calls.
func (s *MockSink) Calls() (pauses, resumes int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pauses, s.resumes
}
