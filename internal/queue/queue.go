package queue

import (
	"errors"
	"sync"
	"time"
)

var (
	// ErrClosed is returned once the consumer end of the queue is gone.
	ErrClosed = errors.New("queue is closed")

	// ErrTimedOut is returned by Receive when no command arrived in time.
	// It is a poll tick, not a failure.
	ErrTimedOut = errors.New("receive timed out")
)

// Command is a playback request. Commands carry no payload.
type Command int

const (
	// Play replaces any active resource with the freshly synthesized audio.
	Play Command = iota
	// Stop discards the active resource.
	Stop
	// TogglePause suspends or resumes the active resource.
	TogglePause
)

// String returns the string representation of the command.
func (c Command) String() string {
	switch c {
	case Play:
		return "play"
	case Stop:
		return "stop"
	case TogglePause:
		return "toggle-pause"
	default:
		return "unknown"
	}
}

// Stats tracks queue counters.
type Stats struct {
	TotalEnqueued int64
	TotalDequeued int64
	TotalDropped  int64 // sends rejected after Close
	CurrentSize   int
	PeakSize      int
	LastEnqueue   time.Time
	LastDequeue   time.Time
}

// Queue is an unbounded FIFO of commands with many producers and exactly one
// consumer. Producers never block and need no coordination among themselves.
type Queue struct {
	mu     sync.Mutex
	items  []Command
	closed bool
	stats  Stats

	// notify holds at most one pending wake-up for the consumer
	notify chan struct{}
}

// New creates an empty queue.
func New() *Queue {
	return &Queue{
		items:  make([]Command, 0, 8),
		notify: make(chan struct{}, 1),
	}
}

// Send appends a command. It fails only with ErrClosed, which callers may
// ignore: it means nothing is listening.
func (q *Queue) Send(cmd Command) error {
	q.mu.Lock()
	if q.closed {
		q.stats.TotalDropped++
		q.mu.Unlock()
		return ErrClosed
	}

	q.items = append(q.items, cmd)
	q.stats.TotalEnqueued++
	q.stats.LastEnqueue = time.Now()
	if len(q.items) > q.stats.PeakSize {
		q.stats.PeakSize = len(q.items)
	}
	q.mu.Unlock()

	q.signal()
	return nil
}

// Receive returns the oldest command, waiting up to timeout for one. It
// returns ErrTimedOut when the wait elapsed or Wake was called, and ErrClosed
// after Close. A non-positive timeout polls without waiting.
func (q *Queue) Receive(timeout time.Duration) (Command, error) {
	if cmd, ok, err := q.pop(); ok {
		return cmd, err
	}
	if timeout <= 0 {
		return 0, ErrTimedOut
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-q.notify:
		if cmd, ok, err := q.pop(); ok {
			return cmd, err
		}
		return 0, ErrTimedOut
	case <-timer.C:
		return 0, ErrTimedOut
	}
}

// pop removes the head of the queue. ok is false when the queue is open and
// empty.
func (q *Queue) pop() (Command, bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) > 0 {
		cmd := q.items[0]
		q.items = q.items[1:]
		q.stats.TotalDequeued++
		q.stats.LastDequeue = time.Now()
		if len(q.items) == 0 {
			q.drainNotify()
		}
		return cmd, true, nil
	}
	if q.closed {
		return 0, true, ErrClosed
	}
	return 0, false, nil
}

// Wake makes a blocked Receive return ErrTimedOut without delivering a
// command. Audio backends with completion callbacks use it to cut the
// end-of-stream detection latency.
func (q *Queue) Wake() {
	q.signal()
}

// drainNotify drops a wake-up left by a send whose command was already
// popped, so the next Receive waits instead of returning at once.
func (q *Queue) drainNotify() {
	select {
	case <-q.notify:
	default:
	}
}

func (q *Queue) signal() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Close shuts down the consumer end. Pending commands are discarded and
// further sends fail with ErrClosed.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.stats.TotalDropped += int64(len(q.items))
	q.items = nil
	q.mu.Unlock()

	q.signal()
}

// Len returns the number of pending commands.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Stats returns a snapshot of the queue counters.
func (q *Queue) Stats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()

	stats := q.stats
	stats.CurrentSize = len(q.items)
	return stats
}
