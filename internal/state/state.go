// Package state holds the cells shared between the playback controller and
// the event producers.
package state

import "sync/atomic"

// PlaybackState represents the current state of audio playback.
type PlaybackState int32

const (
	// Idle indicates no audio resource is active.
	Idle PlaybackState = iota
	// Playing indicates the resource is emitting audio.
	Playing
	// Paused indicates the resource is suspended with its position retained.
	Paused
)

// String returns the string representation of the state.
func (s PlaybackState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return "unknown"
	}
}

// IsActive returns true if a resource is held, playing or paused.
func (s PlaybackState) IsActive() bool {
	return s == Playing || s == Paused
}

// Store bundles the shared atomic cells. Every access is a single atomic
// load or store; Go atomics are sequentially consistent.
//
// Writers are restricted by role: the playback state is written by the
// controller only, the speed value by event producers only, and the exit flag
// is written once.
type Store struct {
	playback atomic.Int32
	speed    atomic.Uint32
	exit     atomic.Bool
}

// NewStore creates a store in the Idle state with the given initial speed
// value (length scale multiplied by 100).
func NewStore(initialSpeed uint32) *Store {
	s := &Store{}
	s.speed.Store(initialSpeed)
	return s
}

// Playback returns the current playback state.
func (s *Store) Playback() PlaybackState {
	return PlaybackState(s.playback.Load())
}

// SetPlayback records a new playback state. Only the controller calls this.
func (s *Store) SetPlayback(p PlaybackState) {
	s.playback.Store(int32(p))
}

// Speed returns the current speed value.
func (s *Store) Speed() uint32 {
	return s.speed.Load()
}

// SetSpeed records a new speed value. Only event producers call this.
func (s *Store) SetSpeed(v uint32) {
	s.speed.Store(v)
}

// Exiting reports whether shutdown was requested.
func (s *Store) Exiting() bool {
	return s.exit.Load()
}

// RequestExit sets the exit flag. The flag is never reset.
func (s *Store) RequestExit() {
	s.exit.Store(true)
}
