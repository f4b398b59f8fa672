package state

import (
	"sync"
	"testing"
)

func TestPlaybackState_String(t *testing.T) {
	tests := []struct {
		state  PlaybackState
		want   string
		active bool
	}{
		{Idle, "idle", false},
		{Playing, "playing", true},
		{Paused, "paused", true},
		{PlaybackState(42), "unknown", false},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.state.String(); got != tt.want {
				t.Errorf("String() = %v, want %v", got, tt.want)
			}
			if got := tt.state.IsActive(); got != tt.active {
				t.Errorf("IsActive() = %v, want %v", got, tt.active)
			}
		})
	}
}

func TestNewStore(t *testing.T) {
	s := NewStore(100)

	if got := s.Playback(); got != Idle {
		t.Errorf("Playback() = %v, want %v", got, Idle)
	}
	if got := s.Speed(); got != 100 {
		t.Errorf("Speed() = %v, want 100", got)
	}
	if s.Exiting() {
		t.Error("Exiting() = true, want false")
	}
}

func TestStore_Cells(t *testing.T) {
	s := NewStore(100)

	s.SetPlayback(Paused)
	if got := s.Playback(); got != Paused {
		t.Errorf("Playback() = %v, want %v", got, Paused)
	}

	s.SetSpeed(67)
	if got := s.Speed(); got != 67 {
		t.Errorf("Speed() = %v, want 67", got)
	}

	s.RequestExit()
	s.RequestExit()
	if !s.Exiting() {
		t.Error("Exiting() = false after RequestExit")
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := NewStore(100)
	values := []uint32{200, 133, 100, 80, 67, 50, 33}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				s.SetSpeed(values[(i+j)%len(values)])
				_ = s.Speed()
				_ = s.Playback()
			}
		}(i)
	}
	wg.Wait()

	got := s.Speed()
	found := false
	for _, v := range values {
		if v == got {
			found = true
		}
	}
	if !found {
		t.Errorf("Speed() = %v, want one of the written values", got)
	}
}
