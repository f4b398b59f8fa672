// Package cache stores synthesized speech so repeated reads of the same text
// at the same speed skip the synthesizer.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrItemTooLarge is returned when a clip exceeds the cache capacity.
	ErrItemTooLarge = errors.New("item too large for cache")

	// ErrClosed is returned by operations on a closed cache.
	ErrClosed = errors.New("cache is closed")
)

// Store is a byte cache keyed by Key.
type Store interface {
	Get(key string) ([]byte, bool)
	Put(key string, value []byte) error
	Delete(key string) error
	Clear() error
	Stats() Stats
	Close() error
}

// Stats holds cache counters.
type Stats struct {
	Capacity  int64 // bytes
	Size      int64 // bytes, as stored
	ItemCount int64
	Hits      int64
	Misses    int64
	Evictions int64
	LastEvict time.Time
}

// HitRate returns hits / (hits + misses), or 0 before any lookup.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Key identifies a clip by the synthesizer inputs that produced it.
func Key(text, model string, scale uint32) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%d\x00%s", model, scale, text)
	return hex.EncodeToString(h.Sum(nil))
}
