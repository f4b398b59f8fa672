package cache

import "errors"

// Tiered puts a memory cache in front of a disk cache. Disk hits are
// promoted into memory.
type Tiered struct {
	l1 *MemoryCache
	l2 *DiskCache
}

// Config controls NewTiered.
type Config struct {
	Dir              string
	MemoryCapacity   int64
	DiskCapacity     int64
	CompressionLevel int
}

// DefaultMemoryCapacity holds a handful of recent clips.
const DefaultMemoryCapacity = 16 << 20

// NewTiered opens the disk tier and creates the memory tier.
func NewTiered(cfg Config) (*Tiered, error) {
	if cfg.MemoryCapacity <= 0 {
		cfg.MemoryCapacity = DefaultMemoryCapacity
	}
	l2, err := NewDiskCache(cfg.Dir, cfg.DiskCapacity, cfg.CompressionLevel)
	if err != nil {
		return nil, err
	}
	return &Tiered{l1: NewMemoryCache(cfg.MemoryCapacity), l2: l2}, nil
}

func (t *Tiered) Get(key string) ([]byte, bool) {
	if data, ok := t.l1.Get(key); ok {
		return data, true
	}
	data, ok := t.l2.Get(key)
	if ok {
		_ = t.l1.Put(key, data)
	}
	return data, ok
}

// Put writes through both tiers. A clip too large for memory is still stored
// on disk.
func (t *Tiered) Put(key string, value []byte) error {
	if err := t.l1.Put(key, value); err != nil && !errors.Is(err, ErrItemTooLarge) {
		return err
	}
	return t.l2.Put(key, value)
}

func (t *Tiered) Delete(key string) error {
	_ = t.l1.Delete(key)
	return t.l2.Delete(key)
}

func (t *Tiered) Clear() error {
	_ = t.l1.Clear()
	return t.l2.Clear()
}

// Stats returns disk counters, with hits from either tier.
func (t *Tiered) Stats() Stats {
	l1, l2 := t.l1.Stats(), t.l2.Stats()
	stats := l2
	stats.Hits += l1.Hits
	return stats
}

func (t *Tiered) Close() error {
	return t.l2.Close()
}
