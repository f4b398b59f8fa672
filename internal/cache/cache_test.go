package cache

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestKey(t *testing.T) {
	base := Key("hello", "voice.onnx", 100)

	tests := []struct {
		name string
		key  string
		same bool
	}{
		{"identical", Key("hello", "voice.onnx", 100), true},
		{"other text", Key("hello!", "voice.onnx", 100), false},
		{"other model", Key("hello", "other.onnx", 100), false},
		{"other scale", Key("hello", "voice.onnx", 50), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key == base; got != tt.same {
				t.Errorf("Key() equal = %v, want %v", got, tt.same)
			}
		})
	}
	if len(base) != 64 {
		t.Errorf("len(Key()) = %d, want 64", len(base))
	}
}

func TestMemoryCache_LRU(t *testing.T) {
	c := NewMemoryCache(10)

	_ = c.Put("a", []byte("aaaa"))
	_ = c.Put("b", []byte("bbbb"))
	c.Get("a") // a becomes most recently used
	_ = c.Put("c", []byte("cccc"))

	if _, ok := c.Get("b"); ok {
		t.Error("Get(b) ok = true, want b evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("Get(a) ok = false, want a kept")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("Get(c) ok = false, want c kept")
	}

	stats := c.Stats()
	if stats.Size != 8 || stats.ItemCount != 2 || stats.Evictions != 1 {
		t.Errorf("Stats() = %+v, want size 8, 2 items, 1 eviction", stats)
	}
}

func TestMemoryCache_TooLarge(t *testing.T) {
	c := NewMemoryCache(4)
	if err := c.Put("big", []byte("too big")); !errors.Is(err, ErrItemTooLarge) {
		t.Errorf("Put() error = %v, want %v", err, ErrItemTooLarge)
	}
}

func TestMemoryCache_Update(t *testing.T) {
	c := NewMemoryCache(100)
	_ = c.Put("k", []byte("one"))
	_ = c.Put("k", []byte("three"))

	got, _ := c.Get("k")
	if string(got) != "three" {
		t.Errorf("Get() = %q, want %q", got, "three")
	}
	if size := c.Stats().Size; size != 5 {
		t.Errorf("Size = %d, want 5", size)
	}

	_ = c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Error("Get() after Delete ok = true")
	}
}

func TestDiskCache_RoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		level int
		value []byte
	}{
		{"small uncompressed", 3, []byte("tiny")},
		{"large compressed", 3, bytes.Repeat([]byte("speech "), 1000)},
		{"compression off", 0, bytes.Repeat([]byte("speech "), 1000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dc, err := NewDiskCache(t.TempDir(), 1<<20, tt.level)
			if err != nil {
				t.Fatalf("NewDiskCache() error = %v", err)
			}
			defer dc.Close()

			if err := dc.Put("k", tt.value); err != nil {
				t.Fatalf("Put() error = %v", err)
			}
			got, ok := dc.Get("k")
			if !ok {
				t.Fatal("Get() ok = false")
			}
			if !bytes.Equal(got, tt.value) {
				t.Errorf("Get() returned %d bytes, want %d", len(got), len(tt.value))
			}
		})
	}
}

func TestDiskCache_CompressesRepetitiveData(t *testing.T) {
	dc, err := NewDiskCache(t.TempDir(), 1<<20, 3)
	if err != nil {
		t.Fatal(err)
	}
	defer dc.Close()

	value := bytes.Repeat([]byte{0, 1, 2, 3}, 4096)
	_ = dc.Put("k", value)

	if size := dc.Stats().Size; size >= int64(len(value)) {
		t.Errorf("stored size = %d, want less than %d", size, len(value))
	}
}

func TestDiskCache_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	dc, err := NewDiskCache(dir, 1<<20, 3)
	if err != nil {
		t.Fatal(err)
	}
	_ = dc.Put("k", []byte("persisted"))
	if err := dc.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := NewDiskCache(dir, 1<<20, 3)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	got, ok := reopened.Get("k")
	if !ok || string(got) != "persisted" {
		t.Errorf("Get() after reopen = %q, %v, want %q, true", got, ok, "persisted")
	}
}

func TestDiskCache_MissingFileIsMiss(t *testing.T) {
	dir := t.TempDir()
	dc, err := NewDiskCache(dir, 1<<20, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer dc.Close()

	_ = dc.Put("k", []byte("gone soon"))
	_ = os.Remove(filepath.Join(dir, "k.raw"))

	if _, ok := dc.Get("k"); ok {
		t.Error("Get() ok = true for a deleted file")
	}
	if n := dc.Stats().ItemCount; n != 0 {
		t.Errorf("ItemCount = %d, want 0", n)
	}
}

func TestDiskCache_Eviction(t *testing.T) {
	dc, err := NewDiskCache(t.TempDir(), 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer dc.Close()

	_ = dc.Put("a", []byte("aaaaa"))
	_ = dc.Put("b", []byte("bbbbb"))
	dc.Get("a")
	_ = dc.Put("c", []byte("ccccc"))

	if _, ok := dc.Get("b"); ok {
		t.Error("Get(b) ok = true, want b evicted")
	}
	if _, ok := dc.Get("a"); !ok {
		t.Error("Get(a) ok = false, want a kept")
	}
	if err := dc.Put("huge", []byte("way past capacity")); !errors.Is(err, ErrItemTooLarge) {
		t.Errorf("Put() error = %v, want %v", err, ErrItemTooLarge)
	}
}

func TestDiskCache_Closed(t *testing.T) {
	dc, err := NewDiskCache(t.TempDir(), 100, 0)
	if err != nil {
		t.Fatal(err)
	}
	_ = dc.Close()

	if err := dc.Put("k", []byte("v")); !errors.Is(err, ErrClosed) {
		t.Errorf("Put() after Close error = %v, want %v", err, ErrClosed)
	}
	if err := dc.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestTiered(t *testing.T) {
	tc, err := NewTiered(Config{Dir: t.TempDir(), MemoryCapacity: 4, DiskCapacity: 1 << 20, CompressionLevel: 3})
	if err != nil {
		t.Fatalf("NewTiered() error = %v", err)
	}
	defer tc.Close()

	// larger than memory, still stored on disk
	if err := tc.Put("k", []byte("larger than l1")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	got, ok := tc.Get("k")
	if !ok || string(got) != "larger than l1" {
		t.Errorf("Get() = %q, %v", got, ok)
	}

	_ = tc.Put("s", []byte("abc"))
	if _, ok := tc.l1.Get("s"); !ok {
		t.Error("small clip was not written to memory")
	}

	if err := tc.Delete("s"); err != nil {
		t.Fatal(err)
	}
	if _, ok := tc.Get("s"); ok {
		t.Error("Get() after Delete ok = true")
	}

	if err := tc.Clear(); err != nil {
		t.Fatal(err)
	}
	if n := tc.Stats().ItemCount; n != 0 {
		t.Errorf("ItemCount after Clear = %d, want 0", n)
	}
}

func TestStatsHitRate(t *testing.T) {
	if got := (Stats{}).HitRate(); got != 0 {
		t.Errorf("HitRate() = %v, want 0", got)
	}
	if got := (Stats{Hits: 3, Misses: 1}).HitRate(); got != 0.75 {
		t.Errorf("HitRate() = %v, want 0.75", got)
	}
}
