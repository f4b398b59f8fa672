package tray

import (
	"bytes"
	"encoding/binary"
	"image/png"
	"testing"

	"github.com/dgnsrekt/narrator/internal/speed"
)

func TestNewMenu(t *testing.T) {
	m := NewMenu("v1.2.0", speed.DefaultTable(), speed.DefaultIndex)

	if got := m.VersionLine(); got != "narrator v1.2.0" {
		t.Errorf("VersionLine() = %q, want %q", got, "narrator v1.2.0")
	}
	if got := len(m.Labels()); got != 7 {
		t.Errorf("len(Labels()) = %d, want 7", got)
	}
	if got := m.Checked(); got != 2 {
		t.Errorf("Checked() = %d, want 2", got)
	}
	if got := m.SpeedTitle(); got != "Speed: x1" {
		t.Errorf("SpeedTitle() = %q, want %q", got, "Speed: x1")
	}
	if got := NewMenu("", speed.DefaultTable(), 0).VersionLine(); got != "narrator" {
		t.Errorf("VersionLine() = %q, want %q", got, "narrator")
	}
}

func TestMenuSync(t *testing.T) {
	m := NewMenu("", speed.DefaultTable(), 2)

	tests := []struct {
		index       int
		wantPrev    int
		wantChanged bool
		wantChecked int
	}{
		{2, 2, false, 2},
		{3, 2, true, 3},
		{6, 3, true, 6},
		{9, 6, true, -1},
		{-1, -1, false, -1},
		{0, -1, true, 0},
	}

	for _, tt := range tests {
		prev, changed := m.Sync(tt.index)
		if prev != tt.wantPrev || changed != tt.wantChanged {
			t.Errorf("Sync(%d) = %d, %v, want %d, %v", tt.index, prev, changed, tt.wantPrev, tt.wantChanged)
		}
		if got := m.Checked(); got != tt.wantChecked {
			t.Errorf("Checked() after Sync(%d) = %d, want %d", tt.index, got, tt.wantChecked)
		}
	}
	if got := NewMenu("", speed.DefaultTable(), -1).SpeedTitle(); got != "Speed" {
		t.Errorf("SpeedTitle() = %q, want %q", got, "Speed")
	}
}

func TestLabelsAreCopied(t *testing.T) {
	m := NewMenu("", speed.DefaultTable(), 2)
	labels := m.Labels()
	labels[0] = "changed"
	if got := m.Labels()[0]; got != "x0.5" {
		t.Errorf("Labels()[0] = %q, want %q", got, "x0.5")
	}
}

func TestIconPNG(t *testing.T) {
	data, err := IconPNG()
	if err != nil {
		t.Fatalf("IconPNG() error = %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	if b := img.Bounds(); b.Dx() != iconSize || b.Dy() != iconSize {
		t.Errorf("icon bounds = %v, want %dx%d", b, iconSize, iconSize)
	}
	if _, _, _, a := img.At(0, 0).RGBA(); a != 0 {
		t.Errorf("corner alpha = %d, want transparent", a)
	}
}

func TestWrapICO(t *testing.T) {
	payload := []byte("png bytes")
	ico := wrapICO(payload, 32)

	if len(ico) != 22+len(payload) {
		t.Fatalf("len(ico) = %d, want %d", len(ico), 22+len(payload))
	}
	if got := binary.LittleEndian.Uint16(ico[2:4]); got != 1 {
		t.Errorf("icon type = %d, want 1", got)
	}
	if got := binary.LittleEndian.Uint32(ico[14:18]); got != uint32(len(payload)) {
		t.Errorf("image size = %d, want %d", got, len(payload))
	}
	if got := binary.LittleEndian.Uint32(ico[18:22]); got != 22 {
		t.Errorf("image offset = %d, want 22", got)
	}
	if !bytes.Equal(ico[22:], payload) {
		t.Error("payload not copied after the header")
	}
}
