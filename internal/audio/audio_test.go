package audio

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// writeWAV encodes samples as a 16-bit PCM wav file and returns its path.
func writeWAV(t *testing.T, rate, channels int, samples []int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "clip.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create wav: %v", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, rate, 16, channels, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: rate},
		Data:           samples,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("failed to write wav: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("failed to close wav encoder: %v", err)
	}
	return path
}

func TestSniff(t *testing.T) {
	tests := []struct {
		name string
		head []byte
		want Kind
	}{
		{"wav", []byte("RIFF\x00\x00\x00\x00WAVE"), KindWAV},
		{"mp3 id3", []byte("ID3\x04\x00"), KindMP3},
		{"mp3 frame sync", []byte{0xFF, 0xFB, 0x90, 0x00}, KindMP3},
		{"text", []byte("hello world"), KindUnknown},
		{"short", []byte("R"), KindUnknown},
		{"empty", nil, KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := bytes.NewReader(tt.head)
			got, err := Sniff(r)
			if err != nil {
				t.Fatalf("Sniff() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Sniff() = %v, want %v", got, tt.want)
			}
			if r.Len() != len(tt.head) {
				t.Errorf("Sniff() left %d unread bytes, want the reader rewound to %d", r.Len(), len(tt.head))
			}
		})
	}
}

func TestDecodePCM_WAV(t *testing.T) {
	samples := []int{0, 1000, -1000, 32767, -32768, 42}
	path := writeWAV(t, 22050, 1, samples)

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	pcm, err := DecodePCM(f)
	if err != nil {
		t.Fatalf("DecodePCM() error = %v", err)
	}

	if got := pcm.Format(); got != (Format{SampleRate: 22050, Channels: 1}) {
		t.Errorf("Format() = %+v, want 22050 Hz mono", got)
	}
	got := pcm.samples()
	if len(got) != len(samples) {
		t.Fatalf("decoded %d samples, want %d", len(got), len(samples))
	}
	for i := range samples {
		if int(got[i]) != samples[i] {
			t.Errorf("sample %d = %v, want %v", i, got[i], samples[i])
		}
	}
}

func TestDecodePCM_Unsupported(t *testing.T) {
	_, err := DecodePCM(bytes.NewReader([]byte("definitely not audio")))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("DecodePCM() error = %v, want %v", err, ErrUnsupportedFormat)
	}
}

func TestPCMDuration(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		bytes  int
		want   time.Duration
	}{
		{"one second mono", Format{SampleRate: 22050, Channels: 1}, 22050 * 2, time.Second},
		{"half second stereo", Format{SampleRate: 44100, Channels: 2}, 44100 * 2, 500 * time.Millisecond},
		{"empty", Format{SampleRate: 22050, Channels: 1}, 0, 0},
		{"no format", Format{}, 100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPCM(tt.format, make([]byte, tt.bytes))
			if got := p.Duration(); got != tt.want {
				t.Errorf("Duration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPCMWithChannels(t *testing.T) {
	mono := NewPCM(Format{SampleRate: 22050, Channels: 1}, encodeSamples([]int16{100, -200}))

	stereo, err := mono.WithChannels(2)
	if err != nil {
		t.Fatalf("WithChannels(2) error = %v", err)
	}
	want := []int16{100, 100, -200, -200}
	got := stereo.samples()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("stereo sample %d = %v, want %v", i, got[i], want[i])
		}
	}

	back, err := stereo.WithChannels(1)
	if err != nil {
		t.Fatalf("WithChannels(1) error = %v", err)
	}
	if !bytes.Equal(back.Bytes(), mono.Bytes()) {
		t.Errorf("round trip to mono = %v, want %v", back.samples(), mono.samples())
	}

	if same, _ := mono.WithChannels(1); same != mono {
		t.Error("WithChannels() with the current count should return the receiver")
	}
	if _, err := mono.WithChannels(6); !errors.Is(err, ErrFormatMismatch) {
		t.Errorf("WithChannels(6) error = %v, want %v", err, ErrFormatMismatch)
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		backend string
		wantErr bool
	}{
		{BackendMock, false},
		{BackendOto, false},
		{BackendBeep, false},
		{"", false},
		{"pulse", true},
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Backend = tt.backend
			out, err := New(cfg, nil)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrUnknownBackend) {
				t.Errorf("New() error = %v, want %v", err, ErrUnknownBackend)
			}
			if !tt.wantErr && out == nil {
				t.Error("New() returned nil output")
			}
		})
	}
}
