package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
)

// PCM is a decoded clip as interleaved signed 16-bit little-endian samples.
type PCM struct {
	format Format
	data   []byte
}

// NewPCM wraps raw 16-bit little-endian samples.
func NewPCM(format Format, data []byte) *PCM {
	return &PCM{format: format, data: data}
}

// Format returns the clip format.
func (p *PCM) Format() Format {
	return p.format
}

// Bytes returns the raw samples.
func (p *PCM) Bytes() []byte {
	return p.data
}

// Duration returns the playback length of the clip.
func (p *PCM) Duration() time.Duration {
	frame := p.format.Channels * BytesPerSample
	if frame == 0 || p.format.SampleRate == 0 {
		return 0
	}
	frames := len(p.data) / frame
	return time.Duration(frames) * time.Second / time.Duration(p.format.SampleRate)
}

// WithChannels converts the clip to the given channel count. Only mono and
// stereo are supported: mono is duplicated, stereo is averaged.
func (p *PCM) WithChannels(channels int) (*PCM, error) {
	if p.format.Channels == channels {
		return p, nil
	}

	samples := p.samples()
	var out []int16
	switch {
	case p.format.Channels == 1 && channels == 2:
		out = make([]int16, len(samples)*2)
		for i, s := range samples {
			out[2*i] = s
			out[2*i+1] = s
		}
	case p.format.Channels == 2 && channels == 1:
		out = make([]int16, len(samples)/2)
		for i := range out {
			out[i] = int16((int32(samples[2*i]) + int32(samples[2*i+1])) / 2)
		}
	default:
		return nil, fmt.Errorf("%d to %d channels: %w", p.format.Channels, channels, ErrFormatMismatch)
	}

	return &PCM{
		format: Format{SampleRate: p.format.SampleRate, Channels: channels},
		data:   encodeSamples(out),
	}, nil
}

func (p *PCM) samples() []int16 {
	out := make([]int16, len(p.data)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(p.data[2*i:]))
	}
	return out
}

func encodeSamples(samples []int16) []byte {
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[2*i:], uint16(s))
	}
	return buf
}

// Kind identifies a container format by its leading bytes.
type Kind int

const (
	KindUnknown Kind = iota
	KindWAV
	KindMP3
)

// Sniff inspects the first bytes of r and rewinds it.
func Sniff(r io.ReadSeeker) (Kind, error) {
	head := make([]byte, 4)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return KindUnknown, fmt.Errorf("failed to read audio header: %w", err)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return KindUnknown, fmt.Errorf("failed to rewind audio source: %w", err)
	}
	head = head[:n]

	switch {
	case bytes.HasPrefix(head, []byte("RIFF")):
		return KindWAV, nil
	case bytes.HasPrefix(head, []byte("ID3")):
		return KindMP3, nil
	case len(head) >= 2 && head[0] == 0xFF && head[1]&0xE0 == 0xE0:
		return KindMP3, nil
	default:
		return KindUnknown, nil
	}
}

// DecodePCM decodes a complete WAV or MP3 file.
func DecodePCM(r io.ReadSeeker) (*PCM, error) {
	kind, err := Sniff(r)
	if err != nil {
		return nil, err
	}
	switch kind {
	case KindWAV:
		return decodeWAV(r)
	case KindMP3:
		return decodeMP3(r)
	default:
		return nil, ErrUnsupportedFormat
	}
}

func decodeWAV(r io.ReadSeeker) (*PCM, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid wav file: %w", ErrUnsupportedFormat)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind wav source: %w", err)
	}

	dec = wav.NewDecoder(r)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to decode wav: %w", err)
	}
	if buf.Format == nil || buf.Format.NumChannels == 0 {
		return nil, fmt.Errorf("wav has no channels: %w", ErrUnsupportedFormat)
	}

	shift := int(dec.BitDepth) - BitDepth
	samples := make([]int16, len(buf.Data))
	for i, v := range buf.Data {
		switch {
		case dec.BitDepth == 8:
			// 8-bit wav samples are unsigned
			samples[i] = int16((v - 128) << 8)
		case shift > 0:
			samples[i] = int16(v >> shift)
		default:
			samples[i] = int16(v)
		}
	}

	return &PCM{
		format: Format{SampleRate: buf.Format.SampleRate, Channels: buf.Format.NumChannels},
		data:   encodeSamples(samples),
	}, nil
}

func decodeMP3(r io.Reader) (*PCM, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode mp3: %w", err)
	}
	data, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("failed to decode mp3: %w", err)
	}
	// go-mp3 always produces 16-bit stereo
	return &PCM{
		format: Format{SampleRate: dec.SampleRate(), Channels: 2},
		data:   data,
	}, nil
}
