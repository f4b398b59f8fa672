package hotkey

import (
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/narrator/internal/speed"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Binding
		wantErr error
	}{
		{"f8", Binding{Key: "f8"}, nil},
		{"F12", Binding{Key: "f12"}, nil},
		{"ctrl+up", Binding{Ctrl: true, Key: "up"}, nil},
		{"Shift+Ctrl+F10", Binding{Ctrl: true, Shift: true, Key: "f10"}, nil},
		{"control+a", Binding{Ctrl: true, Key: "a"}, nil},
		{" ctrl + 5 ", Binding{Ctrl: true, Key: "5"}, nil},
		{"space", Binding{Key: "space"}, nil},
		{"", Binding{}, ErrEmptyBinding},
		{"ctrl+", Binding{}, ErrEmptyBinding},
		{"f13", Binding{}, ErrUnknownKey},
		{"f0", Binding{}, ErrUnknownKey},
		{"ctrl+[", Binding{}, ErrUnknownKey},
		{"hyper+f8", Binding{}, ErrUnknownModifier},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Parse() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Parse() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestBindingString(t *testing.T) {
	b, err := Parse("shift+ctrl+x")
	if err != nil {
		t.Fatal(err)
	}
	if got := b.String(); got != "ctrl+shift+x" {
		t.Errorf("String() = %q, want %q", got, "ctrl+shift+x")
	}
}

func TestParseAll(t *testing.T) {
	got, err := ParseAll(DefaultBindings())
	if err != nil {
		t.Fatalf("ParseAll(defaults) error = %v", err)
	}
	if len(got) != 4 || got[ActionRead].Key != "f8" || !got[ActionSlower].Ctrl {
		t.Errorf("ParseAll(defaults) = %+v", got)
	}

	tests := []struct {
		name    string
		raw     map[Action]string
		wantErr error
		wantLen int
	}{
		{"duplicate", map[Action]string{ActionRead: "f8", ActionPause: "F8"}, ErrDuplicateBinding, 0},
		{"unknown action", map[Action]string{"launch": "f1"}, ErrUnknownAction, 0},
		{"bad key", map[Action]string{ActionRead: "f99"}, ErrUnknownKey, 0},
		{"unbound", map[Action]string{ActionRead: "f8", ActionPause: ""}, nil, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAll(tt.raw)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ParseAll() error = %v, want %v", err, tt.wantErr)
			}
			if len(got) != tt.wantLen {
				t.Errorf("len(ParseAll()) = %d, want %d", len(got), tt.wantLen)
			}
		})
	}
}

type recorder struct {
	calls []string
	err   error
}

func (r *recorder) Read() error          { r.calls = append(r.calls, "read"); return r.err }
func (r *recorder) TogglePause()         { r.calls = append(r.calls, "pause") }
func (r *recorder) Faster() speed.Preset { r.calls = append(r.calls, "faster"); return speed.Preset{} }
func (r *recorder) Slower() speed.Preset { r.calls = append(r.calls, "slower"); return speed.Preset{} }

func TestDispatch(t *testing.T) {
	logger := log.New(io.Discard)
	r := &recorder{err: errors.New("busy")}

	for _, a := range []Action{ActionRead, ActionPause, ActionFaster, ActionSlower, "unknown"} {
		Dispatch(r, a, logger)
	}

	want := []string{"read", "pause", "faster", "slower"}
	if len(r.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", r.calls, want)
	}
	for i := range want {
		if r.calls[i] != want[i] {
			t.Errorf("calls[%d] = %v, want %v", i, r.calls[i], want[i])
		}
	}
}
