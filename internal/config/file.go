package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
)

// Template is written to new config files.
const Template = `# audio output: oto, beep or mock
audio:
  backend: "oto"
  sample_rate: 22050
  # device buffer, 0 picks the platform default
  buffer: "0s"

player:
  # how often playback end and shutdown are checked
  poll_interval: "100ms"

piper:
  binary: "piper"
  model: ""
  timeout: "30s"
  # where synthesized speech is written (default: temp dir)
  # artifact: "/tmp/narrator/speech.wav"

capture:
  # command that makes the focused window copy its selection
  # copy_command: "xdotool key --clearmodifiers ctrl+c"
  copy_delay: "150ms"
  strip_markdown: false
  # 0 means no limit
  max_chars: 0

cache:
  enabled: true
  # dir: "~/.cache/narrator"
  # megabytes
  max_size: 100
  # zstd level 1-4, 0 stores clips uncompressed
  compression: 3

speed:
  # preset walks the table below, step moves by a fixed amount
  strategy: "preset"
  default: "x1"
  step: 10
  min: 33
  max: 200
  # presets:
  #   - { label: "x0.5", scale: 200 }
  #   - { label: "x1", scale: 100 }
  #   - { label: "x2", scale: 50 }

hotkeys:
  enabled: true
  read: "f8"
  pause: "f9"
  faster: "ctrl+up"
  slower: "ctrl+down"
  # minimum spacing between reads, 0 accepts every press
  debounce: "0s"

# concurrent read tasks
workers: 2

logging:
  level: "info"
  # path: "~/.local/state/narrator/narrator.log"
`

// EnsureFile creates file with Template if it does not exist yet.
func EnsureFile(file string) error {
	if ext := path.Ext(file); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("'%s' is not a supported configuration type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}

	if _, err := os.Stat(file); errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(file), 0o700); err != nil {
			return fmt.Errorf("unable create directory: %w", err)
		}

		f, err := os.Create(file)
		if err != nil {
			return fmt.Errorf("unable to create config file: %w", err)
		}
		defer func() { _ = f.Close() }()

		if _, err := f.WriteString(Template); err != nil {
			return fmt.Errorf("unable to write config file: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("unable to stat config file: %w", err)
	}
	return nil
}
