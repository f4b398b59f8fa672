// Package config loads narrator settings from the YAML config file, the
// environment and command line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"github.com/mitchellh/go-homedir"

	"github.com/dgnsrekt/narrator/internal/audio"
	"github.com/dgnsrekt/narrator/internal/cache"
	"github.com/dgnsrekt/narrator/internal/capture"
	"github.com/dgnsrekt/narrator/internal/hotkey"
	"github.com/dgnsrekt/narrator/internal/player"
	"github.com/dgnsrekt/narrator/internal/producer"
	"github.com/dgnsrekt/narrator/internal/speed"
)

// Name is the application name used for directories and the config file.
const Name = "narrator"

// Config is the full set of settings.
type Config struct {
	Audio   AudioConfig   `mapstructure:"audio"`
	Player  PlayerConfig  `mapstructure:"player"`
	Piper   PiperConfig   `mapstructure:"piper"`
	Capture CaptureConfig `mapstructure:"capture"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Speed   SpeedConfig   `mapstructure:"speed"`
	Hotkeys HotkeyConfig  `mapstructure:"hotkeys"`
	Workers int           `mapstructure:"workers"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type AudioConfig struct {
	Backend    string        `mapstructure:"backend"`
	SampleRate int           `mapstructure:"sample_rate"`
	Buffer     time.Duration `mapstructure:"buffer"`
}

type PlayerConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

type PiperConfig struct {
	Binary   string        `mapstructure:"binary"`
	Model    string        `mapstructure:"model"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Artifact string        `mapstructure:"artifact"`
}

type CaptureConfig struct {
	CopyCommand   string        `mapstructure:"copy_command"`
	CopyDelay     time.Duration `mapstructure:"copy_delay"`
	StripMarkdown bool          `mapstructure:"strip_markdown"`
	MaxChars      int           `mapstructure:"max_chars"`
}

type CacheConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Dir         string `mapstructure:"dir"`
	MaxSize     int64  `mapstructure:"max_size"` // megabytes
	Compression int    `mapstructure:"compression"`
}

type SpeedConfig struct {
	Strategy string         `mapstructure:"strategy"`
	Default  string         `mapstructure:"default"`
	Step     uint32         `mapstructure:"step"`
	Min      uint32         `mapstructure:"min"`
	Max      uint32         `mapstructure:"max"`
	Presets  []speed.Preset `mapstructure:"presets"`
}

type HotkeyConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Read     string        `mapstructure:"read"`
	Pause    string        `mapstructure:"pause"`
	Faster   string        `mapstructure:"faster"`
	Slower   string        `mapstructure:"slower"`
	Debounce time.Duration `mapstructure:"debounce"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
	Path  string `mapstructure:"path"`
}

// Default returns the built-in settings. Paths that depend on the user's
// directories are left empty and filled by Resolve.
func Default() Config {
	bindings := hotkey.DefaultBindings()
	return Config{
		Audio: AudioConfig{
			Backend:    audio.BackendOto,
			SampleRate: audio.DefaultSampleRate,
		},
		Player: PlayerConfig{PollInterval: player.DefaultPollInterval},
		Piper: PiperConfig{
			Binary:  "piper",
			Timeout: 30 * time.Second,
		},
		Capture: CaptureConfig{CopyDelay: capture.DefaultCopyDelay},
		Cache: CacheConfig{
			Enabled:     true,
			MaxSize:     100,
			Compression: 3,
		},
		Speed: SpeedConfig{
			Strategy: speed.StrategyPreset,
			Default:  speed.DefaultPresets[speed.DefaultIndex].Label,
			Step:     10,
			Min:      speed.DefaultPresets[len(speed.DefaultPresets)-1].Scale,
			Max:      speed.DefaultPresets[0].Scale,
		},
		Hotkeys: HotkeyConfig{
			Enabled: true,
			Read:    bindings[hotkey.ActionRead],
			Pause:   bindings[hotkey.ActionPause],
			Faster:  bindings[hotkey.ActionFaster],
			Slower:  bindings[hotkey.ActionSlower],
		},
		Workers: producer.DefaultWorkers,
		Logging: LoggingConfig{Level: "info"},
	}
}

// Resolve fills empty paths from the user's directories and expands "~".
func (c *Config) Resolve(dirs Dirs) error {
	if c.Piper.Artifact == "" {
		c.Piper.Artifact = filepath.Join(dirs.Temp, "speech.wav")
	}
	if c.Cache.Dir == "" {
		c.Cache.Dir = dirs.Cache
	}
	if c.Logging.Path == "" {
		c.Logging.Path = dirs.Log
	}

	for _, p := range []*string{&c.Piper.Binary, &c.Piper.Model, &c.Piper.Artifact, &c.Cache.Dir, &c.Logging.Path} {
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return fmt.Errorf("unable to expand %q: %w", *p, err)
		}
		*p = expanded
	}
	return nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	switch c.Audio.Backend {
	case audio.BackendOto, audio.BackendBeep, audio.BackendMock:
	default:
		errs = append(errs, fmt.Errorf("audio.backend: %w: %q", audio.ErrUnknownBackend, c.Audio.Backend))
	}
	if c.Audio.SampleRate < 8000 || c.Audio.SampleRate > 192000 {
		errs = append(errs, fmt.Errorf("audio.sample_rate must be between 8000 and 192000, got %d", c.Audio.SampleRate))
	}
	if c.Player.PollInterval < 10*time.Millisecond || c.Player.PollInterval > 5*time.Second {
		errs = append(errs, fmt.Errorf("player.poll_interval must be between 10ms and 5s, got %v", c.Player.PollInterval))
	}
	if c.Piper.Binary == "" {
		errs = append(errs, errors.New("piper.binary must not be empty"))
	}
	if c.Piper.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("piper.timeout must be positive, got %v", c.Piper.Timeout))
	}
	if c.Capture.CopyDelay < 0 || c.Capture.MaxChars < 0 {
		errs = append(errs, errors.New("capture.copy_delay and capture.max_chars must not be negative"))
	}
	if c.Cache.Enabled && (c.Cache.MaxSize < 1 || c.Cache.MaxSize > 10000) {
		errs = append(errs, fmt.Errorf("cache.max_size must be between 1 and 10000 MB, got %d", c.Cache.MaxSize))
	}
	if c.Cache.Compression < 0 || c.Cache.Compression > 4 {
		errs = append(errs, fmt.Errorf("cache.compression must be between 0 and 4, got %d", c.Cache.Compression))
	}
	if c.Workers < 1 || c.Workers > 16 {
		errs = append(errs, fmt.Errorf("workers must be between 1 and 16, got %d", c.Workers))
	}
	if c.Hotkeys.Debounce < 0 {
		errs = append(errs, fmt.Errorf("hotkeys.debounce must not be negative, got %v", c.Hotkeys.Debounce))
	}
	if _, err := log.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}

	table, err := c.SpeedTable()
	if err != nil {
		errs = append(errs, fmt.Errorf("speed: %w", err))
	} else if c.Speed.Strategy == speed.StrategyStep {
		if _, err := speed.NewStepNavigator(table, nopCell{}, c.StepOptions(), nil); err != nil {
			errs = append(errs, fmt.Errorf("speed: %w", err))
		}
	} else if c.Speed.Strategy != speed.StrategyPreset && c.Speed.Strategy != "" {
		errs = append(errs, fmt.Errorf("speed.strategy: %w: %q", speed.ErrUnknownStrategy, c.Speed.Strategy))
	}

	if _, err := hotkey.ParseAll(c.Bindings()); err != nil {
		errs = append(errs, fmt.Errorf("hotkeys: %w", err))
	}

	return errors.Join(errs...)
}

type nopCell struct{}

func (nopCell) Speed() uint32   { return 0 }
func (nopCell) SetSpeed(uint32) {}

// SpeedTable builds the preset table. The default entry is looked up by
// label.
func (c *Config) SpeedTable() (*speed.Table, error) {
	presets := c.Speed.Presets
	if len(presets) == 0 {
		presets = speed.DefaultPresets
	}

	def := speed.DefaultIndex
	if def >= len(presets) {
		def = 0
	}
	if c.Speed.Default != "" {
		def = -1
		for i, p := range presets {
			if strings.EqualFold(p.Label, c.Speed.Default) {
				def = i
				break
			}
		}
		if def < 0 {
			return nil, fmt.Errorf("%w: %q", speed.ErrUnknownPreset, c.Speed.Default)
		}
	}
	return speed.NewTable(presets, def)
}

func (c *Config) StepOptions() speed.StepOptions {
	return speed.StepOptions{Step: c.Speed.Step, Min: c.Speed.Min, Max: c.Speed.Max}
}

// Bindings returns the hotkey table by action.
func (c *Config) Bindings() map[hotkey.Action]string {
	return map[hotkey.Action]string{
		hotkey.ActionRead:   c.Hotkeys.Read,
		hotkey.ActionPause:  c.Hotkeys.Pause,
		hotkey.ActionFaster: c.Hotkeys.Faster,
		hotkey.ActionSlower: c.Hotkeys.Slower,
	}
}

func (c *Config) AudioConfig() audio.Config {
	return audio.Config{
		Backend:    c.Audio.Backend,
		SampleRate: c.Audio.SampleRate,
		Channels:   audio.DefaultChannels,
		Buffer:     c.Audio.Buffer,
	}
}

func (c *Config) CacheConfig() cache.Config {
	return cache.Config{
		Dir:              c.Cache.Dir,
		MemoryCapacity:   cache.DefaultMemoryCapacity,
		DiskCapacity:     c.Cache.MaxSize << 20,
		CompressionLevel: c.Cache.Compression,
	}
}

// DevEnv holds knobs read straight from the environment for development.
type DevEnv struct {
	// MockAudio swaps the audio backend for the silent mock.
	MockAudio bool `env:"NARRATOR_MOCK_AUDIO"`
	// Trace turns on debug logging regardless of logging.level.
	Trace bool `env:"NARRATOR_TRACE"`
}

// ParseDevEnv reads DevEnv.
func ParseDevEnv() (DevEnv, error) {
	e, err := env.ParseAs[DevEnv]()
	if err != nil {
		return DevEnv{}, fmt.Errorf("error parsing environment: %w", err)
	}
	return e, nil
}

// Apply overrides c with the development knobs.
func (e DevEnv) Apply(c *Config) {
	if e.MockAudio {
		c.Audio.Backend = audio.BackendMock
	}
	if e.Trace {
		c.Logging.Level = "debug"
	}
}

// fileExists reports whether path names a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
