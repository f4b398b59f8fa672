package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/viper"
)

// Dirs are the per-user locations narrator writes to.
type Dirs struct {
	Config []string
	Cache  string
	Log    string
	Temp   string
}

// UserDirs resolves Dirs for the current user. NARRATOR_CONFIG_HOME and
// XDG_CONFIG_HOME take precedence over the platform config dirs.
func UserDirs() (Dirs, error) {
	scope := gap.NewScope(gap.User, Name)

	configDirs, err := scope.ConfigDirs()
	if err != nil {
		return Dirs{}, fmt.Errorf("could not find configuration directory: %w", err)
	}
	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		configDirs = append([]string{filepath.Join(c, Name)}, configDirs...)
	}
	if c := os.Getenv("NARRATOR_CONFIG_HOME"); c != "" {
		configDirs = append([]string{c}, configDirs...)
	}

	cacheDir, err := scope.CacheDir()
	if err != nil {
		return Dirs{}, fmt.Errorf("could not find cache directory: %w", err)
	}
	logPath, err := scope.LogPath(Name + ".log")
	if err != nil {
		return Dirs{}, fmt.Errorf("could not find log directory: %w", err)
	}

	return Dirs{
		Config: configDirs,
		Cache:  cacheDir,
		Log:    logPath,
		Temp:   filepath.Join(os.TempDir(), Name),
	}, nil
}

// DefaultFile is where a new config file is created.
func (d Dirs) DefaultFile() string {
	if len(d.Config) == 0 {
		return Name + ".yml"
	}
	return filepath.Join(d.Config[0], Name+".yml")
}

// SetDefaults registers every default so environment variables can override
// keys missing from the file.
func SetDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("audio.backend", d.Audio.Backend)
	v.SetDefault("audio.sample_rate", d.Audio.SampleRate)
	v.SetDefault("audio.buffer", d.Audio.Buffer)

	v.SetDefault("player.poll_interval", d.Player.PollInterval)

	v.SetDefault("piper.binary", d.Piper.Binary)
	v.SetDefault("piper.model", d.Piper.Model)
	v.SetDefault("piper.timeout", d.Piper.Timeout)
	v.SetDefault("piper.artifact", d.Piper.Artifact)

	v.SetDefault("capture.copy_command", d.Capture.CopyCommand)
	v.SetDefault("capture.copy_delay", d.Capture.CopyDelay)
	v.SetDefault("capture.strip_markdown", d.Capture.StripMarkdown)
	v.SetDefault("capture.max_chars", d.Capture.MaxChars)

	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.dir", d.Cache.Dir)
	v.SetDefault("cache.max_size", d.Cache.MaxSize)
	v.SetDefault("cache.compression", d.Cache.Compression)

	v.SetDefault("speed.strategy", d.Speed.Strategy)
	v.SetDefault("speed.default", d.Speed.Default)
	v.SetDefault("speed.step", d.Speed.Step)
	v.SetDefault("speed.min", d.Speed.Min)
	v.SetDefault("speed.max", d.Speed.Max)

	v.SetDefault("hotkeys.enabled", d.Hotkeys.Enabled)
	v.SetDefault("hotkeys.read", d.Hotkeys.Read)
	v.SetDefault("hotkeys.pause", d.Hotkeys.Pause)
	v.SetDefault("hotkeys.faster", d.Hotkeys.Faster)
	v.SetDefault("hotkeys.slower", d.Hotkeys.Slower)
	v.SetDefault("hotkeys.debounce", d.Hotkeys.Debounce)

	v.SetDefault("workers", d.Workers)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.path", d.Logging.Path)
}

// NewViper returns a viper instance searching dirs for narrator.yml, with
// NARRATOR_ environment overrides (NARRATOR_AUDIO_BACKEND, ...).
func NewViper(dirs Dirs) *viper.Viper {
	v := viper.New()
	for _, d := range dirs.Config {
		v.AddConfigPath(d)
	}
	v.SetConfigName(Name)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(Name)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// ReadFile reads the explicit file when set, otherwise searches the config
// paths. A missing file is not an error.
func ReadFile(v *viper.Viper, file string) error {
	if file != "" {
		v.SetConfigFile(file)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		if file != "" && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("could not parse configuration file: %w", err)
	}
	log.Debug("Using configuration file", "path", v.ConfigFileUsed())
	return nil
}

// Decode unmarshals v over the defaults, resolves paths and validates.
func Decode(v *viper.Viper, dirs Dirs, dev DevEnv) (*Config, error) {
	cfg := Default()
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode configuration: %w", err)
	}
	dev.Apply(&cfg)
	if err := cfg.Resolve(dirs); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// LoadDotEnv loads .env files into the environment. Missing files are
// skipped and variables already set win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if !fileExists(p) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("unable to load %s: %w", p, err)
		}
		log.Debug("Loaded environment file", "path", p)
	}
	return nil
}

// Watch reloads the file on change and passes every valid result to fn.
// Invalid edits are logged and ignored.
func Watch(v *viper.Viper, dirs Dirs, dev DevEnv, fn func(*Config)) {
	if v.ConfigFileUsed() == "" {
		return
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := Decode(v, dirs, dev)
		if err != nil {
			log.Warn("Ignoring configuration change", "path", e.Name, "error", err)
			return
		}
		log.Info("Configuration reloaded", "path", e.Name)
		fn(cfg)
	})
	v.WatchConfig()
}
