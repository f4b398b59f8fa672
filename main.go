// Package main provides the entry point for the narrator CLI application.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dgnsrekt/narrator/internal/config"
	"github.com/dgnsrekt/narrator/internal/daemon"
	"github.com/dgnsrekt/narrator/internal/logging"
	"github.com/dgnsrekt/narrator/internal/tray"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string
	debug      bool
	backend    string
	initial    string
	noTray     bool

	dirs config.Dirs
	v    *viper.Viper

	rootCmd = &cobra.Command{
		Use:   "narrator",
		Short: "Read the selected text aloud",
		Long: paragraph(
			fmt.Sprintf("\nSelect text anywhere, press %s and narrator %s with a local piper voice.", keyword("F8"), keyword("reads it aloud")),
		),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), daemon.Options{Hotkeys: true}, trayFront)
		},
	}
)

// loadConfig reads the config file and environment into a validated Config.
func loadConfig() (*config.Config, config.DevEnv, error) {
	if err := config.ReadFile(v, configFile); err != nil {
		return nil, config.DevEnv{}, err
	}
	if debug {
		v.Set("logging.level", "debug")
	}
	if backend != "" {
		v.Set("audio.backend", backend)
	}
	if initial != "" {
		v.Set("speed.default", initial)
	}

	dev, err := config.ParseDevEnv()
	if err != nil {
		return nil, dev, err
	}
	cfg, err := config.Decode(v, dirs, dev)
	if err != nil {
		return nil, dev, err
	}
	return cfg, dev, nil
}

// run loads the configuration, sets up logging and runs front until shutdown.
func run(ctx context.Context, opts daemon.Options, front daemon.Front) error {
	cfg, dev, err := loadConfig()
	if err != nil {
		return err
	}

	logger, closer, err := logging.Setup(logging.Options{
		Path:    cfg.Logging.Path,
		Level:   cfg.Logging.Level,
		Console: consoleFor(cfg),
	})
	if err != nil {
		return err
	}
	defer func() { _ = closer() }()

	rt, err := daemon.New(cfg, opts, logger)
	if err != nil {
		return err
	}
	config.Watch(v, dirs, dev, func(c *config.Config) {
		rt.SetLogLevel(c.Logging.Level)
	})
	return rt.Run(ctx, front)
}

// consoleFor mirrors the log to stderr when debugging outside the TUI.
func consoleFor(cfg *config.Config) io.Writer {
	if strings.EqualFold(cfg.Logging.Level, "debug") && !tuiActive {
		return os.Stderr
	}
	return nil
}

func trayFront(ctx context.Context, rt *daemon.Runtime) error {
	if noTray {
		return daemon.Headless(ctx, rt)
	}
	nav := rt.Handle.Speed
	menu := tray.NewMenu(Version, nav.Table(), nav.CurrentIndex())
	tray.New(menu, rt.Handlers, nav, rt.Logger("tray")).Run(ctx)
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func init() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	var err error
	dirs, err = config.UserDirs()
	if err != nil {
		fmt.Println("Could not find the user directories:", err)
		os.Exit(1)
	}
	v = config.NewViper(dirs)

	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", dirs.DefaultFile()))
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "log debug output")
	rootCmd.PersistentFlags().StringVar(&backend, "backend", "", "audio backend (oto, beep or mock)")
	rootCmd.PersistentFlags().StringVar(&initial, "speed", "", "initial speed preset label, for example x1.5")
	rootCmd.Flags().BoolVar(&noTray, "no-tray", false, "run with hotkeys only, without a tray icon")

	rootCmd.AddCommand(configCmd, manCmd, presetsCmd, sayCmd, tuiCmd)
}
