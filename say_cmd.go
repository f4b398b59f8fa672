package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dgnsrekt/narrator/internal/capture"
	"github.com/dgnsrekt/narrator/internal/daemon"
)

var sayCmd = &cobra.Command{
	Use:   "say [TEXT]",
	Short: "Read text aloud once and exit",
	Long: paragraph(fmt.Sprintf("\n%s the given text, or standard input when it is a pipe, through the same pipeline the hotkey uses.",
		keyword("Speak"))),
	Example: paragraph("narrator say \"hello there\"\necho hello | narrator say\nnarrator say --speed x1.5 < notes.txt"),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := sayText(args)
		if err != nil {
			return err
		}
		return run(cmd.Context(), daemon.Options{
			Clipboard: capture.StaticText(text),
			NoCopy:    true,
		}, daemon.Say)
	},
}

func sayText(args []string) (string, error) {
	if len(args) > 0 && args[0] != "-" {
		return strings.Join(args, " "), nil
	}
	pipe, err := stdinIsPipe()
	if err != nil {
		return "", err
	}
	if !pipe {
		return "", errors.New("nothing to say: pass text or pipe it on stdin")
	}
	b, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("unable to read stdin: %w", err)
	}
	return string(b), nil
}

func stdinIsPipe() (bool, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false, fmt.Errorf("unable to open file: %w", err)
	}
	if stat.Mode()&os.ModeCharDevice == 0 || stat.Size() > 0 {
		return true, nil
	}
	return false, nil
}
