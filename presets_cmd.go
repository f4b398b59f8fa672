package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/dgnsrekt/narrator/internal/speed"
)

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the speed presets",
	Long:  paragraph(fmt.Sprintf("\nList the speed presets from slowest to fastest. The %s preset is marked.", keyword("default"))),
	Args:  cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		table, err := cfg.SpeedTable()
		if err != nil {
			return err
		}
		printPresets(os.Stdout, table)
		return nil
	},
}

func printPresets(w io.Writer, table *speed.Table) {
	width := 0
	for _, p := range table.Presets() {
		width = max(width, runewidth.StringWidth(p.Label))
	}
	for i, p := range table.Presets() {
		line := fmt.Sprintf("  %s  length scale %.2f", runewidth.FillRight(p.Label, width), p.LengthScale())
		if i == table.DefaultIndex() {
			_, _ = fmt.Fprintln(w, keyword("*"+line[1:]))
			continue
		}
		_, _ = fmt.Fprintln(w, line)
	}
	_, _ = fmt.Fprintln(w, subtle(fmt.Sprintf("\n  %d presets, faster moves down the list", table.Len())))
}
