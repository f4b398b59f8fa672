package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"

	"github.com/dgnsrekt/narrator/internal/config"
)

var configCmd = &cobra.Command{
	Use:     "config",
	Hidden:  false,
	Short:   "Edit the narrator config file",
	Long:    paragraph(fmt.Sprintf("\n%s the narrator config file. We’ll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.", keyword("Edit"))),
	Example: paragraph("narrator config\nnarrator config --config path/to/config.yml"),
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		file := configFile
		if file == "" {
			file = dirs.DefaultFile()
		}
		if err := config.EnsureFile(file); err != nil {
			return err
		}

		c, err := editor.Cmd(config.Name, file)
		if err != nil {
			return fmt.Errorf("unable to set config file: %w", err)
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}

		fmt.Println("Wrote config file to:", file)
		return nil
	},
}
