// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"relcheck/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect harness configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the resolved configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
			return &ExitError{Code: 1, Err: err}
		}

		fmt.Println(TitleStyle.Render("Configuration"))
		fmt.Printf("  probe_runtime:   %s\n", cfg.ProbeRuntime)
		fmt.Printf("  sudo:            %q\n", cfg.Sudo)
		fmt.Printf("  ui.verbose:      %t\n", cfg.UI.Verbose)
		fmt.Printf("  ui.color_scheme: %s\n", cfg.UI.ColorScheme)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show where configuration is loaded from",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.ResolvedPath()
		if err != nil {
			return &ExitError{Code: 1, Err: err}
		}
		if path == "" {
			fmt.Println(SubtitleStyle.Render("(no config file found; built-in defaults in effect)"))
			return nil
		}
		fmt.Println(path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
}
