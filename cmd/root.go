package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"toolnav/internal/config"
)

// Cfg holds the configuration loaded once before any subcommand runs.
var Cfg *config.Config

// RootCmd is the base command; subcommands attach themselves in their
// package init().
var RootCmd = &cobra.Command{
	Use:   "toolnav",
	Short: "toolnav is a curated link directory service",
	Long: `toolnav serves a curated directory of links organized in ordered
categories, with tags, click tracking, favorites and an admin API.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load configuration: %w", err)
		}
		Cfg = cfg
		return nil
	},
}

// Execute runs the CLI and exits non-zero on error.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
