package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/krisarmstrong/stpsim/pkg/config"
	"github.com/krisarmstrong/stpsim/pkg/errors"
	"github.com/krisarmstrong/stpsim/pkg/interactive"
	"github.com/krisarmstrong/stpsim/pkg/logging"
)

var interactiveCmd = &cobra.Command{
	Use:   "interactive <topology-file>",
	Short: "Run stpsim in interactive TUI mode",
	Long: `Run stpsim with an interactive Terminal User Interface (TUI).

The TUI shows bridge/port role and state, running the topology to
convergence after each edit, and supports adding/removing bridges and links at runtime.`,
	Args: cobra.ExactArgs(1),
	RunE: runInteractive,
}

func init() {
	rootCmd.AddCommand(interactiveCmd)
}

func runInteractive(cmd *cobra.Command, args []string) error {
	logging.InitColors(true)

	topCfg, err := config.Load(args[0])
	if err != nil {
		logging.Error("Failed to load topology: %v", err)
		os.Exit(1)
	}

	top, err := topCfg.Build()
	if err != nil {
		logging.Error("Failed to build topology: %v", err)
		os.Exit(1)
	}

	if err := interactive.Run(top, args[0], errors.NewStateManager()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return nil
}
