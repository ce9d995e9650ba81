package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "v0.1.0"
	commit  = "dev"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "stpsim",
	Short: "IEEE 802.1D spanning-tree protocol simulator",
	Long: `stpsim simulates IEEE 802.1D Spanning Tree Protocol convergence over a
bridge topology described in a plain-text or YAML file.

It elects a root bridge, assigns port roles and states, and reports the
converged topology without any physical network hardware.`,
	Version: version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("stpsim %s (commit: %s, built: %s)\n", version, commit, date))
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
