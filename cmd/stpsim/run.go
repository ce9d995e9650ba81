package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/krisarmstrong/stpsim/pkg/config"
	"github.com/krisarmstrong/stpsim/pkg/logging"
)

var runOpts struct {
	maxTicks int
	quiet    bool
}

var runCmd = &cobra.Command{
	Use:   "run <topology-file>",
	Short: "Load a topology and run it to convergence",
	Long: `Load a topology from a plain-text link file or a YAML file, run the
simulation tick by tick until every bridge converges (or the tick budget
is exhausted), and print the resulting bridge/port states.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().IntVar(&runOpts.maxTicks, "max-ticks", 0, "maximum ticks to run before giving up (0 = default bound of 10000 ticks)")
	runCmd.Flags().BoolVarP(&runOpts.quiet, "quiet", "q", false, "suppress progress logging, print only the final report")
}

func runRun(cmd *cobra.Command, args []string) error {
	logging.InitColors(true)

	topCfg, err := config.Load(args[0])
	if err != nil {
		return fmt.Errorf("load topology: %w", err)
	}

	top, err := topCfg.Build()
	if err != nil {
		return fmt.Errorf("build topology: %w", err)
	}

	if runOpts.maxTicks > 0 {
		top.SetMaxTicks(runOpts.maxTicks)
	}

	if !runOpts.quiet {
		logging.Info("Loaded %d bridges from %s", len(top.Bridges()), args[0])
	}

	ticks := top.Run()

	if !runOpts.quiet {
		if top.AllConverged() {
			logging.Success("Converged after %d ticks", ticks)
		} else {
			logging.Warning("Did not converge within %d ticks", ticks)
		}
	}

	for _, snap := range top.Snapshot() {
		fmt.Fprintln(os.Stdout, snap.String())
	}

	return nil
}
