package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/krisarmstrong/stpsim/pkg/daemon"
	"github.com/krisarmstrong/stpsim/pkg/logging"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run stpsim in daemon mode with HTTP API control",
	Long: `Start stpsim as a daemon process that serves the HTTP API and allows
loading/starting/stopping simulations dynamically without restarting the
daemon.

Example:
  stpsim daemon --listen :8080 --token mysecrettoken`,
	RunE: runDaemon,
}

var daemonOpts struct {
	listen      string
	token       string
	storagePath string
}

func init() {
	rootCmd.AddCommand(daemonCmd)

	daemonCmd.Flags().StringVar(&daemonOpts.listen, "listen", ":8080", "address to listen on for the HTTP API")
	daemonCmd.Flags().StringVar(&daemonOpts.token, "token", "", "bearer token for API authentication (optional)")
	daemonCmd.Flags().StringVar(&daemonOpts.storagePath, "storage", "~/.stpsim/stpsim.db", "path to run-history database (use 'disabled' to disable)")
}

func runDaemon(cmd *cobra.Command, args []string) error {
	logging.InitColors(true)

	logging.Info("Starting stpsim daemon %s", version)
	logging.Info("API will be available at http://localhost%s", daemonOpts.listen)
	if daemonOpts.token != "" {
		logging.Info("API authentication enabled")
	} else {
		logging.Warning("No API token set - consider using --token for security")
	}

	d, err := daemon.NewDaemon(daemon.Config{
		ListenAddr:  daemonOpts.listen,
		Token:       daemonOpts.token,
		StoragePath: daemonOpts.storagePath,
		Version:     version,
	})
	if err != nil {
		return fmt.Errorf("failed to create daemon: %w", err)
	}

	if err := d.Start(); err != nil {
		return fmt.Errorf("failed to start daemon: %w", err)
	}

	logging.Success("Daemon started successfully")
	logging.Info("Press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logging.Info("Shutting down daemon...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := d.Shutdown(ctx); err != nil {
		logging.Error("Error during shutdown: %v", err)
		return err
	}

	logging.Success("Daemon stopped gracefully")
	return nil
}
