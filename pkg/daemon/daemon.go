// Package daemon provides a long-running service that can load and drive
// spanning-tree topologies dynamically over the API.
package daemon

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/krisarmstrong/stpsim/internal/stpcore"
	"github.com/krisarmstrong/stpsim/pkg/api"
	"github.com/krisarmstrong/stpsim/pkg/config"
	"github.com/krisarmstrong/stpsim/pkg/errors"
	"github.com/krisarmstrong/stpsim/pkg/logging"
	"github.com/krisarmstrong/stpsim/pkg/stats"
	"github.com/krisarmstrong/stpsim/pkg/storage"
)

// TickInterval is how often a running simulation advances automatically.
const TickInterval = 200 * time.Millisecond

// Config holds daemon configuration.
type Config struct {
	ListenAddr  string
	Token       string
	StoragePath string
	Version     string
}

// Daemon manages the spanning-tree simulation lifecycle.
type Daemon struct {
	cfg       Config
	apiServer *api.Server
	storage   *storage.Storage
	faults    *errors.StateManager

	mu         sync.RWMutex
	simulation *Simulation
}

// Simulation represents a running, auto-ticking topology.
type Simulation struct {
	ConfigPath string
	ConfigName string
	StartedAt  time.Time

	topology *stpcore.Topology
	stats    *stats.Statistics
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewDaemon creates a new daemon instance.
func NewDaemon(cfg Config) (*Daemon, error) {
	daemon := &Daemon{
		cfg:    cfg,
		faults: errors.NewStateManager(),
	}

	if cfg.StoragePath != "" && cfg.StoragePath != "disabled" {
		storagePath := expandPath(cfg.StoragePath)
		var err error
		daemon.storage, err = storage.Open(storagePath)
		if err != nil {
			return nil, fmt.Errorf("open storage: %w", err)
		}
	}

	return daemon, nil
}

// Start starts the daemon's API server.
func (d *Daemon) Start() error {
	serverCfg := api.ServerConfig{
		Addr:    d.cfg.ListenAddr,
		Token:   d.cfg.Token,
		Version: d.cfg.Version,
		Storage: d.storage,
		Faults:  d.faults,
	}

	d.apiServer = api.NewServer(serverCfg)
	d.apiServer.SetDaemonController(d)

	if err := d.apiServer.Start(); err != nil {
		if d.storage != nil {
			if closeErr := d.storage.Close(); closeErr != nil {
				logging.Error("Error closing storage during cleanup: %v", closeErr)
			}
		}
		return fmt.Errorf("start API server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the daemon.
func (d *Daemon) Shutdown(ctx context.Context) error {
	if err := d.StopSimulation(); err != nil {
		logging.Error("Error stopping simulation: %v", err)
	}

	if d.apiServer != nil {
		if err := d.apiServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown API server: %w", err)
		}
	}

	if d.storage != nil {
		if err := d.storage.Close(); err != nil {
			logging.Error("Error closing storage: %v", err)
		}
	}

	return nil
}

// StartSimulation loads a topology and begins ticking it on a background
// goroutine until StopSimulation is called.
func (d *Daemon) StartSimulation(req api.SimulationRequest) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.simulation != nil {
		if err := d.stopSimulationLocked(); err != nil {
			return fmt.Errorf("stop existing simulation: %w", err)
		}
	}

	var topCfg *config.Topology
	var configPath string
	var err error

	switch {
	case req.ConfigData != "":
		topCfg, err = config.LoadYAMLBytes([]byte(req.ConfigData))
		configPath = "<inline>"
	case req.ConfigPath != "":
		topCfg, err = config.Load(req.ConfigPath)
		configPath = req.ConfigPath
	default:
		return fmt.Errorf("either config_path or config_data must be provided")
	}
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	top, err := topCfg.Build()
	if err != nil {
		return fmt.Errorf("build topology: %w", err)
	}

	statistics := stats.NewStatistics(configPath, d.cfg.Version)
	statistics.SetBridgeCount(len(top.Bridges()))
	statistics.SetLinkCount(len(top.Edges()))

	ctx, cancel := context.WithCancel(context.Background())
	sim := &Simulation{
		ConfigPath: configPath,
		ConfigName: filepath.Base(configPath),
		StartedAt:  time.Now(),
		topology:   top,
		stats:      statistics,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
	d.simulation = sim

	d.apiServer.SetTopology(top, configPath)

	go d.runTicker(ctx, sim)

	logging.Success("Simulation started from %s with %d bridges", configPath, len(top.Bridges()))
	return nil
}

func (d *Daemon) runTicker(ctx context.Context, sim *Simulation) {
	defer close(sim.done)

	ticker := time.NewTicker(TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if sim.topology.AllConverged() {
				continue
			}
			sim.topology.Tick()
			sim.stats.SetTickCount(sim.stats.TickCount + 1)
			converged := sim.topology.AllConverged()
			sim.stats.SetConverged(converged, rootMAC(sim.topology))
		}
	}
}

// StopSimulation stops the current simulation, if any.
func (d *Daemon) StopSimulation() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stopSimulationLocked()
}

func (d *Daemon) stopSimulationLocked() error {
	if d.simulation == nil {
		return fmt.Errorf("no simulation running")
	}

	sim := d.simulation
	if sim.cancel != nil {
		sim.cancel()
	}
	<-sim.done

	if d.storage != nil {
		record := storage.RunRecord{
			StartedAt:       sim.StartedAt,
			Duration:        time.Since(sim.StartedAt),
			ConfigName:      sim.ConfigName,
			BridgeCount:     len(sim.topology.Bridges()),
			LinkCount:       len(sim.topology.Edges()),
			RootID:          rootMAC(sim.topology),
			TicksToConverge: int(sim.stats.TickCount),
			Converged:       sim.topology.AllConverged(),
		}
		_ = d.storage.AddRun(record)
	}

	d.simulation = nil
	d.apiServer.ClearTopology()
	d.faults.ClearAll()

	logging.Info("Simulation stopped")
	return nil
}

// GetStatus returns the current simulation status.
func (d *Daemon) GetStatus() api.SimulationStatus {
	d.mu.RLock()
	defer d.mu.RUnlock()

	status := api.SimulationStatus{Running: d.simulation != nil}
	if d.simulation != nil {
		sim := d.simulation
		status.ConfigPath = sim.ConfigPath
		status.ConfigName = sim.ConfigName
		status.StartedAt = sim.StartedAt
		status.UptimeSeconds = time.Since(sim.StartedAt).Seconds()
		status.BridgeCount = len(sim.topology.Bridges())
		status.LinkCount = len(sim.topology.Edges())
		status.TickCount = int(sim.stats.TickCount)
		status.Converged = sim.topology.AllConverged()
		status.RootID = rootMAC(sim.topology)
	}

	return status
}

func rootMAC(top *stpcore.Topology) string {
	for _, b := range top.Bridges() {
		if b.IsRoot() {
			return b.MAC
		}
	}
	return ""
}

func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[1:])
		}
	}
	return filepath.Clean(path)
}
