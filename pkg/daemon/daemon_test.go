package daemon

import (
	"testing"
	"time"

	"github.com/krisarmstrong/stpsim/pkg/api"
)

const testTopologyYAML = `
links:
  - bridge_a: "0001.0001.0001"
    port_a: 0
    bridge_b: "0002.0002.0002"
    port_b: 0
`

func newTestDaemon(t *testing.T) *Daemon {
	t.Helper()
	d, err := NewDaemon(Config{StoragePath: "disabled", Version: "test"})
	if err != nil {
		t.Fatalf("NewDaemon: %v", err)
	}
	d.apiServer = api.NewServer(api.ServerConfig{Version: "test"})
	d.apiServer.SetDaemonController(d)
	return d
}

func TestStartSimulation_MissingConfig(t *testing.T) {
	d := newTestDaemon(t)
	if err := d.StartSimulation(api.SimulationRequest{}); err == nil {
		t.Error("expected error when neither config_path nor config_data is set")
	}
}

func TestStartSimulation_InlineConfig(t *testing.T) {
	d := newTestDaemon(t)
	if err := d.StartSimulation(api.SimulationRequest{ConfigData: testTopologyYAML}); err != nil {
		t.Fatalf("StartSimulation: %v", err)
	}
	defer d.StopSimulation()

	status := d.GetStatus()
	if !status.Running {
		t.Fatal("expected simulation to be running")
	}
	if status.BridgeCount != 2 {
		t.Errorf("expected 2 bridges, got %d", status.BridgeCount)
	}
}

func TestStartSimulation_ReplacesExisting(t *testing.T) {
	d := newTestDaemon(t)
	if err := d.StartSimulation(api.SimulationRequest{ConfigData: testTopologyYAML}); err != nil {
		t.Fatalf("first start: %v", err)
	}
	if err := d.StartSimulation(api.SimulationRequest{ConfigData: testTopologyYAML}); err != nil {
		t.Fatalf("second start: %v", err)
	}
	defer d.StopSimulation()

	if !d.GetStatus().Running {
		t.Error("expected simulation to still be running after restart")
	}
}

func TestStopSimulation_NoneRunning(t *testing.T) {
	d := newTestDaemon(t)
	if err := d.StopSimulation(); err == nil {
		t.Error("expected error stopping a simulation that was never started")
	}
}

func TestSimulationConverges(t *testing.T) {
	d := newTestDaemon(t)
	if err := d.StartSimulation(api.SimulationRequest{ConfigData: testTopologyYAML}); err != nil {
		t.Fatalf("StartSimulation: %v", err)
	}
	defer d.StopSimulation()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if d.GetStatus().Converged {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Error("expected simulation to converge within 5 seconds")
}

func TestGetStatus_NotRunning(t *testing.T) {
	d := newTestDaemon(t)
	status := d.GetStatus()
	if status.Running {
		t.Error("expected Running=false with no simulation started")
	}
}
