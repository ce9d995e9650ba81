// Package stats provides runtime statistics collection and export functionality
// for spanning-tree simulation runs.
package stats

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"
)

// Statistics holds all runtime statistics for a simulation run.
type Statistics struct {
	mu sync.RWMutex

	// General stats
	StartTime   time.Time     `json:"start_time"`
	Uptime      time.Duration `json:"uptime_seconds"`
	ConfigFile  string        `json:"config_file"`
	BridgeCount int           `json:"bridge_count"`
	LinkCount   int           `json:"link_count"`
	Version     string        `json:"version"`

	// Simulation progress
	TickCount           int64  `json:"tick_count"`
	TopologyChangeCount int64  `json:"topology_change_count"`
	Converged           bool   `json:"converged"`
	RootID              string `json:"root_id"`

	// BPDU counters (per bridge MAC)
	BPDUsSent     map[string]int64 `json:"bpdus_sent"`
	BPDUsReceived map[string]int64 `json:"bpdus_received"`

	// Port role/state tallies at the last recorded snapshot (e.g.
	// "Root", "Designated", "Nondesignated", "Disabled")
	RoleCounts map[string]int64 `json:"role_counts"`

	// System stats
	MemoryUsageMB  uint64 `json:"memory_usage_mb"`
	GoroutineCount int    `json:"goroutine_count"`
	CPUCount       int    `json:"cpu_count"`
}

// StatisticsSnapshot is a mutex-free copy of Statistics for export.
type StatisticsSnapshot struct {
	StartTime   time.Time     `json:"start_time"`
	Uptime      time.Duration `json:"uptime_seconds"`
	ConfigFile  string        `json:"config_file"`
	BridgeCount int           `json:"bridge_count"`
	LinkCount   int           `json:"link_count"`
	Version     string        `json:"version"`

	TickCount           int64  `json:"tick_count"`
	TopologyChangeCount int64  `json:"topology_change_count"`
	Converged           bool   `json:"converged"`
	RootID              string `json:"root_id"`

	BPDUsSent     map[string]int64 `json:"bpdus_sent"`
	BPDUsReceived map[string]int64 `json:"bpdus_received"`
	RoleCounts    map[string]int64 `json:"role_counts"`

	MemoryUsageMB  uint64 `json:"memory_usage_mb"`
	GoroutineCount int    `json:"goroutine_count"`
	CPUCount       int    `json:"cpu_count"`
}

// NewStatistics creates a new Statistics instance.
func NewStatistics(configFile, version string) *Statistics {
	return &Statistics{
		StartTime:     time.Now(),
		ConfigFile:    configFile,
		Version:       version,
		BPDUsSent:     make(map[string]int64),
		BPDUsReceived: make(map[string]int64),
		RoleCounts:    make(map[string]int64),
	}
}

// Update refreshes runtime statistics (should be called periodically).
func (s *Statistics) Update() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Uptime = time.Since(s.StartTime)
	s.GoroutineCount = runtime.NumGoroutine()
	s.CPUCount = runtime.NumCPU()

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	s.MemoryUsageMB = m.Alloc / 1024 / 1024
}

// IncrementBPDUSent increments the BPDU-sent count for a bridge.
func (s *Statistics) IncrementBPDUSent(bridgeMAC string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.BPDUsSent[bridgeMAC]++
}

// IncrementBPDUReceived increments the BPDU-received count for a bridge.
func (s *Statistics) IncrementBPDUReceived(bridgeMAC string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.BPDUsReceived[bridgeMAC]++
}

// IncrementTopologyChange increments the topology-change counter.
func (s *Statistics) IncrementTopologyChange() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.TopologyChangeCount++
}

// SetTickCount records the current simulation tick.
func (s *Statistics) SetTickCount(tick int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.TickCount = tick
}

// SetConverged records whether the topology has converged and the root
// bridge ID reported with it; rootID is stored whether or not converged.
func (s *Statistics) SetConverged(converged bool, rootID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Converged = converged
	s.RootID = rootID
}

// SetBridgeCount sets the total bridge count.
func (s *Statistics) SetBridgeCount(count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.BridgeCount = count
}

// SetLinkCount sets the total link count.
func (s *Statistics) SetLinkCount(count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LinkCount = count
}

// SetRoleCounts replaces the port role/state tally.
func (s *Statistics) SetRoleCounts(counts map[string]int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.RoleCounts = make(map[string]int64, len(counts))
	for k, v := range counts {
		s.RoleCounts[k] = v
	}
}

// ExportJSON exports statistics to a JSON file.
func (s *Statistics) ExportJSON(filename string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.snapshot()

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal statistics to JSON: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write JSON file: %w", err)
	}

	return nil
}

// ExportCSV exports statistics to a CSV file.
func (s *Statistics) ExportCSV(filename string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"Metric", "Value", "Category"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	writeRow := func(metric, value, category string) error {
		return writer.Write([]string{metric, value, category})
	}

	writeRow("Start Time", s.StartTime.Format(time.RFC3339), "General")
	writeRow("Uptime (seconds)", fmt.Sprintf("%.0f", s.Uptime.Seconds()), "General")
	writeRow("Config File", s.ConfigFile, "General")
	writeRow("Bridge Count", fmt.Sprintf("%d", s.BridgeCount), "General")
	writeRow("Link Count", fmt.Sprintf("%d", s.LinkCount), "General")
	writeRow("Version", s.Version, "General")

	writeRow("Memory Usage (MB)", fmt.Sprintf("%d", s.MemoryUsageMB), "System")
	writeRow("Goroutine Count", fmt.Sprintf("%d", s.GoroutineCount), "System")
	writeRow("CPU Count", fmt.Sprintf("%d", s.CPUCount), "System")

	writeRow("Tick Count", fmt.Sprintf("%d", s.TickCount), "Convergence")
	writeRow("Topology Change Count", fmt.Sprintf("%d", s.TopologyChangeCount), "Convergence")
	writeRow("Converged", fmt.Sprintf("%t", s.Converged), "Convergence")
	writeRow("Root ID", s.RootID, "Convergence")

	for role, count := range s.RoleCounts {
		writeRow(fmt.Sprintf("Role Count (%s)", role), fmt.Sprintf("%d", count), "Roles")
	}
	for mac, count := range s.BPDUsSent {
		writeRow(fmt.Sprintf("BPDUs Sent (%s)", mac), fmt.Sprintf("%d", count), "BPDU")
	}
	for mac, count := range s.BPDUsReceived {
		writeRow(fmt.Sprintf("BPDUs Received (%s)", mac), fmt.Sprintf("%d", count), "BPDU")
	}

	return nil
}

// snapshot creates a read-safe copy of statistics.
// Must be called with read lock held.
func (s *Statistics) snapshot() StatisticsSnapshot {
	snapshot := StatisticsSnapshot{
		StartTime:           s.StartTime,
		Uptime:              s.Uptime,
		ConfigFile:          s.ConfigFile,
		BridgeCount:         s.BridgeCount,
		LinkCount:           s.LinkCount,
		Version:             s.Version,
		TickCount:           s.TickCount,
		TopologyChangeCount: s.TopologyChangeCount,
		Converged:           s.Converged,
		RootID:              s.RootID,
		MemoryUsageMB:       s.MemoryUsageMB,
		GoroutineCount:      s.GoroutineCount,
		CPUCount:            s.CPUCount,
		BPDUsSent:           make(map[string]int64),
		BPDUsReceived:       make(map[string]int64),
		RoleCounts:          make(map[string]int64),
	}

	for k, v := range s.BPDUsSent {
		snapshot.BPDUsSent[k] = v
	}
	for k, v := range s.BPDUsReceived {
		snapshot.BPDUsReceived[k] = v
	}
	for k, v := range s.RoleCounts {
		snapshot.RoleCounts[k] = v
	}

	return snapshot
}

// GetSnapshot returns a thread-safe snapshot of current statistics.
func (s *Statistics) GetSnapshot() StatisticsSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

// String returns a human-readable summary of statistics.
func (s *Statistics) String() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return fmt.Sprintf(
		"Statistics Summary:\n"+
			"  Uptime: %s\n"+
			"  Bridges: %d\n"+
			"  Links: %d\n"+
			"  Ticks: %d\n"+
			"  Converged: %t\n"+
			"  Root: %s\n"+
			"  Memory: %d MB\n"+
			"  Goroutines: %d\n",
		s.Uptime.Round(time.Second),
		s.BridgeCount,
		s.LinkCount,
		s.TickCount,
		s.Converged,
		s.RootID,
		s.MemoryUsageMB,
		s.GoroutineCount,
	)
}
