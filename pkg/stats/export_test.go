package stats

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewStatistics(t *testing.T) {
	stats := NewStatistics("/path/to/config.yaml", "v1.0.0")

	if stats.ConfigFile != "/path/to/config.yaml" {
		t.Errorf("Expected config file '/path/to/config.yaml', got '%s'", stats.ConfigFile)
	}
	if stats.Version != "v1.0.0" {
		t.Errorf("Expected version 'v1.0.0', got '%s'", stats.Version)
	}
	if stats.BPDUsSent == nil {
		t.Error("BPDUsSent map should be initialized")
	}
	if stats.BPDUsReceived == nil {
		t.Error("BPDUsReceived map should be initialized")
	}
	if stats.RoleCounts == nil {
		t.Error("RoleCounts map should be initialized")
	}
}

func TestIncrementBPDUCounters(t *testing.T) {
	stats := NewStatistics("config.yaml", "v1.0.0")

	stats.IncrementBPDUSent("aaaa.aaaa.aaaa")
	stats.IncrementBPDUSent("aaaa.aaaa.aaaa")
	stats.IncrementBPDUReceived("bbbb.bbbb.bbbb")

	if stats.BPDUsSent["aaaa.aaaa.aaaa"] != 2 {
		t.Errorf("Expected sent count 2, got %d", stats.BPDUsSent["aaaa.aaaa.aaaa"])
	}
	if stats.BPDUsReceived["bbbb.bbbb.bbbb"] != 1 {
		t.Errorf("Expected received count 1, got %d", stats.BPDUsReceived["bbbb.bbbb.bbbb"])
	}
}

func TestIncrementTopologyChange(t *testing.T) {
	stats := NewStatistics("config.yaml", "v1.0.0")

	stats.IncrementTopologyChange()
	stats.IncrementTopologyChange()

	if stats.TopologyChangeCount != 2 {
		t.Errorf("Expected topology change count 2, got %d", stats.TopologyChangeCount)
	}
}

func TestUpdate(t *testing.T) {
	stats := NewStatistics("config.yaml", "v1.0.0")

	time.Sleep(10 * time.Millisecond)

	stats.Update()

	if stats.Uptime == 0 {
		t.Error("Uptime should be greater than 0 after Update()")
	}
	if stats.GoroutineCount == 0 {
		t.Error("GoroutineCount should be greater than 0")
	}
	if stats.CPUCount == 0 {
		t.Error("CPUCount should be greater than 0")
	}
}

func TestSetConverged(t *testing.T) {
	stats := NewStatistics("config.yaml", "v1.0.0")

	stats.SetConverged(true, "8000.aaaa.aaaa.aaaa")

	if !stats.Converged {
		t.Error("Expected Converged to be true")
	}
	if stats.RootID != "8000.aaaa.aaaa.aaaa" {
		t.Errorf("Expected root ID '8000.aaaa.aaaa.aaaa', got '%s'", stats.RootID)
	}
}

func TestSetRoleCounts(t *testing.T) {
	stats := NewStatistics("config.yaml", "v1.0.0")

	stats.SetRoleCounts(map[string]int64{"Root": 1, "Designated": 2, "Nondesignated": 1})

	if stats.RoleCounts["Designated"] != 2 {
		t.Errorf("Expected Designated count 2, got %d", stats.RoleCounts["Designated"])
	}
}

func TestSetters(t *testing.T) {
	stats := NewStatistics("config.yaml", "v1.0.0")

	stats.SetBridgeCount(10)
	stats.SetLinkCount(12)
	stats.SetTickCount(57)

	if stats.BridgeCount != 10 {
		t.Errorf("Expected bridge count 10, got %d", stats.BridgeCount)
	}
	if stats.LinkCount != 12 {
		t.Errorf("Expected link count 12, got %d", stats.LinkCount)
	}
	if stats.TickCount != 57 {
		t.Errorf("Expected tick count 57, got %d", stats.TickCount)
	}
}

func TestExportJSON(t *testing.T) {
	stats := NewStatistics("config.yaml", "v1.0.0")
	stats.SetBridgeCount(5)
	stats.IncrementBPDUSent("aaaa.aaaa.aaaa")
	stats.IncrementBPDUSent("aaaa.aaaa.aaaa")
	stats.SetConverged(true, "8000.aaaa.aaaa.aaaa")
	stats.Update()

	tmpDir := t.TempDir()
	jsonFile := filepath.Join(tmpDir, "stats.json")

	if err := stats.ExportJSON(jsonFile); err != nil {
		t.Fatalf("Failed to export JSON: %v", err)
	}

	if _, err := os.Stat(jsonFile); os.IsNotExist(err) {
		t.Fatal("JSON file was not created")
	}

	data, err := os.ReadFile(jsonFile)
	if err != nil {
		t.Fatalf("Failed to read JSON file: %v", err)
	}

	var loaded StatisticsSnapshot
	if err := json.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("Failed to unmarshal JSON: %v", err)
	}

	if loaded.BridgeCount != 5 {
		t.Errorf("Expected bridge count 5, got %d", loaded.BridgeCount)
	}
	if loaded.BPDUsSent["aaaa.aaaa.aaaa"] != 2 {
		t.Errorf("Expected BPDU sent count 2, got %d", loaded.BPDUsSent["aaaa.aaaa.aaaa"])
	}
	if !loaded.Converged {
		t.Error("Expected Converged to be true")
	}
}

func TestExportCSV(t *testing.T) {
	stats := NewStatistics("config.yaml", "v1.0.0")
	stats.SetBridgeCount(3)
	stats.IncrementBPDUSent("aaaa.aaaa.aaaa")
	stats.IncrementBPDUReceived("bbbb.bbbb.bbbb")
	stats.IncrementTopologyChange()
	stats.SetRoleCounts(map[string]int64{"Root": 1})
	stats.Update()

	tmpDir := t.TempDir()
	csvFile := filepath.Join(tmpDir, "stats.csv")

	if err := stats.ExportCSV(csvFile); err != nil {
		t.Fatalf("Failed to export CSV: %v", err)
	}

	if _, err := os.Stat(csvFile); os.IsNotExist(err) {
		t.Fatal("CSV file was not created")
	}

	file, err := os.Open(csvFile)
	if err != nil {
		t.Fatalf("Failed to open CSV file: %v", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("Failed to read CSV: %v", err)
	}

	if len(records) < 2 {
		t.Fatal("CSV should have at least header and one row")
	}
	header := records[0]
	if len(header) != 3 || header[0] != "Metric" || header[1] != "Value" || header[2] != "Category" {
		t.Errorf("Invalid CSV header: %v", header)
	}

	foundBridgeCount := false
	foundConfigFile := false
	for _, record := range records[1:] {
		if len(record) != 3 {
			continue
		}
		if record[0] == "Bridge Count" && record[1] == "3" {
			foundBridgeCount = true
		}
		if record[0] == "Config File" && record[1] == "config.yaml" {
			foundConfigFile = true
		}
	}

	if !foundBridgeCount {
		t.Error("CSV should contain Bridge Count = 3")
	}
	if !foundConfigFile {
		t.Error("CSV should contain Config File = config.yaml")
	}
}

func TestGetSnapshot(t *testing.T) {
	stats := NewStatistics("config.yaml", "v1.0.0")
	stats.SetBridgeCount(5)
	stats.IncrementBPDUSent("aaaa.aaaa.aaaa")

	snapshot := stats.GetSnapshot()

	stats.SetBridgeCount(10)
	stats.IncrementBPDUSent("aaaa.aaaa.aaaa")

	if snapshot.BridgeCount != 5 {
		t.Errorf("Snapshot bridge count should be 5, got %d", snapshot.BridgeCount)
	}
	if snapshot.BPDUsSent["aaaa.aaaa.aaaa"] != 1 {
		t.Errorf("Snapshot BPDU sent count should be 1, got %d", snapshot.BPDUsSent["aaaa.aaaa.aaaa"])
	}
}

func TestString(t *testing.T) {
	stats := NewStatistics("config.yaml", "v1.0.0")
	stats.SetBridgeCount(5)
	stats.Update()

	str := stats.String()
	if str == "" {
		t.Error("String() should return non-empty string")
	}
}

func TestConcurrentAccess(t *testing.T) {
	stats := NewStatistics("config.yaml", "v1.0.0")

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				stats.IncrementBPDUSent("aaaa.aaaa.aaaa")
				stats.IncrementTopologyChange()
				stats.Update()
				_ = stats.GetSnapshot()
			}
			done <- true
		}()
	}

	for i := 0; i < 10; i++ {
		<-done
	}

	if stats.BPDUsSent["aaaa.aaaa.aaaa"] != 1000 {
		t.Errorf("Expected BPDU sent count 1000, got %d", stats.BPDUsSent["aaaa.aaaa.aaaa"])
	}
	if stats.TopologyChangeCount != 1000 {
		t.Errorf("Expected topology change count 1000, got %d", stats.TopologyChangeCount)
	}
}
