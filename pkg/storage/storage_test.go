package storage

import (
	"path/filepath"
	"testing"
	"time"
)

func TestStorageAddAndListRuns(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	path := filepath.Join(tmp, "runs.db")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})

	rec1 := RunRecord{
		StartedAt:       time.Now().Add(-1 * time.Hour),
		Duration:        time.Minute,
		ConfigName:      "test.yaml",
		BridgeCount:     3,
		LinkCount:       2,
		RootID:          "8000.aaaa.aaaa.aaaa",
		TicksToConverge: 42,
		Converged:       true,
	}
	rec2 := RunRecord{
		StartedAt:       time.Now(),
		Duration:        2 * time.Minute,
		ConfigName:      "test2.yaml",
		BridgeCount:     5,
		LinkCount:       6,
		RootID:          "8000.bbbb.bbbb.bbbb",
		TicksToConverge: 57,
		Converged:       true,
	}

	if err := store.AddRun(rec1); err != nil {
		t.Fatalf("AddRun(rec1) error = %v", err)
	}
	if err := store.AddRun(rec2); err != nil {
		t.Fatalf("AddRun(rec2) error = %v", err)
	}

	records, err := store.ListRuns(0) // exercise default limit handling
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("ListRuns() len = %d, want 2", len(records))
	}
	if records[0].RootID != rec2.RootID || records[0].ID != 2 {
		t.Fatalf("ListRuns() first record = %+v, want latest run with ID 2", records[0])
	}
	if records[1].RootID != rec1.RootID || records[1].ID != 1 {
		t.Fatalf("ListRuns() second record = %+v, want oldest run with ID 1", records[1])
	}
}

func TestOpenDisabled(t *testing.T) {
	t.Parallel()

	if _, err := Open("disabled"); err == nil {
		t.Fatalf("Open(\"disabled\") expected error, got nil")
	}
}
