package errors

import (
	"testing"
)

func TestStateManager(t *testing.T) {
	sm := NewStateManager()

	sm.SetFault("aaaa.aaaa.aaaa", 0, FaultTypeFrameLoss, 50)

	state := sm.GetFault("aaaa.aaaa.aaaa", 0)
	if state == nil {
		t.Fatal("GetFault returned nil")
	}
	if state.FaultType != FaultTypeFrameLoss {
		t.Errorf("Expected FaultTypeFrameLoss, got %v", state.FaultType)
	}
	if state.Value != 50 {
		t.Errorf("Expected value 50, got %d", state.Value)
	}
	if !state.Enabled {
		t.Error("Expected state to be enabled")
	}

	sm.ClearFault("aaaa.aaaa.aaaa", 0)
	state = sm.GetFault("aaaa.aaaa.aaaa", 0)
	if state.Enabled {
		t.Error("Expected state to be disabled")
	}
}

func TestStateManagerMultipleBridges(t *testing.T) {
	sm := NewStateManager()

	sm.SetFault("aaaa.aaaa.aaaa", 0, FaultTypeFrameLoss, 50)
	sm.SetFault("bbbb.bbbb.bbbb", 0, FaultTypeBPDULoss, 25)
	sm.SetFault("cccc.cccc.cccc", 1, FaultTypeSlowProcessing, 90)

	states := sm.GetAllStates()
	if len(states) != 3 {
		t.Errorf("Expected 3 active states, got %d", len(states))
	}

	sm.ClearAll()
	states = sm.GetAllStates()
	if len(states) != 0 {
		t.Errorf("Expected 0 active states after ClearAll, got %d", len(states))
	}
}

func TestLinkConfig(t *testing.T) {
	sm := NewStateManager()

	sm.SetLinkConfig("aaaa.aaaa.aaaa", 0, 100)

	cfg := sm.GetLinkConfig("aaaa.aaaa.aaaa", 0)
	if cfg.PathCost != 100 {
		t.Errorf("Expected path cost 100, got %d", cfg.PathCost)
	}

	cfg = sm.GetLinkConfig("zzzz.zzzz.zzzz", 9)
	if cfg.PathCost != 19 {
		t.Errorf("Expected default path cost 19, got %d", cfg.PathCost)
	}
}

func TestAllFaultTypes(t *testing.T) {
	types := AllFaultTypes()
	if len(types) != 7 {
		t.Errorf("Expected 7 fault types, got %d", len(types))
	}

	expectedTypes := map[FaultType]bool{
		FaultTypeLinkDown:       false,
		FaultTypeFrameLoss:      false,
		FaultTypeBPDULoss:       false,
		FaultTypeHighLatency:    false,
		FaultTypeFlapping:       false,
		FaultTypeSlowProcessing: false,
		FaultTypeCostOverride:   false,
	}

	for _, ft := range types {
		if _, exists := expectedTypes[ft]; !exists {
			t.Errorf("Unexpected fault type: %v", ft)
		}
		expectedTypes[ft] = true
	}

	for ft, found := range expectedTypes {
		if !found {
			t.Errorf("Missing fault type: %v", ft)
		}
	}
}

func TestCalculateFaultValue(t *testing.T) {
	tests := []struct {
		faultType FaultType
		baseValue int
		faultRate int
		expected  int
	}{
		{FaultTypeSlowProcessing, 50, 90, 90},  // Percentage-based
		{FaultTypeFlapping, 60, 85, 85},        // Percentage-based
		{FaultTypeFrameLoss, 100, 50, 150},     // Counter-based: 100 + (100 * 50 / 100)
		{FaultTypeBPDULoss, 100, 25, 125},      // Counter-based
		{FaultTypeFrameLoss, 100, 0, 100},      // Zero rate
	}

	for _, tt := range tests {
		result := CalculateFaultValue(tt.faultType, tt.baseValue, tt.faultRate)
		if result != tt.expected {
			t.Errorf("%v: expected %d, got %d", tt.faultType, tt.expected, result)
		}
	}
}

func TestConcurrentAccess(t *testing.T) {
	sm := NewStateManager()

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func(id int) {
			for j := 0; j < 100; j++ {
				sm.SetFault("aaaa.aaaa.aaaa", 0, FaultTypeFrameLoss, j)
			}
			done <- true
		}(i)
	}

	for i := 0; i < 10; i++ {
		<-done
	}

	state := sm.GetFault("aaaa.aaaa.aaaa", 0)
	if state == nil {
		t.Fatal("State should exist after concurrent writes")
	}
}

func BenchmarkSetFault(b *testing.B) {
	sm := NewStateManager()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		sm.SetFault("aaaa.aaaa.aaaa", 0, FaultTypeFrameLoss, 50)
	}
}

func BenchmarkGetFault(b *testing.B) {
	sm := NewStateManager()
	sm.SetFault("aaaa.aaaa.aaaa", 0, FaultTypeFrameLoss, 50)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_ = sm.GetFault("aaaa.aaaa.aaaa", 0)
	}
}

func BenchmarkGetAllStates(b *testing.B) {
	sm := NewStateManager()
	for i := 0; i < 100; i++ {
		sm.SetFault("aaaa.aaaa.aaaa", 0, FaultTypeFrameLoss, 50)
	}
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_ = sm.GetAllStates()
	}
}
