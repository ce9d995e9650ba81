// Package errors provides fault-injection state management for spanning-tree
// simulation testing and demos.
package errors

import (
	"fmt"
	"sync"
)

// FaultType represents a kind of fault that can be injected onto a link
// endpoint, independent of the simulator's own aging-based link-loss
// detection.
type FaultType string

const (
	FaultTypeLinkDown       FaultType = "Link Down"
	FaultTypeFrameLoss      FaultType = "Frame Loss"
	FaultTypeBPDULoss       FaultType = "BPDU Loss"
	FaultTypeHighLatency    FaultType = "High Latency"
	FaultTypeFlapping       FaultType = "Link Flapping"
	FaultTypeSlowProcessing FaultType = "Slow Processing"
	FaultTypeCostOverride   FaultType = "Cost Override"
)

// AllFaultTypes returns all available fault types.
func AllFaultTypes() []FaultType {
	return []FaultType{
		FaultTypeLinkDown,
		FaultTypeFrameLoss,
		FaultTypeBPDULoss,
		FaultTypeHighLatency,
		FaultTypeFlapping,
		FaultTypeSlowProcessing,
		FaultTypeCostOverride,
	}
}

// LinkConfig represents link characteristics that can be overridden
// independent of any injected fault.
type LinkConfig struct {
	PathCost uint32
}

// FaultState represents the current fault-injection state for one end of a
// link (a bridge/port pair).
type FaultState struct {
	BridgeMAC  string
	Port       int
	FaultType  FaultType
	Value      int // fault rate or percentage
	LinkConfig LinkConfig
	Enabled    bool
}

// StateManager manages fault-injection state (thread-safe). It is strictly
// additive to internal/stpcore's own aging-based link-loss detection: a
// fault set here does not, by itself, touch the core's port state machine.
// Callers (the interactive shell, the HTTP API) are responsible for
// translating an enabled fault into an actual topology mutation such as
// BreakLink.
type StateManager struct {
	mu     sync.RWMutex
	states map[string]*FaultState // key: bridgeMAC:port
}

// NewStateManager creates a new state manager.
func NewStateManager() *StateManager {
	return &StateManager{
		states: make(map[string]*FaultState),
	}
}

// SetFault sets fault injection for a bridge port.
func (sm *StateManager) SetFault(bridgeMAC string, port int, faultType FaultType, value int) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	key := sm.makeKey(bridgeMAC, port)
	state, exists := sm.states[key]

	if !exists {
		state = &FaultState{
			BridgeMAC: bridgeMAC,
			Port:      port,
			LinkConfig: LinkConfig{
				PathCost: 19, // DefaultPathCost
			},
		}
		sm.states[key] = state
	}

	state.FaultType = faultType
	state.Value = value
	state.Enabled = value > 0
}

// GetFault retrieves fault state for a bridge port.
func (sm *StateManager) GetFault(bridgeMAC string, port int) *FaultState {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	key := sm.makeKey(bridgeMAC, port)
	if state, exists := sm.states[key]; exists {
		stateCopy := *state
		return &stateCopy
	}

	return nil
}

// ClearFault clears fault injection for a bridge port.
func (sm *StateManager) ClearFault(bridgeMAC string, port int) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	key := sm.makeKey(bridgeMAC, port)
	if state, exists := sm.states[key]; exists {
		state.Enabled = false
		state.Value = 0
	}
}

// ClearAll clears all fault injections.
func (sm *StateManager) ClearAll() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	for _, state := range sm.states {
		state.Enabled = false
		state.Value = 0
	}
}

// GetAllStates returns all currently enabled fault states.
func (sm *StateManager) GetAllStates() []*FaultState {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	states := make([]*FaultState, 0, len(sm.states))
	for _, state := range sm.states {
		if state.Enabled {
			stateCopy := *state
			states = append(states, &stateCopy)
		}
	}

	return states
}

// SetLinkConfig sets link configuration overrides for a bridge port.
func (sm *StateManager) SetLinkConfig(bridgeMAC string, port int, pathCost uint32) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	key := sm.makeKey(bridgeMAC, port)
	state, exists := sm.states[key]

	if !exists {
		state = &FaultState{
			BridgeMAC: bridgeMAC,
			Port:      port,
		}
		sm.states[key] = state
	}

	state.LinkConfig.PathCost = pathCost
}

// GetLinkConfig retrieves link configuration for a bridge port.
func (sm *StateManager) GetLinkConfig(bridgeMAC string, port int) LinkConfig {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	key := sm.makeKey(bridgeMAC, port)
	if state, exists := sm.states[key]; exists {
		return state.LinkConfig
	}

	return LinkConfig{PathCost: 19}
}

func (sm *StateManager) makeKey(bridgeMAC string, port int) string {
	return fmt.Sprintf("%s:%d", bridgeMAC, port)
}

// ShouldInjectFault determines if a fault should be injected based on rate.
func ShouldInjectFault(faultRate int) bool {
	return faultRate > 0 && faultRate >= 100
}

// CalculateFaultValue calculates the effective fault value based on type and rate.
func CalculateFaultValue(faultType FaultType, baseValue, faultRate int) int {
	if faultRate == 0 {
		return baseValue
	}

	switch faultType {
	case FaultTypeHighLatency, FaultTypeSlowProcessing, FaultTypeFlapping, FaultTypeLinkDown:
		// Percentage-based faults: the rate itself is the effective value.
		return faultRate
	case FaultTypeFrameLoss, FaultTypeBPDULoss, FaultTypeCostOverride:
		// Counter-based faults: scale the base value by the rate.
		return baseValue + (baseValue * faultRate / 100)
	default:
		return baseValue
	}
}
