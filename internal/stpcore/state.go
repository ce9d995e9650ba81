package stpcore

import (
	"fmt"
	"sort"
	"strings"
)

// PortSnapshot is the observable state of a single interface (spec.md
// §6 "Observable output").
type PortSnapshot struct {
	Index int      `json:"index"`
	Role  PortRole `json:"role"`
	State PortState `json:"state"`
	Cost  uint32   `json:"cost,omitempty"` // only meaningful for the root port
}

// MACEntry is one non-empty row of a bridge's MAC-address table.
type MACEntry struct {
	PortIndex int    `json:"port_index"`
	MAC       string `json:"mac"`
}

// BridgeSnapshot is the full observable state vector for one bridge
// (spec.md §6).
type BridgeSnapshot struct {
	MAC        string         `json:"mac"`
	IsRoot     bool           `json:"is_root"`
	Tick       int            `json:"tick"`
	Ports      []PortSnapshot `json:"ports"`
	MACTable   []MACEntry     `json:"mac_table"`
	Converged  bool           `json:"converged"`
}

// Snapshot captures a bridge's current observable state.
func (b *Bridge) Snapshot() BridgeSnapshot {
	snap := BridgeSnapshot{
		MAC:       b.MAC,
		IsRoot:    b.IsRoot(),
		Tick:      b.Clock,
		Converged: b.Converged(),
	}
	for _, p := range b.Ports {
		ps := PortSnapshot{Index: p.Index(), Role: p.Role(), State: p.State()}
		if p.Role() == RoleRoot {
			ps.Cost = b.RootCost
		}
		snap.Ports = append(snap.Ports, ps)
	}
	indices := make([]int, 0, len(b.MACTable))
	for idx := range b.MACTable {
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	for _, idx := range indices {
		snap.MACTable = append(snap.MACTable, MACEntry{PortIndex: idx, MAC: b.MACTable[idx]})
	}
	return snap
}

// String renders the snapshot the way spec.md §6 describes the CLI's
// observable output: Bridge ID, optional root marker, tick count,
// per-interface role/state(+cost for the root port), and a
// MAC-address-table section.
func (s BridgeSnapshot) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Bridge ID: %s\n", s.MAC)
	if s.IsRoot {
		sb.WriteString("I am the Root Bridge\n")
	}
	fmt.Fprintf(&sb, "Time: %d\n", s.Tick)
	for _, p := range s.Ports {
		if p.Role == RoleRoot {
			fmt.Fprintf(&sb, "  Interface %d: %s/%s Cost: %d\n", p.Index, p.Role, p.State, p.Cost)
		} else {
			fmt.Fprintf(&sb, "  Interface %d: %s/%s\n", p.Index, p.Role, p.State)
		}
	}
	if len(s.MACTable) > 0 {
		sb.WriteString("MAC address table:\n")
		for _, e := range s.MACTable {
			fmt.Fprintf(&sb, "  %d -> %s\n", e.PortIndex, e.MAC)
		}
	}
	return sb.String()
}

// Snapshot captures the observable state of every bridge in the
// topology, in insertion order.
func (t *Topology) Snapshot() []BridgeSnapshot {
	out := make([]BridgeSnapshot, 0, len(t.bridges))
	for _, b := range t.bridges {
		out = append(out, b.Snapshot())
	}
	return out
}
