package api

import "github.com/krisarmstrong/stpsim/internal/stpcore"

// Topology describes a simple graph for visualization, derived from a live
// internal/stpcore.Topology (spec.md §4.5's edge records plus the
// per-bridge role/state needed to color a rendered link).
type Topology struct {
	Nodes []TopologyNode `json:"nodes"`
	Links []TopologyLink `json:"links"`
}

// TopologyNode represents one bridge.
type TopologyNode struct {
	MAC    string `json:"mac"`
	IsRoot bool   `json:"is_root"`
}

// TopologyLink represents one structural edge between two bridge ports,
// annotated with the role/state of each endpoint so a UI can render
// forwarding vs. blocking links without a second round trip.
type TopologyLink struct {
	SourceBridge string `json:"source_bridge"`
	SourcePort   int    `json:"source_port"`
	SourceRole   string `json:"source_role"`
	SourceState  string `json:"source_state"`
	TargetBridge string `json:"target_bridge"`
	TargetPort   int    `json:"target_port"`
	TargetRole   string `json:"target_role"`
	TargetState  string `json:"target_state"`
}

// BuildTopology derives a rendering-friendly graph from a live topology.
func BuildTopology(top *stpcore.Topology) Topology {
	if top == nil {
		return Topology{}
	}

	out := Topology{}
	for _, b := range top.Bridges() {
		out.Nodes = append(out.Nodes, TopologyNode{MAC: b.MAC, IsRoot: b.IsRoot()})
	}

	portState := func(mac string, idx int) (string, string) {
		b := top.Bridge(mac)
		if b == nil || idx < 0 || idx >= len(b.Ports) {
			return "", ""
		}
		p := b.Ports[idx]
		return p.Role().String(), p.State().String()
	}

	for _, e := range top.Edges() {
		srcRole, srcState := portState(e.OriginBridge, e.OriginPortIndex)
		dstRole, dstState := portState(e.TargetBridge, e.TargetPortIndex)
		out.Links = append(out.Links, TopologyLink{
			SourceBridge: e.OriginBridge,
			SourcePort:   e.OriginPortIndex,
			SourceRole:   srcRole,
			SourceState:  srcState,
			TargetBridge: e.TargetBridge,
			TargetPort:   e.TargetPortIndex,
			TargetRole:   dstRole,
			TargetState:  dstState,
		})
	}
	return out
}
