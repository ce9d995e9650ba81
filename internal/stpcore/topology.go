package stpcore

import "fmt"

// Topology owns the full set of bridges and the structural edge list,
// and drives global stepping and convergence (spec.md §4.4).
type Topology struct {
	bridges   []*Bridge
	byMAC     map[string]int // MAC -> index into bridges
	edges     []Edge
	maxTicks  int // safety bound for Run; 0 means use defaultMaxTicks
	defaultPriority uint16
}

const defaultMaxTicks = 10_000

// NewTopology creates an empty topology. defaultPriority is used for any
// bridge created without an explicit priority override (spec.md §3
// default 0x8000 applies when 0 is passed).
func NewTopology(defaultPriority uint16) *Topology {
	if defaultPriority == 0 {
		defaultPriority = DefaultBridgePriority
	}
	return &Topology{
		byMAC:           make(map[string]int),
		defaultPriority: defaultPriority,
	}
}

func (t *Topology) bridgeAt(i int) *Bridge {
	if i < 0 || i >= len(t.bridges) {
		return nil
	}
	return t.bridges[i]
}

func (t *Topology) portAt(r portRef) *Port {
	b := t.bridgeAt(r.bridge)
	if b == nil || r.port < 0 || r.port >= len(b.Ports) {
		return nil
	}
	return b.Ports[r.port]
}

// Bridges returns the bridges in insertion order.
func (t *Topology) Bridges() []*Bridge {
	out := make([]*Bridge, len(t.bridges))
	copy(out, t.bridges)
	return out
}

// Bridge looks up a bridge by MAC, returning nil if unknown.
func (t *Topology) Bridge(mac string) *Bridge {
	idx, ok := t.byMAC[mac]
	if !ok {
		return nil
	}
	return t.bridges[idx]
}

// AddBridge creates a bridge with the given MAC if it does not already
// exist, using priority (or the topology default if priority is 0), and
// returns it either way.
func (t *Topology) AddBridge(mac string, priority uint16) *Bridge {
	if b := t.Bridge(mac); b != nil {
		return b
	}
	if priority == 0 {
		priority = t.defaultPriority
	}
	idx := len(t.bridges)
	b := newBridge(t, idx, mac, priority)
	t.bridges = append(t.bridges, b)
	t.byMAC[mac] = idx
	return b
}

func (b *Bridge) ensurePort(index int, pathCost uint32) *Port {
	for len(b.Ports) <= index {
		b.addPort(pathCost)
	}
	p := b.Ports[index]
	if p.state == StateDisabled {
		// re-enabling a previously-deleted port index for a fresh link
		p.state = StateBlocking
	}
	return p
}

// AddLink wires portA on bridgeA to portB on bridgeB, creating either
// bridge (and growing their port lists) as needed. Self-loops and
// duplicate edges (unordered over endpoints) are rejected (spec.md
// §4.4).
func (t *Topology) AddLink(bridgeA string, portA int, bridgeB string, portB int, pathCost uint32) error {
	if bridgeA == bridgeB {
		return fmt.Errorf("stpcore: self-loop rejected for bridge %q", bridgeA)
	}
	if pathCost == 0 {
		pathCost = DefaultPathCost
	}

	candidate := Edge{OriginBridge: bridgeA, TargetBridge: bridgeB, OriginPortIndex: portA, TargetPortIndex: portB}
	for _, e := range t.edges {
		if e.sameEndpoints(candidate) {
			return fmt.Errorf("stpcore: duplicate link between %q and %q rejected", bridgeA, bridgeB)
		}
	}

	a := t.AddBridge(bridgeA, 0)
	b := t.AddBridge(bridgeB, 0)

	pa := a.ensurePort(portA, pathCost)
	pb := b.ensurePort(portB, pathCost)
	pa.Connect(pb)

	t.edges = append(t.edges, candidate)
	return nil
}

// DeleteLink disables port i on the named bridge and its peer,
// structurally removing the edge record (spec.md §4.4).
func (t *Topology) DeleteLink(bridgeMAC string, i int) error {
	b := t.Bridge(bridgeMAC)
	if b == nil {
		return fmt.Errorf("stpcore: bridge %q not found", bridgeMAC)
	}
	if i < 0 || i >= len(b.Ports) {
		return fmt.Errorf("stpcore: bridge %q has no port %d", bridgeMAC, i)
	}
	p := b.Ports[i]
	if peer := p.Peer(); peer != nil {
		if peerBridge := peer.OwnerBridge(); peerBridge != nil {
			peerBridge.disablePort(peer)
		}
	}
	b.disablePort(p)

	t.removeEdgeFor(bridgeMAC, i)
	return nil
}

// DeleteBridge disables every port on the named bridge (spec.md §4.4).
func (t *Topology) DeleteBridge(mac string) error {
	b := t.Bridge(mac)
	if b == nil {
		return fmt.Errorf("stpcore: bridge %q not found", mac)
	}
	for i := range b.Ports {
		_ = t.DeleteLink(mac, i)
	}
	return nil
}

func (t *Topology) removeEdgeFor(bridgeMAC string, portIdx int) {
	out := t.edges[:0]
	for _, e := range t.edges {
		match := (e.OriginBridge == bridgeMAC && e.OriginPortIndex == portIdx) ||
			(e.TargetBridge == bridgeMAC && e.TargetPortIndex == portIdx)
		if !match {
			out = append(out, e)
		}
	}
	t.edges = out
}

// Edges returns the structural edge list in insertion order.
func (t *Topology) Edges() []Edge {
	out := make([]Edge, len(t.edges))
	copy(out, t.edges)
	return out
}

// Tick advances every bridge one simulated tick using the two-phase
// model recommended by spec.md §5 option (a): every bridge emits based
// on last tick's settled state, then every bridge drains and processes
// what is now sitting in its ports' receive slots, then every clock
// advances. This makes convergence timing independent of bridge
// insertion order.
func (t *Topology) Tick() {
	for _, b := range t.bridges {
		if b.Clock == 0 {
			b.boot()
		}
	}
	for _, b := range t.bridges {
		b.emit()
	}
	for _, b := range t.bridges {
		b.drainAndProcess()
	}
	for _, b := range t.bridges {
		b.Clock++
	}
}

// AllConverged reports whether every bridge has settled (spec.md §2). A
// bridge that has not yet ticked has not entered the election, so it
// counts as unsettled.
func (t *Topology) AllConverged() bool {
	for _, b := range t.bridges {
		if b.Clock == 0 || !b.Converged() {
			return false
		}
	}
	return true
}

// Run repeats Tick until AllConverged, bounded by a safety maximum to
// guard against a programming error in the election contract leaving the
// network oscillating forever. It returns the number of ticks it ran.
func (t *Topology) Run() int {
	limit := t.maxTicks
	if limit <= 0 {
		limit = defaultMaxTicks
	}
	ticks := 0
	for ticks < limit && !t.AllConverged() {
		t.Tick()
		ticks++
	}
	return ticks
}

// SetMaxTicks overrides Run's safety bound (0 restores the default).
func (t *Topology) SetMaxTicks(n int) { t.maxTicks = n }
