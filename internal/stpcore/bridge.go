package stpcore

import "fmt"

// noRootPort is the RootPort sentinel meaning "this bridge has not yet
// selected a root port" (including the case where the bridge believes
// itself to be the root).
const noRootPort = -1

// Bridge is one STP instance: its identity, its belief about the network
// root, its ordered port list, its MAC-learning table, its
// topology-change flags, and its simulated local clock (spec.md §3).
type Bridge struct {
	owner *Topology
	index int

	MAC string
	ID  BridgeID

	RootID   BridgeID
	RootCost uint32
	RootPort int // port index, or noRootPort

	Ports []*Port

	MACTable map[int]string // interface index -> last-learned neighbor MAC

	TC         bool // this bridge has seen a topology change and is advertising it
	tcAckFlood bool // root-only, one-shot: next emit() floods TCAck then clears

	Clock       int
	ForwardTime int // clock at which the current forward-delay countdown started

	HelloTime    int
	MaxAge       int
	ForwardDelay int

	events []string
}

func newBridge(owner *Topology, index int, mac string, priority uint16) *Bridge {
	id := BridgeID{Priority: priority, MAC: mac}
	return &Bridge{
		owner:        owner,
		index:        index,
		MAC:          mac,
		ID:           id,
		RootID:       id,
		RootCost:     0,
		RootPort:     noRootPort,
		MACTable:     make(map[int]string),
		HelloTime:    DefaultHelloTime,
		MaxAge:       DefaultMaxAge,
		ForwardDelay: DefaultForwardDelay,
	}
}

// IsRoot reports whether this bridge currently believes itself to be the
// network root (value comparison only, never identity — spec.md §9).
func (b *Bridge) IsRoot() bool { return b.RootID.Equal(b.ID) }

// Converged reports whether no port on this bridge is in Listening or
// Learning (spec.md §2).
func (b *Bridge) Converged() bool {
	for _, p := range b.Ports {
		if p.State() == StateListening || p.State() == StateLearning {
			return false
		}
	}
	return true
}

// Events returns the bounded ring of human-readable transition events
// accumulated on this bridge (SPEC_FULL.md §4.7), oldest first.
func (b *Bridge) Events() []string {
	out := make([]string, len(b.events))
	copy(out, b.events)
	return out
}

func (b *Bridge) logEvent(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	b.events = append(b.events, msg)
	if len(b.events) > maxEventLog {
		b.events = b.events[len(b.events)-maxEventLog:]
	}
}

func (b *Bridge) addPort(pathCost uint32) *Port {
	idx := len(b.Ports)
	p := newPort(b.owner, b.index, idx, pathCost)
	b.Ports = append(b.Ports, p)
	return p
}

// resetElection drives every non-disabled port back to
// Listening/Nondesignated, clears the root-port handle, reverts this
// bridge to believing itself the root, and restarts the forward-delay
// countdown. Reverting RootID/RootCost here (rather than only on boot)
// is what lets a bridge that has just lost its root port recover if no
// better root is ever heard again: without it, a bridge that last heard
// of a now-unreachable root keeps relaying that stale belief forever,
// since nothing else invalidates it once its neighbor is also just
// echoing the same stale advertisement back. Used by the boot
// transition, by root-port loss, and by topology-change re-election
// (spec.md §4.3). A still-reachable, genuinely better root is re-
// adopted almost immediately via the ordinary Listening-state
// comparison, so this self-declaration is only ever transient.
func (b *Bridge) resetElection() {
	for _, p := range b.Ports {
		if p.State() == StateDisabled {
			continue
		}
		p.SetRole(RoleNondesignated)
		p.SetState(StateListening)
	}
	b.RootPort = noRootPort
	b.RootID = b.ID
	b.RootCost = 0
	b.ForwardTime = b.Clock
}

// boot performs the first-tick transition described in spec.md §4.3:
// every non-disabled port moves to Listening/Nondesignated and the two
// topology-change flags are cleared.
func (b *Bridge) boot() {
	b.resetElection()
	b.TC = false
	b.tcAckFlood = false
	b.logEvent("boot: entering election at tick %d", b.Clock)
}

// emit is this bridge's emission phase of a tick. spec.md §4.3 orders a
// tick as drain, process, emit, clock++, except emission for the
// *whole topology* happens in a separate, earlier global phase so that
// BPDU visibility does not depend on bridge iteration order (spec.md §5,
// option (a)). Topology.Tick calls emit() for every bridge first, then
// drainAndProcess() for every bridge, then advances clocks.
func (b *Bridge) emit() {
	for _, p := range b.Ports {
		if p.State() == StateDisabled || p.State() == StateBlocking || p.Role() == RoleRoot {
			continue
		}
		bpdu := NewConfigBPDU(b.RootID, b.RootCost, b.ID, p.Index(), b.Clock, b.MaxAge, b.HelloTime, b.ForwardDelay, b.TC, b.tcAckFlood)
		p.Send(bpdu)
	}
	b.tcAckFlood = false
}

func (b *Bridge) drainAndProcess() {
	for _, p := range b.Ports {
		if p.State() == StateDisabled {
			continue
		}
		bpdu := p.Drain()

		if bpdu == nil {
			b.handleSilence(p)
			continue
		}

		switch msg := bpdu.(type) {
		case ConfigBPDU:
			p.touch(&msg, b.Clock)
			if msg.TCAck && !b.IsRoot() {
				b.TC = false
				b.flushMACTable()
				b.boot()
				continue
			}
			switch p.State() {
			case StateListening:
				b.processListening(p, msg)
			case StateLearning:
				b.processLearning(p, msg)
			}
		case TCNBPDU:
			b.handleTCN()
		}
	}

	b.recomputeEmission()
}

// recomputeEmission keeps RootID/RootCost coherent with the bridge's own
// state (spec.md §3 invariant: "rootID a bridge advertises equals its
// believed rootID; cost equals the cost via its root port").
func (b *Bridge) recomputeEmission() {
	if b.IsRoot() {
		b.RootCost = 0
		return
	}
	if b.RootPort == noRootPort {
		return
	}
	rp := b.Ports[b.RootPort]
	if cfg := rp.LastConfig(); cfg != nil {
		b.RootCost = cfg.Cost + rp.PathCost()
	}
}

func (b *Bridge) flushMACTable() {
	for k := range b.MACTable {
		delete(b.MACTable, k)
	}
}

// handleSilence implements the aging and link-break detection in
// spec.md §4.3: a port that drained nothing this tick and is not
// Designated may be promoted (if its peer has gone Disabled) or aged out
// entirely (if MAX_AGE has elapsed with no fresh BPDU).
//
// A Designated port's own forward-delay progress does not depend on
// hearing anything back: once its peer becomes the network's Root port,
// emit() (by design) stops sending out Root-role ports, so the
// Designated side would otherwise starve in Listening/Learning forever.
// The same applies to a Root port while its upstream neighbor is
// momentarily silent but not yet aged out. Nondesignated ports are not
// advanced here — they are meant to sit Blocking until re-elected.
func (b *Bridge) handleSilence(p *Port) {
	if p.Role() == RoleDesignated {
		b.advanceForwardTimer(p)
		return
	}
	if peer := p.Peer(); peer != nil && peer.State() == StateDisabled {
		p.SetRole(RoleDesignated)
		p.SetState(StateForwarding)
		b.logEvent("port %d promoted to Designated/Forwarding (peer disabled)", p.Index())
		return
	}
	if p.Role() == RoleRoot {
		b.advanceForwardTimer(p)
	}
	if b.Clock-p.Age() >= b.MaxAge {
		b.loseLink(p)
	}
}

// advanceForwardTimer drives p through Listening -> Learning -> Forwarding
// (or -> Blocking) on the bridge's forward-delay timer alone, independent
// of whether a fresh BPDU arrived for p this tick (spec.md §4.3's two
// "if clock - forwardTime >= FORWARD_DELAY" steps).
func (b *Bridge) advanceForwardTimer(p *Port) {
	switch p.State() {
	case StateListening:
		if b.Clock-b.ForwardTime >= b.ForwardDelay {
			p.SetState(StateLearning)
		}
	case StateLearning:
		if b.Clock-b.ForwardTime >= b.ForwardDelay {
			if p.Role() == RoleRoot || p.Role() == RoleDesignated {
				p.SetState(StateForwarding)
			} else {
				p.SetState(StateBlocking)
			}
		}
	}
}

// disablePort tears down port p (disconnecting, marking it Disabled and
// Nondesignated) and raises the bridge's topology-change flag. If p held
// the root role, losing it invalidates this bridge's whole election
// state, so a full resetElection runs to force fresh root-port selection
// rather than leaving RootPort pointing at a dead port (spec.md §4.3).
func (b *Bridge) disablePort(p *Port) {
	wasRoot := p.Role() == RoleRoot
	p.Disconnect()
	p.SetState(StateDisabled)
	p.SetRole(RoleNondesignated)
	b.TC = true
	if wasRoot {
		b.resetElection()
	}
}

// loseLink disables port p after it has aged out, and floods a TCN out
// every other non-disabled connected port (spec.md §4.3).
func (b *Bridge) loseLink(p *Port) {
	b.disablePort(p)
	b.logEvent("port %d aged out past MAX_AGE, disabling and flooding TCN", p.Index())

	tcn := NewTCN()
	for _, other := range b.Ports {
		if other == p || other.State() == StateDisabled {
			continue
		}
		other.Send(tcn)
	}
}

// BreakLink implements the explicit link-break operation of spec.md
// §4.3: it immediately disables port i and disconnects its peer,
// clearing this bridge's convergence and raising its topology-change
// flag — the peer bridge only notices on its own next aging check or a
// later tick's silence handling.
func (b *Bridge) BreakLink(i int) {
	if i < 0 || i >= len(b.Ports) {
		return
	}
	b.disablePort(b.Ports[i])
	b.logEvent("port %d explicitly broken", i)
}

// processListening implements spec.md §4.3 "Port in Listening".
func (b *Bridge) processListening(p *Port, f ConfigBPDU) {
	switch {
	case f.RootID.Less(b.RootID):
		b.RootID = f.RootID
		b.RootCost = f.Cost + p.PathCost()
		b.RootPort = noRootPort
		for _, q := range b.Ports {
			if q.Role() == RoleRoot || q.Role() == RoleDesignated {
				q.SetRole(RoleNondesignated)
			}
		}
		b.logEvent("adopted better root %s via port %d", f.RootID, p.Index())
	case b.RootPort == noRootPort && !b.IsRoot():
		b.electRootPort()
	default:
		b.electDesignated(p, f)
	}

	b.advanceForwardTimer(p)
}

// processLearning implements spec.md §4.3 "Port in Learning".
func (b *Bridge) processLearning(p *Port, f ConfigBPDU) {
	b.MACTable[p.Index()] = f.SenderID.MAC
	b.advanceForwardTimer(p)
}

// electRootPort implements spec.md §4.3.a: over all non-disabled,
// connected ports that have heard at least one Configuration BPDU, pick
// the minimum advertised root path cost, breaking ties by the smallest
// sender Bridge ID and then by smallest port index.
func (b *Bridge) electRootPort() {
	var winner *Port
	for _, p := range b.Ports {
		if p.State() == StateDisabled || p.Peer() == nil || p.LastConfig() == nil {
			continue
		}
		if winner == nil || isBetterCandidate(p, winner) {
			winner = p
		}
	}
	if winner == nil {
		return
	}

	winner.SetRole(RoleRoot)
	winner.SetState(StateLearning)
	b.RootPort = winner.Index()
	b.RootCost = winner.LastConfig().Cost + winner.PathCost()
	b.logEvent("elected root port %d (cost %d)", winner.Index(), b.RootCost)
}

func isBetterCandidate(candidate, current *Port) bool {
	cc, cu := candidate.LastConfig(), current.LastConfig()
	if cc.Cost != cu.Cost {
		return cc.Cost < cu.Cost
	}
	if !cc.SenderID.Equal(cu.SenderID) {
		return cc.SenderID.Less(cu.SenderID)
	}
	return candidate.Index() < current.Index()
}

// electDesignated implements spec.md §4.3.b for port p given the
// Configuration BPDU f just received on it.
func (b *Bridge) electDesignated(p *Port, f ConfigBPDU) {
	isDesignated := false
	switch {
	case b.IsRoot():
		isDesignated = true
	case peerIsItsOwnRootPort(p):
		isDesignated = true
	case b.RootCost < f.Cost:
		isDesignated = true
	case b.RootCost == f.Cost && b.ID.Less(f.SenderID):
		isDesignated = true
	}

	if isDesignated {
		p.SetRole(RoleDesignated)
		if p.State() == StateListening {
			p.SetState(StateLearning)
		}
		return
	}

	p.SetRole(RoleNondesignated)
	if peer := p.Peer(); peer != nil && peer.State() == StateForwarding {
		p.SetState(StateBlocking)
	}
}

func peerIsItsOwnRootPort(p *Port) bool {
	peer := p.Peer()
	if peer == nil {
		return false
	}
	peerBridge := peer.OwnerBridge()
	if peerBridge == nil {
		return false
	}
	return peerBridge.RootPort == peer.Index()
}

// handleTCN implements spec.md's topology-change handling for an
// incoming TCN BPDU: the root acknowledges and floods TCAck; any other
// bridge raises TC and re-enters election.
func (b *Bridge) handleTCN() {
	if b.IsRoot() {
		b.tcAckFlood = true
		b.logEvent("root acknowledging TCN, flooding TCAck")
		return
	}
	b.TC = true
	b.resetElection()
	b.logEvent("TCN received, re-entering election")
}
