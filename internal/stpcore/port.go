package stpcore

// PortRole is a closed set of roles a port can hold in the spanning tree.
type PortRole int

const (
	RoleNondesignated PortRole = iota
	RoleRoot
	RoleDesignated
)

func (r PortRole) String() string {
	switch r {
	case RoleRoot:
		return "Root"
	case RoleDesignated:
		return "Designated"
	case RoleNondesignated:
		return "Nondesignated"
	default:
		return "Unknown"
	}
}

// PortState is a closed set of port states with the transitions in
// spec.md §3: Disabled -> Blocking -> Listening -> Learning -> Forwarding,
// with fallback to Blocking and a hard cut to Disabled on link break.
type PortState int

const (
	StateDisabled PortState = iota
	StateBlocking
	StateListening
	StateLearning
	StateForwarding
)

func (s PortState) String() string {
	switch s {
	case StateDisabled:
		return "Disabled"
	case StateBlocking:
		return "Blocking"
	case StateListening:
		return "Listening"
	case StateLearning:
		return "Learning"
	case StateForwarding:
		return "Forwarding"
	default:
		return "Unknown"
	}
}

// portRef is an indexed handle to a port on some bridge in the owning
// topology: (bridge index, port index). Using indices rather than direct
// pointers keeps the cyclic port<->port peer graph owned entirely by the
// Topology, per spec.md §9 design notes.
type portRef struct {
	bridge int
	port   int
}

var noPortRef = portRef{bridge: -1, port: -1}

func (r portRef) valid() bool { return r.bridge >= 0 && r.port >= 0 }

// Port is one bridge interface: its current role/state, its peer handle,
// the last Configuration BPDU it has seen (used for election and cost
// comparisons), and the single-slot receive buffer BPDUs arrive in.
type Port struct {
	owner *Topology
	self  portRef

	index    int
	peer     portRef
	pathCost uint32

	state PortState
	role  PortRole

	pending BPDU        // single-slot receive buffer; overwritten, drained once
	lastCfg *ConfigBPDU // last Configuration BPDU seen on this port, retained across ticks
	age     int         // simulated clock at which lastCfg was last refreshed
}

func newPort(owner *Topology, bridgeIdx, index int, pathCost uint32) *Port {
	return &Port{
		owner:    owner,
		self:     portRef{bridge: bridgeIdx, port: index},
		index:    index,
		peer:     noPortRef,
		pathCost: pathCost,
		state:    StateBlocking,
		role:     RoleNondesignated,
	}
}

// Index returns this port's 0-based, stable interface index.
func (p *Port) Index() int { return p.index }

// State returns the port's current STP state.
func (p *Port) State() PortState { return p.state }

// Role returns the port's current STP role.
func (p *Port) Role() PortRole { return p.role }

// SetState sets the port's STP state.
func (p *Port) SetState(s PortState) { p.state = s }

// SetRole sets the port's STP role.
func (p *Port) SetRole(r PortRole) { p.role = r }

// PathCost returns the cost this link contributes when used as a root
// path (spec.md §3, default PATH_COST = 19).
func (p *Port) PathCost() uint32 { return p.pathCost }

// Peer returns the port on the far end of this link, or nil if the link
// is down (never connected, or explicitly broken).
func (p *Port) Peer() *Port {
	if !p.peer.valid() || p.owner == nil {
		return nil
	}
	return p.owner.portAt(p.peer)
}

// OwnerBridge returns the bridge this port belongs to.
func (p *Port) OwnerBridge() *Bridge {
	if p.owner == nil {
		return nil
	}
	return p.owner.bridgeAt(p.self.bridge)
}

// Connect sets a bidirectional peer relationship between p and peer.
// Idempotent if already connected to the same peer. Passing nil models a
// link break: p's existing peer (if any) has its own reference cleared
// symmetrically.
func (p *Port) Connect(peer *Port) {
	if peer == nil {
		p.Disconnect()
		return
	}
	if p.peer == peer.self {
		return // already connected to this peer
	}
	p.Disconnect()
	peer.Disconnect()
	p.peer = peer.self
	peer.peer = p.self
}

// Disconnect clears p's peer reference and the former peer's reference
// back to p, modeling a link break.
func (p *Port) Disconnect() {
	if !p.peer.valid() {
		return
	}
	if old := p.Peer(); old != nil {
		old.peer = noPortRef
	}
	p.peer = noPortRef
}

// Send deposits bpdu into the peer port's receive slot, overwriting any
// BPDU already pending there. A no-op if disconnected; there is no
// network-level queueing (spec.md §4.2).
func (p *Port) Send(bpdu BPDU) {
	peer := p.Peer()
	if peer == nil {
		return
	}
	peer.pending = bpdu
}

// Drain atomically takes the pending BPDU (if any), leaving the slot
// empty, and returns it. This is the only read path a bridge uses,
// enforcing single-consumption semantics (spec.md §4.2).
func (p *Port) Drain() BPDU {
	b := p.pending
	p.pending = nil
	return b
}

// LastConfig returns the last Configuration BPDU retained on this port
// (nil if none has ever arrived), used by root-port election.
func (p *Port) LastConfig() *ConfigBPDU { return p.lastCfg }

// Age returns the simulated clock tick at which this port's retained
// Configuration BPDU was last refreshed.
func (p *Port) Age() int { return p.age }

func (p *Port) touch(cfg *ConfigBPDU, clock int) {
	p.lastCfg = cfg
	p.age = clock
}
