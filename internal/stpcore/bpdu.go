package stpcore

// BPDU is a tagged union over the two message kinds this core exchanges:
// Configuration and Topology-Change-Notification. A third RSTP variant
// exists in real 802.1w deployments but is unreachable here and is not
// implemented (spec.md §4.1, §9).
type BPDU interface {
	Kind() BPDUKind
	isBPDU()
}

// BPDUKind names the two BPDU variants this core understands.
type BPDUKind int

const (
	KindConfiguration BPDUKind = iota
	KindTCN
)

func (k BPDUKind) String() string {
	switch k {
	case KindConfiguration:
		return "Configuration"
	case KindTCN:
		return "TCN"
	default:
		return "Unknown"
	}
}

// ConfigBPDU carries the root/cost/sender advertisement that bridges send
// on every tick. All fields are set at construction and never mutated;
// a receiver may recompute a derived age but never edits the value in
// place (spec.md §4.1).
type ConfigBPDU struct {
	RootID       BridgeID
	Cost         uint32
	SenderID     BridgeID
	PortIndex    int
	MessageAge   int
	MaxAge       int
	HelloTime    int
	ForwardDelay int
	TC           bool
	TCAck        bool
}

func (ConfigBPDU) Kind() BPDUKind { return KindConfiguration }
func (ConfigBPDU) isBPDU()        {}

// TCNBPDU is the tiny topology-change-notification message; it carries
// no payload beyond its type marker.
type TCNBPDU struct{}

func (TCNBPDU) Kind() BPDUKind { return KindTCN }
func (TCNBPDU) isBPDU()        {}

// NewConfigBPDU constructs a Configuration BPDU snapshotting a bridge's
// currently-believed root, cost, and identity for transmission out port
// portIndex at the given simulated clock.
func NewConfigBPDU(rootID BridgeID, cost uint32, senderID BridgeID, portIndex, clock, maxAge, helloTime, forwardDelay int, tc, tcAck bool) ConfigBPDU {
	return ConfigBPDU{
		RootID:       rootID,
		Cost:         cost,
		SenderID:     senderID,
		PortIndex:    portIndex,
		MessageAge:   clock,
		MaxAge:       maxAge,
		HelloTime:    helloTime,
		ForwardDelay: forwardDelay,
		TC:           tc,
		TCAck:        tcAck,
	}
}

// NewTCN constructs a Topology-Change-Notification BPDU.
func NewTCN() TCNBPDU { return TCNBPDU{} }
