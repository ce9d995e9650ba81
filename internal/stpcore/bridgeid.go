package stpcore

import "fmt"

// DefaultBridgePriority is the priority every bridge gets unless a
// per-bridge override is supplied at construction (spec.md §3).
const DefaultBridgePriority uint16 = 0x8000

// BridgeID is the concatenation of a 16-bit priority and a MAC address,
// compared lexicographically: lower is better. It is a plain value type
// (no pointers) so bridges can compare and copy it freely.
type BridgeID struct {
	Priority uint16
	MAC      string
}

// Less reports whether id is strictly numerically smaller than other,
// comparing priority first and then MAC as the tie-break, matching the
// concatenation-then-lexicographic-compare rule in spec.md §3.
func (id BridgeID) Less(other BridgeID) bool {
	if id.Priority != other.Priority {
		return id.Priority < other.Priority
	}
	return id.MAC < other.MAC
}

// Equal reports value equality. Bridge IDs must always be compared by
// value, never by pointer or string identity (spec.md §9 Open Questions).
func (id BridgeID) Equal(other BridgeID) bool {
	return id.Priority == other.Priority && id.MAC == other.MAC
}

func (id BridgeID) String() string {
	return fmt.Sprintf("%04x.%s", id.Priority, id.MAC)
}
