package stpcore

// Timing constants, in simulated ticks (spec.md §3). 1 tick models
// roughly 1 second of real 802.1D timing.
const (
	DefaultHelloTime    = 2
	DefaultForwardDelay = 15
	DefaultMaxAge       = 20
	DefaultPathCost     = 19
)

// maxEventLog bounds the per-bridge observable event ring buffer
// (SPEC_FULL.md §4.7); it is pure observability, never consulted by the
// election algorithm.
const maxEventLog = 64
