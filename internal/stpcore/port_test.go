package stpcore

import "testing"

func TestPortConnectDisconnectSymmetric(t *testing.T) {
	top := NewTopology(0)
	a := top.AddBridge("aaaa.aaaa.aaaa", 0)
	b := top.AddBridge("bbbb.bbbb.bbbb", 0)
	pa := a.ensurePort(0, DefaultPathCost)
	pb := b.ensurePort(0, DefaultPathCost)

	pa.Connect(pb)
	if pa.Peer() != pb || pb.Peer() != pa {
		t.Fatalf("expected symmetric connection")
	}

	pa.Connect(pb) // idempotent
	if pa.Peer() != pb {
		t.Fatalf("expected connection unchanged on reconnect to same peer")
	}

	pa.Disconnect()
	if pa.Peer() != nil || pb.Peer() != nil {
		t.Fatalf("expected both ends cleared after disconnect")
	}
}

func TestPortSendDrainSingleSlot(t *testing.T) {
	top := NewTopology(0)
	a := top.AddBridge("aaaa.aaaa.aaaa", 0)
	b := top.AddBridge("bbbb.bbbb.bbbb", 0)
	pa := a.ensurePort(0, DefaultPathCost)
	pb := b.ensurePort(0, DefaultPathCost)
	pa.Connect(pb)

	first := NewTCN()
	second := ConfigBPDU{RootID: a.ID, SenderID: a.ID}
	pa.Send(first)
	pa.Send(second) // overwrites, first is silently dropped

	got := pb.Drain()
	if _, ok := got.(ConfigBPDU); !ok {
		t.Fatalf("expected the second, overwriting BPDU to survive, got %T", got)
	}
	if again := pb.Drain(); again != nil {
		t.Fatalf("expected drain to be single-consumption, got %v", again)
	}
}

func TestPortSendNoopWhenDisconnected(t *testing.T) {
	top := NewTopology(0)
	a := top.AddBridge("aaaa.aaaa.aaaa", 0)
	pa := a.ensurePort(0, DefaultPathCost)
	pa.Send(NewTCN()) // no peer; must not panic
}
