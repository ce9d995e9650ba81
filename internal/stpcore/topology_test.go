package stpcore

import "testing"

func TestAddLinkCreatesBridgesAndConnectsPorts(t *testing.T) {
	top := NewTopology(0)
	if err := top.AddLink("a", 0, "b", 0, 0); err != nil {
		t.Fatalf("AddLink: %v", err)
	}

	a := top.Bridge("a")
	b := top.Bridge("b")
	if a == nil || b == nil {
		t.Fatalf("expected both bridges to be created")
	}
	if a.Ports[0].Peer() != b.Ports[0] {
		t.Fatalf("expected the two ports to be connected")
	}
	if a.Ports[0].PathCost() != DefaultPathCost {
		t.Fatalf("expected a pathCost of 0 to default to %d, got %d", DefaultPathCost, a.Ports[0].PathCost())
	}
}

func TestAddLinkRejectsSelfLoop(t *testing.T) {
	top := NewTopology(0)
	if err := top.AddLink("a", 0, "a", 1, 0); err == nil {
		t.Fatalf("expected a self-loop to be rejected")
	}
}

func TestAddLinkRejectsDuplicateEdge(t *testing.T) {
	top := NewTopology(0)
	if err := top.AddLink("a", 0, "b", 0, 0); err != nil {
		t.Fatalf("AddLink: %v", err)
	}
	if err := top.AddLink("b", 1, "a", 1, 0); err == nil {
		t.Fatalf("expected a duplicate (order-reversed) edge to be rejected")
	}
}

func TestDeleteLinkDisablesBothEndsAndRemovesEdge(t *testing.T) {
	top := NewTopology(0)
	_ = top.AddLink("a", 0, "b", 0, 0)

	if err := top.DeleteLink("a", 0); err != nil {
		t.Fatalf("DeleteLink: %v", err)
	}

	a := top.Bridge("a")
	b := top.Bridge("b")
	if a.Ports[0].State() != StateDisabled {
		t.Fatalf("expected the deleted side to be Disabled, got %s", a.Ports[0].State())
	}
	if b.Ports[0].State() != StateDisabled {
		t.Fatalf("expected the peer side to be Disabled, got %s", b.Ports[0].State())
	}
	if len(top.Edges()) != 0 {
		t.Fatalf("expected the edge record to be removed, got %d", len(top.Edges()))
	}
}

func TestDeleteBridgeDisablesEveryPort(t *testing.T) {
	top := NewTopology(0)
	_ = top.AddLink("a", 0, "b", 0, 0)
	_ = top.AddLink("a", 1, "c", 0, 0)

	if err := top.DeleteBridge("a"); err != nil {
		t.Fatalf("DeleteBridge: %v", err)
	}

	a := top.Bridge("a")
	for _, p := range a.Ports {
		if p.State() != StateDisabled {
			t.Fatalf("expected every port on a deleted bridge to be Disabled, got %s", p.State())
		}
	}
	if len(top.Edges()) != 0 {
		t.Fatalf("expected all edges touching the deleted bridge to be removed")
	}
}

func TestEnsurePortReEnablesADisabledIndex(t *testing.T) {
	top := NewTopology(0)
	b := top.AddBridge("a", 0)
	p := b.ensurePort(0, DefaultPathCost)
	p.SetState(StateDisabled)

	reopened := b.ensurePort(0, DefaultPathCost)
	if reopened != p {
		t.Fatalf("expected ensurePort to return the same port object for an existing index")
	}
	if reopened.State() != StateBlocking {
		t.Fatalf("expected a re-opened port to start Blocking, got %s", reopened.State())
	}
}

func TestRunStopsOnceAllBridgesConverge(t *testing.T) {
	top := NewTopology(0)
	_ = top.AddLink("a", 0, "b", 0, 0)

	ticks := top.Run()
	if ticks <= 0 {
		t.Fatalf("expected Run to take a positive number of ticks, got %d", ticks)
	}
	if !top.AllConverged() {
		t.Fatalf("expected Run to leave the topology converged")
	}

	again := top.Run()
	if again != 0 {
		t.Fatalf("expected Run on an already-converged topology to take zero more ticks, got %d", again)
	}
}

func TestRunRespectsMaxTicksSafetyBound(t *testing.T) {
	top := NewTopology(0)
	_ = top.AddLink("a", 0, "b", 0, 0)
	top.SetMaxTicks(1)

	ticks := top.Run()
	if ticks != 1 {
		t.Fatalf("expected Run to stop at the configured safety bound, got %d ticks", ticks)
	}
}
