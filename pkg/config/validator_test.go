package config

import "testing"

func TestValidatorAcceptsGoodTopology(t *testing.T) {
	top := &Topology{Links: []LinkSpec{
		{BridgeA: "a", PortA: 0, BridgeB: "b", PortB: 0},
	}}
	result := NewValidator("topo.txt").Validate(top)
	if result.HasErrors() {
		t.Fatalf("expected no errors, got %s", result.Format())
	}
}

func TestValidatorRejectsSelfLoop(t *testing.T) {
	top := &Topology{Links: []LinkSpec{
		{BridgeA: "a", PortA: 0, BridgeB: "a", PortB: 1},
	}}
	result := NewValidator("topo.txt").Validate(top)
	if !result.HasErrors() {
		t.Fatalf("expected a self-loop to be flagged")
	}
}

func TestValidatorRejectsDuplicateLink(t *testing.T) {
	top := &Topology{Links: []LinkSpec{
		{BridgeA: "a", PortA: 0, BridgeB: "b", PortB: 0},
		{BridgeA: "b", PortA: 1, BridgeB: "a", PortB: 1},
	}}
	result := NewValidator("topo.txt").Validate(top)
	if !result.HasErrors() {
		t.Fatalf("expected the order-reversed duplicate link to be flagged")
	}
}

func TestValidatorRejectsNegativePortIndex(t *testing.T) {
	top := &Topology{Links: []LinkSpec{
		{BridgeA: "a", PortA: -1, BridgeB: "b", PortB: 0},
	}}
	result := NewValidator("topo.txt").Validate(top)
	if !result.HasErrors() {
		t.Fatalf("expected a negative port index to be flagged")
	}
}

func TestValidatorWarnsOnEmptyTopology(t *testing.T) {
	result := NewValidator("topo.txt").Validate(&Topology{})
	if result.HasErrors() {
		t.Fatalf("expected an empty topology to be a warning, not an error")
	}
	if !result.HasWarnings() {
		t.Fatalf("expected a warning about the empty topology")
	}
}
