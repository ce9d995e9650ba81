package stpcore

import "testing"

func TestBridgeIDLess(t *testing.T) {
	a := BridgeID{Priority: 0x8000, MAC: "0001.0001.0001"}
	b := BridgeID{Priority: 0x8000, MAC: "0002.0002.0002"}
	if !a.Less(b) {
		t.Fatalf("expected %v < %v", a, b)
	}
	if b.Less(a) {
		t.Fatalf("did not expect %v < %v", b, a)
	}

	higherPriority := BridgeID{Priority: 0x9000, MAC: "0000.0000.0000"}
	if !a.Less(higherPriority) {
		t.Fatalf("expected lower priority to win regardless of MAC")
	}
}

func TestBridgeIDEqual(t *testing.T) {
	a := BridgeID{Priority: 0x8000, MAC: "aaaa.aaaa.aaaa"}
	b := BridgeID{Priority: 0x8000, MAC: "aaaa.aaaa.aaaa"}
	if !a.Equal(b) {
		t.Fatalf("expected value equality")
	}
	c := BridgeID{Priority: 0x8000, MAC: "bbbb.bbbb.bbbb"}
	if a.Equal(c) {
		t.Fatalf("did not expect equality")
	}
}
