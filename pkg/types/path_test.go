package types

import (
	"strings"
	"testing"
)

func TestActivePath_TypeSwitch(t *testing.T) {
	paths := []ActivePath{
		RelayHandle{PeerID: "peer-1", RelayPeerID: "relay-1", RTTMs: 300},
		DirectHandle{PeerID: "peer-1", RTTMs: 20, Endpoint: "192.0.2.1:4001"},
	}

	var relays, directs int
	for _, p := range paths {
		switch h := p.(type) {
		case RelayHandle:
			relays++
			if h.Kind() != PathKindRelay || h.RTT() != 300 {
				t.Errorf("RelayHandle = %+v", h)
			}
		case DirectHandle:
			directs++
			if h.Kind() != PathKindDirect || h.RTT() != 20 {
				t.Errorf("DirectHandle = %+v", h)
			}
		}
		if p.Peer() != "peer-1" {
			t.Errorf("Peer() = %q", p.Peer())
		}
	}
	if relays != 1 || directs != 1 {
		t.Errorf("relays=%d directs=%d", relays, directs)
	}
}

func TestActivePath_String(t *testing.T) {
	r := RelayHandle{PeerID: "peer-123456789", RelayPeerID: "relay-123456789", RTTMs: 300}
	if s := r.String(); !strings.Contains(s, "peer-123") || !strings.Contains(s, "300ms") {
		t.Errorf("RelayHandle.String() = %q", s)
	}

	d := DirectHandle{PeerID: "peer-1", RTTMs: 20, Endpoint: "192.0.2.1:4001"}
	if s := d.String(); !strings.Contains(s, "192.0.2.1:4001") {
		t.Errorf("DirectHandle.String() = %q", s)
	}
}

func TestPathState(t *testing.T) {
	tests := []struct {
		state     PathState
		str       string
		connected bool
	}{
		{PathStateNone, "none", false},
		{PathStateRelayed, "relayed", true},
		{PathStateDirect, "direct", true},
		{PathStateDisconnected, "disconnected", false},
		{PathState(99), "unknown", false},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.str {
			t.Errorf("PathState(%d).String() = %q, want %q", tt.state, got, tt.str)
		}
		if got := tt.state.IsConnected(); got != tt.connected {
			t.Errorf("PathState(%d).IsConnected() = %v, want %v", tt.state, got, tt.connected)
		}
	}
}

func TestPathKind_String(t *testing.T) {
	if PathKindRelay.String() != "relay" || PathKindDirect.String() != "direct" {
		t.Error("PathKind.String() 不符合预期")
	}
	if PathKind(7).String() != "unknown" {
		t.Error("未知 PathKind 应返回 unknown")
	}
}
