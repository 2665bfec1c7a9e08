package mocks

import (
	"context"
	"sync"

	"github.com/dep2p/go-pathmgr/pkg/interfaces"
	"github.com/dep2p/go-pathmgr/pkg/types"
)

// MockTransport 模拟 Transport 接口实现
type MockTransport struct {
	mu sync.Mutex

	// 可覆盖的方法
	EstablishRelayFunc   func(ctx context.Context, peer types.PeerID) (types.RelayHandle, error)
	AttemptHolePunchFunc func(ctx context.Context, peer types.PeerID, relay types.RelayHandle) (types.DirectHandle, error)
	ProbeDirectFunc      func(ctx context.Context, direct types.DirectHandle) error

	// 默认返回值
	RelayRTTMs  uint64
	DirectRTTMs uint64

	// 调用记录
	EstablishRelayCalls   []types.PeerID
	AttemptHolePunchCalls []PunchCall
	ProbeDirectCalls      []types.DirectHandle

	handlers interfaces.TransportHandlers
}

// PunchCall 记录 AttemptHolePunch 调用
type PunchCall struct {
	Peer  types.PeerID
	Relay types.RelayHandle
}

var (
	_ interfaces.Transport         = (*MockTransport)(nil)
	_ interfaces.DirectProber      = (*MockTransport)(nil)
	_ interfaces.TransportNotifier = (*MockTransport)(nil)
)

// NewMockTransport 创建带有默认值的 MockTransport
func NewMockTransport() *MockTransport {
	return &MockTransport{
		RelayRTTMs:  300,
		DirectRTTMs: 30,
	}
}

// EstablishRelay 建立中继
func (m *MockTransport) EstablishRelay(ctx context.Context, peer types.PeerID) (types.RelayHandle, error) {
	m.mu.Lock()
	m.EstablishRelayCalls = append(m.EstablishRelayCalls, peer)
	fn := m.EstablishRelayFunc
	rtt := m.RelayRTTMs
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, peer)
	}
	return types.RelayHandle{PeerID: peer, RelayPeerID: "mock-relay", RTTMs: rtt}, nil
}

// AttemptHolePunch 打洞
func (m *MockTransport) AttemptHolePunch(ctx context.Context, peer types.PeerID, relay types.RelayHandle) (types.DirectHandle, error) {
	m.mu.Lock()
	m.AttemptHolePunchCalls = append(m.AttemptHolePunchCalls, PunchCall{Peer: peer, Relay: relay})
	fn := m.AttemptHolePunchFunc
	rtt := m.DirectRTTMs
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, peer, relay)
	}
	return types.DirectHandle{PeerID: peer, RTTMs: rtt, Endpoint: "198.51.100.1:4001"}, nil
}

// ProbeDirect 探测直连
func (m *MockTransport) ProbeDirect(ctx context.Context, direct types.DirectHandle) error {
	m.mu.Lock()
	m.ProbeDirectCalls = append(m.ProbeDirectCalls, direct)
	fn := m.ProbeDirectFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, direct)
	}
	return nil
}

// SetHandlers 注册事件回调
func (m *MockTransport) SetHandlers(h interfaces.TransportHandlers) {
	m.mu.Lock()
	m.handlers = h
	m.mu.Unlock()
}

// Handlers 返回已注册的回调
func (m *MockTransport) Handlers() interfaces.TransportHandlers {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.handlers
}

// PunchCalls 返回 AttemptHolePunch 调用次数
func (m *MockTransport) PunchCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.AttemptHolePunchCalls)
}

// RelayCalls 返回 EstablishRelay 调用次数
func (m *MockTransport) RelayCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.EstablishRelayCalls)
}

// ProbeCalls 返回 ProbeDirect 调用次数
func (m *MockTransport) ProbeCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ProbeDirectCalls)
}
