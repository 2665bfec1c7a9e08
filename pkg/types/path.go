package types

import "fmt"

// ============================================================================
//                              PathKind
// ============================================================================

// PathKind 路径类型
type PathKind int

const (
	// PathKindRelay 经中继转发的路径
	PathKindRelay PathKind = iota
	// PathKindDirect 打洞后的直连路径
	PathKindDirect
)

// String 返回路径类型字符串
func (k PathKind) String() string {
	switch k {
	case PathKindRelay:
		return "relay"
	case PathKindDirect:
		return "direct"
	default:
		return "unknown"
	}
}

// ============================================================================
//                              ActivePath
// ============================================================================

// ActivePath 当前生效路径
//
// 封闭接口：只有 RelayHandle 与 DirectHandle 实现它。
// 每个 Peer 在任意时刻至多有一个权威的 ActivePath，由路径选择模块独占持有。
type ActivePath interface {
	// Kind 返回路径类型
	Kind() PathKind

	// Peer 返回远端节点
	Peer() PeerID

	// RTT 返回最近一次 RTT 采样（毫秒）
	RTT() uint64

	fmt.Stringer

	activePath()
}

// RelayHandle 中继连接句柄
//
// RTTMs 是时间点采样值，测量后整体替换，不做原地平均。
type RelayHandle struct {
	PeerID      PeerID
	RelayPeerID PeerID
	RTTMs       uint64
}

// Kind 实现 ActivePath
func (h RelayHandle) Kind() PathKind { return PathKindRelay }

// Peer 实现 ActivePath
func (h RelayHandle) Peer() PeerID { return h.PeerID }

// RTT 实现 ActivePath
func (h RelayHandle) RTT() uint64 { return h.RTTMs }

func (h RelayHandle) String() string {
	return fmt.Sprintf("relay(%s via %s, %dms)", h.PeerID.ShortString(), h.RelayPeerID.ShortString(), h.RTTMs)
}

func (RelayHandle) activePath() {}

// DirectHandle 直连句柄
//
// Endpoint 为不透明的地址字符串。
type DirectHandle struct {
	PeerID   PeerID
	RTTMs    uint64
	Endpoint string
}

// Kind 实现 ActivePath
func (h DirectHandle) Kind() PathKind { return PathKindDirect }

// Peer 实现 ActivePath
func (h DirectHandle) Peer() PeerID { return h.PeerID }

// RTT 实现 ActivePath
func (h DirectHandle) RTT() uint64 { return h.RTTMs }

func (h DirectHandle) String() string {
	return fmt.Sprintf("direct(%s @ %s, %dms)", h.PeerID.ShortString(), h.Endpoint, h.RTTMs)
}

func (DirectHandle) activePath() {}

// 确保实现接口
var (
	_ ActivePath = RelayHandle{}
	_ ActivePath = DirectHandle{}
)

// ============================================================================
//                              PathState
// ============================================================================

// PathState 路径选择状态机状态
type PathState int

const (
	// PathStateNone 未知节点
	PathStateNone PathState = iota
	// PathStateRelayed 经中继连接
	PathStateRelayed
	// PathStateDirect 直连
	PathStateDirect
	// PathStateDisconnected 已断开（终态，所有状态已移除）
	PathStateDisconnected
)

// String 返回状态字符串
func (s PathState) String() string {
	switch s {
	case PathStateNone:
		return "none"
	case PathStateRelayed:
		return "relayed"
	case PathStateDirect:
		return "direct"
	case PathStateDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// IsConnected 是否存在可用路径
func (s PathState) IsConnected() bool {
	return s == PathStateRelayed || s == PathStateDirect
}
