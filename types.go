package pathmgr

import (
	"github.com/dep2p/go-pathmgr/pkg/interfaces"
	"github.com/dep2p/go-pathmgr/pkg/types"
)

// ════════════════════════════════════════════════════════════════════════════
//                              类型别名
// ════════════════════════════════════════════════════════════════════════════

type (
	// PeerID 节点标识
	PeerID = types.PeerID

	// ActivePath 当前生效路径（RelayHandle 或 DirectHandle）
	ActivePath = types.ActivePath

	// RelayHandle 中继句柄
	RelayHandle = types.RelayHandle

	// DirectHandle 直连句柄
	DirectHandle = types.DirectHandle

	// PathKind 路径类型
	PathKind = types.PathKind

	// PathState 路径状态
	PathState = types.PathState

	// PunchOutcome 打洞结果
	PunchOutcome = types.PunchOutcome

	// PunchAttemptRecord 打洞尝试记录
	PunchAttemptRecord = types.PunchAttemptRecord

	// MetricsSnapshot 指标快照
	MetricsSnapshot = types.MetricsSnapshot

	// ConnectError 中继建立失败
	ConnectError = types.ConnectError

	// PunchError 打洞失败
	PunchError = types.PunchError

	// Transport 传输层
	Transport = interfaces.Transport

	// Subscription 事件订阅
	Subscription = interfaces.Subscription
)

// 路径类型
const (
	PathKindRelay  = types.PathKindRelay
	PathKindDirect = types.PathKindDirect
)

// 路径状态
const (
	PathStateNone         = types.PathStateNone
	PathStateRelayed      = types.PathStateRelayed
	PathStateDirect       = types.PathStateDirect
	PathStateDisconnected = types.PathStateDisconnected
)
