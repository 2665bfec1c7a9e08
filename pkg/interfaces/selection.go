// Package interfaces 定义 pathmgr 公共接口
//
// 本文件定义路径选择接口。
package interfaces

import (
	"context"

	"github.com/dep2p/go-pathmgr/pkg/types"
)

// PathSelector 路径选择状态机
//
// 每个 Peer 持有唯一权威的 ActivePath。读操作可与状态转换并发执行，
// 返回一致的值拷贝。
type PathSelector interface {
	// CurrentPath 返回当前路径
	CurrentPath(peer types.PeerID) (types.ActivePath, bool)

	// State 返回当前状态
	State(peer types.PeerID) types.PathState

	// IsLive 节点是否仍被跟踪
	IsLive(peer types.PeerID) bool

	// RelayedPeers 返回处于 Relayed 状态的节点
	RelayedPeers() []types.PeerID

	// OnRelayEstablished 中继已建立（none → Relayed，或刷新中继句柄）
	OnRelayEstablished(relay types.RelayHandle)

	// Validate 在切换前验证直连句柄，不改变状态
	Validate(ctx context.Context, direct types.DirectHandle) error

	// Promote Relayed → Direct，中继句柄保留用于回退
	Promote(direct types.DirectHandle) error

	// OnDirectPathLost Direct → Relayed；没有中继时节点不可达
	OnDirectPathLost(peer types.PeerID)

	// OnRelayLost 中继断开
	OnRelayLost(peer types.PeerID)

	// UpdateRTT 刷新对应路径的 RTT 采样
	UpdateRTT(peer types.PeerID, kind types.PathKind, rttMs uint64)

	// Remove 移除节点全部状态（→ Disconnected）
	Remove(peer types.PeerID)
}
