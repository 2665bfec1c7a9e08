// Package interfaces 定义 pathmgr 公共接口
//
// 本文件定义打洞编排接口。
package interfaces

import (
	"context"

	"github.com/dep2p/go-pathmgr/pkg/types"
)

// PunchOrchestrator 打洞编排器
//
// 同一 Peer 的打洞严格串行（至多一个进行中），全局并发有上限。
type PunchOrchestrator interface {
	// MaybePunch 评估并在符合条件时执行一次打洞，阻塞直到结果产生
	MaybePunch(ctx context.Context, peer types.PeerID) types.PunchOutcome

	// PunchAsync 异步执行 MaybePunch，结果通过通道返回
	PunchAsync(ctx context.Context, peer types.PeerID) <-chan types.PunchOutcome

	// Trigger 请求尽快评估 peer（事件驱动）
	Trigger(peer types.PeerID)

	// RemovePeer 删除 peer 的打洞状态，进行中的尝试结果将被丢弃
	RemovePeer(peer types.PeerID)

	// Start 启动调度循环
	Start(ctx context.Context) error

	// Stop 停止调度循环并等待进行中的任务
	Stop() error
}
