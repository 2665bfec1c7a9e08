// Package interfaces 定义 pathmgr 公共接口
//
// 本文件定义打洞指标与学习接口。
package interfaces

import (
	"time"

	"github.com/dep2p/go-pathmgr/pkg/types"
)

// PunchMetrics 打洞结果与 RTT 的滚动统计
//
// 每个 Peer 保存有界窗口，窗口满时写入会淘汰最旧的记录。
type PunchMetrics interface {
	// RecordAttempt 记录一次打洞尝试结果
	RecordAttempt(rec types.PunchAttemptRecord)

	// RecordRTT 记录一次 RTT 采样
	RecordRTT(peer types.PeerID, kind types.PathKind, rttMs uint64)

	// Snapshot 计算 peer 的指标快照（含全局聚合）
	Snapshot(peer types.PeerID) types.MetricsSnapshot

	// Records 返回 peer 窗口内的记录（由旧到新）
	Records(peer types.PeerID) []types.PunchAttemptRecord

	// RemovePeer 删除 peer 的全部统计（全局聚合保留）
	RemovePeer(peer types.PeerID)
}

// PunchInstrumentation 打洞编排的运行时观测点
type PunchInstrumentation interface {
	InFlightInc()
	InFlightDec()
	ObserveBackoff(delay time.Duration)
	ObserveOutcome(kind types.OutcomeKind)
}

// PathInstrumentation 路径选择的运行时观测点
type PathInstrumentation interface {
	ObserveTransition(from, to types.PathState)
}
