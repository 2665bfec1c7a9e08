package types

import "time"

// EvtPathChanged 路径状态变更事件
//
// 每次路径选择状态机发生转换时发出。To 为 PathStateDisconnected 时 Path 为 nil。
type EvtPathChanged struct {
	Peer PeerID
	From PathState
	To   PathState
	Path ActivePath
	At   time.Time
}

// EvtRelayDegraded 中继 RTT 越过阈值事件
type EvtRelayDegraded struct {
	Peer  PeerID
	RTTMs uint64
	At    time.Time
}

// EvtPunchCompleted 打洞尝试完成事件（结果已记入指标）
type EvtPunchCompleted struct {
	Record PunchAttemptRecord
}

// EvtPeerUnreachable 节点不可达事件
//
// 直连丢失且没有可回退的中继时发出。
type EvtPeerUnreachable struct {
	Peer PeerID
	At   time.Time
}
