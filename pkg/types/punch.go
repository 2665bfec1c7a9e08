package types

import "time"

// PunchAttemptRecord 单次打洞尝试记录
//
// 每个 Peer 追加写入，由指标模块以有界滚动窗口保存。
type PunchAttemptRecord struct {
	// ID 尝试标识（UUID），用于日志关联
	ID string

	PeerID    PeerID
	Timestamp time.Time
	Success   bool

	// LatencyMs 打洞耗时，仅当 HasLatency 为 true 时有效
	LatencyMs  uint64
	HasLatency bool
}

// OutcomeKind 打洞结果类型
type OutcomeKind int

const (
	// OutcomeNoPath 节点没有当前路径
	OutcomeNoPath OutcomeKind = iota
	// OutcomeNotEligible 启发式判定无需打洞
	OutcomeNotEligible
	// OutcomeBackoff 处于退避期
	OutcomeBackoff
	// OutcomeInFlight 已有进行中的尝试
	OutcomeInFlight
	// OutcomeSaturated 全局并发或速率已满
	OutcomeSaturated
	// OutcomeSucceeded 打洞成功并已提升为直连
	OutcomeSucceeded
	// OutcomeFailed 打洞失败（含超时）
	OutcomeFailed
	// OutcomeDiscarded 尝试完成时节点已断开，结果被丢弃
	OutcomeDiscarded
)

// String 返回结果字符串
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeNoPath:
		return "no_path"
	case OutcomeNotEligible:
		return "not_eligible"
	case OutcomeBackoff:
		return "backoff"
	case OutcomeInFlight:
		return "in_flight"
	case OutcomeSaturated:
		return "saturated"
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeFailed:
		return "failed"
	case OutcomeDiscarded:
		return "discarded"
	default:
		return "unknown"
	}
}

// Attempted 是否真正调用了打洞
func (k OutcomeKind) Attempted() bool {
	return k == OutcomeSucceeded || k == OutcomeFailed || k == OutcomeDiscarded
}

// PunchOutcome 一次 MaybePunch 的结果
type PunchOutcome struct {
	Peer   PeerID
	Result OutcomeKind

	// AttemptID 实际发起尝试时的记录 ID
	AttemptID string

	// Direct 成功时的直连句柄
	Direct *DirectHandle

	// Err 失败原因（*PunchError）
	Err error

	// NextDelay 失败后的退避时长；或处于退避时的剩余等待
	NextDelay time.Duration
}
