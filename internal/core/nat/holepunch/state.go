package holepunch

import (
	"sync"
	"time"
)

// punchPhase 单个 Peer 的打洞阶段
type punchPhase int

const (
	phaseIdle punchPhase = iota
	phaseScheduled
	phaseInFlight
)

func (p punchPhase) String() string {
	switch p {
	case phaseIdle:
		return "idle"
	case phaseScheduled:
		return "scheduled"
	case phaseInFlight:
		return "in_flight"
	default:
		return "unknown"
	}
}

// peerPunchState 单个 Peer 的打洞状态
//
// 首次判定需要打洞时创建。
type peerPunchState struct {
	mu sync.Mutex

	phase    punchPhase
	failures int

	// delay 最近一次施加的退避
	delay        time.Duration
	nextEligible time.Time
	lastActivity time.Time

	// removed 已从状态表删除，进行中的结果必须丢弃
	removed bool
}

// nextDelay 计算失败后的退避
func (s *peerPunchState) nextDelay(base, max time.Duration, multiplier float64) time.Duration {
	if s.failures == 0 || s.delay <= 0 {
		return base
	}
	next := time.Duration(float64(s.delay) * multiplier)
	if next > max || next <= 0 {
		next = max
	}
	return next
}

// reset 成功后复位退避
func (s *peerPunchState) reset() {
	s.failures = 0
	s.delay = 0
	s.nextEligible = time.Time{}
}
