package heuristics

import (
	"time"

	"github.com/dep2p/go-pathmgr/config"
	"github.com/dep2p/go-pathmgr/pkg/types"
)

// MinConfidenceSamples 成功率规则生效所需的最少样本数
const MinConfidenceSamples = 5

// Reason 判定原因
type Reason int

const (
	// ReasonNoPath 没有当前路径
	ReasonNoPath Reason = iota
	// ReasonAlreadyDirect 已是直连
	ReasonAlreadyDirect
	// ReasonRelayFastEnough 中继 RTT 未超过门限
	ReasonRelayFastEnough
	// ReasonLowSuccessRate 历史成功率过低
	ReasonLowSuccessRate
	// ReasonEligible 满足打洞条件
	ReasonEligible
)

// String 返回原因字符串
func (r Reason) String() string {
	switch r {
	case ReasonNoPath:
		return "no_path"
	case ReasonAlreadyDirect:
		return "already_direct"
	case ReasonRelayFastEnough:
		return "relay_fast_enough"
	case ReasonLowSuccessRate:
		return "low_success_rate"
	case ReasonEligible:
		return "eligible"
	default:
		return "unknown"
	}
}

// Decision 判定结果
type Decision struct {
	Attempt bool
	Reason  Reason

	// Evidence 参与成功率规则的统计（Peer 或全局）
	Evidence types.SuccessStats
	// GlobalFallback Evidence 是否来自全局统计
	GlobalFallback bool
}

// ShouldAttemptPunch 判断是否应对 peer 发起打洞
func ShouldAttemptPunch(peer types.PeerID, current types.ActivePath, snap types.MetricsSnapshot, cfg *config.Config) bool {
	return Evaluate(peer, current, snap, cfg).Attempt
}

// Evaluate 判断是否应对 peer 发起打洞，并给出原因
func Evaluate(_ types.PeerID, current types.ActivePath, snap types.MetricsSnapshot, cfg *config.Config) Decision {
	if cfg == nil {
		def := config.DefaultConfig()
		cfg = &def
	}

	var relay types.RelayHandle
	switch p := current.(type) {
	case types.RelayHandle:
		relay = p
	case types.DirectHandle:
		return Decision{Reason: ReasonAlreadyDirect}
	default:
		return Decision{Reason: ReasonNoPath}
	}

	if relay.RTTMs <= cfg.MaxRelayRTTMs {
		return Decision{Reason: ReasonRelayFastEnough}
	}

	evidence, fallback := evidenceFor(snap)
	d := Decision{Evidence: evidence, GlobalFallback: fallback}

	if evidence.Samples >= MinConfidenceSamples {
		if rate, ok := evidence.Rate(); ok && rate < cfg.MinPunchSuccessRate {
			d.Reason = ReasonLowSuccessRate
			return d
		}
	}

	d.Attempt = true
	d.Reason = ReasonEligible
	return d
}

// evidenceFor 选择成功率依据：Peer 有样本时用 Peer，否则用全局
func evidenceFor(snap types.MetricsSnapshot) (types.SuccessStats, bool) {
	if snap.Peer.Samples > 0 {
		return snap.Peer, false
	}
	return snap.Global, true
}

// AttemptTimeout 根据历史打洞耗时计算本次超时
//
// 有成功耗时样本时取 EWMA 的 3 倍，限制在 [base/4, max]；否则返回 base。
func AttemptTimeout(snap types.MetricsSnapshot, base, max time.Duration) time.Duration {
	if max < base {
		max = base
	}
	if !snap.PunchLatency.Known() {
		return base
	}

	timeout := 3 * snap.PunchLatency.Duration()
	if min := base / 4; timeout < min {
		timeout = min
	}
	if timeout > max {
		timeout = max
	}
	return timeout
}
