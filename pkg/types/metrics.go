package types

import "time"

// SuccessStats 打洞成功率统计
//
// 样本数为 0 时成功率未定义（不是 0），调用方必须区分“无数据”与“全部失败”。
type SuccessStats struct {
	Samples   int
	Successes int
}

// Rate 返回成功率；ok 为 false 表示没有样本
func (s SuccessStats) Rate() (rate float64, ok bool) {
	if s.Samples <= 0 {
		return 0, false
	}
	return float64(s.Successes) / float64(s.Samples), true
}

// Failures 返回失败次数
func (s SuccessStats) Failures() int {
	return s.Samples - s.Successes
}

// EWMA 指数滑动平均值
type EWMA struct {
	Value   float64
	Samples int64
}

// Known 是否有采样
func (e EWMA) Known() bool {
	return e.Samples > 0
}

// Duration 以毫秒值解释并转换为 time.Duration
func (e EWMA) Duration() time.Duration {
	return time.Duration(e.Value * float64(time.Millisecond))
}

// MetricsSnapshot 指标快照
//
// 按需计算，供启发式判断使用的只读值。
type MetricsSnapshot struct {
	Peer   SuccessStats
	Global SuccessStats

	// RelayRTT / DirectRTT 按路径类型的 RTT 平滑值（毫秒）
	RelayRTT  EWMA
	DirectRTT EWMA

	// PunchLatency 成功打洞耗时的平滑值（毫秒）
	PunchLatency EWMA

	// LastAttempt 最近一次尝试时间（零值表示没有）
	LastAttempt time.Time
}
