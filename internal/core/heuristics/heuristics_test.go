package heuristics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dep2p/go-pathmgr/config"
	"github.com/dep2p/go-pathmgr/pkg/types"
)

func relay(rtt uint64) types.ActivePath {
	return types.RelayHandle{PeerID: "p", RelayPeerID: "r", RTTMs: rtt}
}

func stats(samples, successes int) types.SuccessStats {
	return types.SuccessStats{Samples: samples, Successes: successes}
}

func TestShouldAttemptPunch(t *testing.T) {
	cfg := config.DefaultConfig()

	tests := []struct {
		name    string
		current types.ActivePath
		snap    types.MetricsSnapshot
		want    bool
		reason  Reason
	}{
		{
			name:   "没有路径",
			want:   false,
			reason: ReasonNoPath,
		},
		{
			name:    "已是直连",
			current: types.DirectHandle{PeerID: "p", RTTMs: 500},
			want:    false,
			reason:  ReasonAlreadyDirect,
		},
		{
			name:    "中继足够快",
			current: relay(150),
			want:    false,
			reason:  ReasonRelayFastEnough,
		},
		{
			name:    "RTT 等于门限",
			current: relay(200),
			want:    false,
			reason:  ReasonRelayFastEnough,
		},
		{
			name:    "中继慢且成功率高",
			current: relay(350),
			snap:    types.MetricsSnapshot{Peer: stats(10, 6)},
			want:    true,
			reason:  ReasonEligible,
		},
		{
			name:    "中继慢但成功率低",
			current: relay(350),
			snap:    types.MetricsSnapshot{Peer: stats(10, 1)},
			want:    false,
			reason:  ReasonLowSuccessRate,
		},
		{
			name:    "冷启动",
			current: relay(350),
			want:    true,
			reason:  ReasonEligible,
		},
		{
			name:    "样本不足不拒绝",
			current: relay(350),
			snap:    types.MetricsSnapshot{Peer: stats(4, 0)},
			want:    true,
			reason:  ReasonEligible,
		},
		{
			name:    "样本刚好足够",
			current: relay(350),
			snap:    types.MetricsSnapshot{Peer: stats(5, 1)},
			want:    false,
			reason:  ReasonLowSuccessRate,
		},
		{
			name:    "回退到全局成功率",
			current: relay(350),
			snap:    types.MetricsSnapshot{Global: stats(100, 10)},
			want:    false,
			reason:  ReasonLowSuccessRate,
		},
		{
			name:    "Peer 有样本时忽略全局",
			current: relay(350),
			snap:    types.MetricsSnapshot{Peer: stats(2, 2), Global: stats(100, 10)},
			want:    true,
			reason:  ReasonEligible,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ShouldAttemptPunch("p", tt.current, tt.snap, &cfg)
			assert.Equal(t, tt.want, got)

			d := Evaluate("p", tt.current, tt.snap, &cfg)
			assert.Equal(t, tt.want, d.Attempt)
			assert.Equal(t, tt.reason, d.Reason)
		})
	}
}

func TestEvaluate_GlobalFallbackFlag(t *testing.T) {
	cfg := config.DefaultConfig()

	d := Evaluate("p", relay(350), types.MetricsSnapshot{Global: stats(3, 1)}, &cfg)
	assert.True(t, d.GlobalFallback)
	assert.Equal(t, 3, d.Evidence.Samples)

	d = Evaluate("p", relay(350), types.MetricsSnapshot{Peer: stats(1, 1)}, &cfg)
	assert.False(t, d.GlobalFallback)
}

func TestShouldAttemptPunch_Pure(t *testing.T) {
	cfg := config.DefaultConfig()
	snap := types.MetricsSnapshot{Peer: stats(10, 5), Global: stats(50, 20)}
	before := cfg

	first := ShouldAttemptPunch("p", relay(400), snap, &cfg)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ShouldAttemptPunch("p", relay(400), snap, &cfg))
	}
	assert.Equal(t, before, cfg)
}

func TestShouldAttemptPunch_CustomThresholds(t *testing.T) {
	cfg := config.Config{MaxRelayRTTMs: 50, MinPunchSuccessRate: 0.9, PunchBackoffMultiplier: 2}

	assert.True(t, ShouldAttemptPunch("p", relay(60), types.MetricsSnapshot{}, &cfg))
	assert.False(t, ShouldAttemptPunch("p", relay(60), types.MetricsSnapshot{Peer: stats(10, 8)}, &cfg))
	assert.True(t, ShouldAttemptPunch("p", relay(60), types.MetricsSnapshot{Peer: stats(10, 9)}, &cfg))
}

func TestShouldAttemptPunch_NilConfig(t *testing.T) {
	assert.True(t, ShouldAttemptPunch("p", relay(201), types.MetricsSnapshot{}, nil))
	assert.False(t, ShouldAttemptPunch("p", relay(200), types.MetricsSnapshot{}, nil))
}

func TestAttemptTimeout(t *testing.T) {
	base, max := 15*time.Second, 30*time.Second

	assert.Equal(t, base, AttemptTimeout(types.MetricsSnapshot{}, base, max))

	snap := types.MetricsSnapshot{PunchLatency: types.EWMA{Value: 2000, Samples: 3}}
	assert.Equal(t, 6*time.Second, AttemptTimeout(snap, base, max))

	snap.PunchLatency.Value = 100
	assert.Equal(t, base/4, AttemptTimeout(snap, base, max))

	snap.PunchLatency.Value = 20000
	assert.Equal(t, max, AttemptTimeout(snap, base, max))
}
