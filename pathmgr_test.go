package pathmgr

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"

	pkgif "github.com/dep2p/go-pathmgr/pkg/interfaces"
	"github.com/dep2p/go-pathmgr/pkg/types"
	"github.com/dep2p/go-pathmgr/tests/mocks"
)

const (
	peerX PeerID = "peer-xxxxxxxxxxxx"
	peerY PeerID = "peer-yyyyyyyyyyyy"
)

func newTestManager(t *testing.T, opts ...Option) (*PathManager, *mocks.MockTransport, *clock.Mock) {
	t.Helper()
	tr := mocks.NewMockTransport()
	clk := clock.NewMock()

	pm, err := New(DefaultConfig(), append([]Option{WithTransport(tr), WithClock(clk)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pm.Stop() })
	return pm, tr, clk
}

func connectWithRTT(t *testing.T, pm *PathManager, tr *mocks.MockTransport, peer PeerID, rtt uint64) {
	t.Helper()
	tr.RelayRTTMs = rtt
	_, err := pm.Connect(context.Background(), peer)
	require.NoError(t, err)
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinPunchSuccessRate = 1.5

	_, err := New(cfg)
	assert.Error(t, err)

	_, err = New(DefaultConfig(), WithTransport(nil))
	assert.ErrorIs(t, err, ErrNilOption)
}

func TestNew_CopiesConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxRelayRTTMs = 120

	pm, err := New(cfg)
	require.NoError(t, err)
	defer pm.Stop()

	cfg.MaxRelayRTTMs = 999
	assert.Equal(t, uint64(120), pm.Config().MaxRelayRTTMs)
}

func TestConnect_WithoutTransport(t *testing.T) {
	pm, err := WithDefaults()
	require.NoError(t, err)
	defer pm.Stop()

	_, err = pm.Connect(context.Background(), peerX)
	var cerr *ConnectError
	require.ErrorAs(t, err, &cerr)
	assert.ErrorIs(t, err, ErrTransportUnavailable)
	assert.Equal(t, PathStateNone, pm.State(peerX))
}

// TestPathManager_FastRelayKept 中继足够快时不打洞
func TestPathManager_FastRelayKept(t *testing.T) {
	pm, tr, _ := newTestManager(t)
	connectWithRTT(t, pm, tr, peerX, 150)

	out := pm.MaybePunch(context.Background(), peerX)
	assert.Equal(t, types.OutcomeNotEligible, out.Result)
	assert.Equal(t, 0, tr.PunchCalls())

	p, ok := pm.CurrentPath(peerX)
	require.True(t, ok)
	assert.IsType(t, RelayHandle{}, p)
}

// TestPathManager_SlowRelayUpgraded 中继慢且历史良好时升级为直连
func TestPathManager_SlowRelayUpgraded(t *testing.T) {
	pm, tr, _ := newTestManager(t)
	connectWithRTT(t, pm, tr, peerX, 350)

	out := pm.MaybePunch(context.Background(), peerX)
	require.Equal(t, types.OutcomeSucceeded, out.Result, "err: %v", out.Err)

	p, ok := pm.CurrentPath(peerX)
	require.True(t, ok)
	direct, isDirect := p.(DirectHandle)
	require.True(t, isDirect)
	assert.Equal(t, peerX, direct.PeerID)

	snap := pm.Snapshot(peerX)
	assert.Equal(t, 1, snap.Peer.Successes)
	assert.Len(t, pm.Records(peerX), 1)
}

// TestPathManager_LowSuccessRateSkipped 全局成功率过低时新节点不打洞
func TestPathManager_LowSuccessRateSkipped(t *testing.T) {
	pm, tr, clk := newTestManager(t)
	tr.AttemptHolePunchFunc = func(context.Context, PeerID, RelayHandle) (DirectHandle, error) {
		return DirectHandle{}, errors.New("symmetric nat")
	}
	connectWithRTT(t, pm, tr, peerX, 350)

	for i := 0; i < 5; i++ {
		out := pm.MaybePunch(context.Background(), peerX)
		require.Equal(t, types.OutcomeFailed, out.Result)
		clk.Add(out.NextDelay)
	}

	connectWithRTT(t, pm, tr, peerY, 350)
	out := pm.MaybePunch(context.Background(), peerY)
	assert.Equal(t, types.OutcomeNotEligible, out.Result)
	assert.Equal(t, 5, tr.PunchCalls())
}

// TestPathManager_Backoff 失败后在退避期内不重试
func TestPathManager_Backoff(t *testing.T) {
	pm, tr, clk := newTestManager(t)
	tr.AttemptHolePunchFunc = func(context.Context, PeerID, RelayHandle) (DirectHandle, error) {
		return DirectHandle{}, errors.New("timeout")
	}
	connectWithRTT(t, pm, tr, peerX, 350)

	first := pm.MaybePunch(context.Background(), peerX)
	require.Equal(t, types.OutcomeFailed, first.Result)

	assert.Equal(t, types.OutcomeBackoff, pm.MaybePunch(context.Background(), peerX).Result)
	clk.Add(first.NextDelay)
	second := pm.MaybePunch(context.Background(), peerX)
	require.Equal(t, types.OutcomeFailed, second.Result)
	assert.Equal(t, 2*first.NextDelay, second.NextDelay)
}

// TestPathManager_FallbackAndDisconnect 直连丢失回退中继，断开后状态全部清理
func TestPathManager_FallbackAndDisconnect(t *testing.T) {
	pm, tr, _ := newTestManager(t)
	connectWithRTT(t, pm, tr, peerX, 350)
	require.Equal(t, types.OutcomeSucceeded, pm.MaybePunch(context.Background(), peerX).Result)

	pm.HandleDirectPathLost(peerX)
	p, ok := pm.CurrentPath(peerX)
	require.True(t, ok)
	assert.Equal(t, PathKindRelay, p.Kind())
	assert.Equal(t, 1, pm.Snapshot(peerX).Peer.Samples)

	pm.HandlePeerDisconnected(peerX)
	_, ok = pm.CurrentPath(peerX)
	assert.False(t, ok)
	assert.Equal(t, 0, pm.Snapshot(peerX).Peer.Samples)
	assert.Equal(t, 1, pm.Snapshot(peerX).Global.Samples, "全局统计保留")
}

func TestPathManager_RelayLostCleansUp(t *testing.T) {
	pm, tr, _ := newTestManager(t)
	connectWithRTT(t, pm, tr, peerX, 350)

	sub, err := pm.Subscribe(new(types.EvtPeerUnreachable))
	require.NoError(t, err)

	pm.HandleRelayLost(peerX)
	assert.Equal(t, PathStateNone, pm.State(peerX))

	select {
	case e := <-sub.Out():
		assert.Equal(t, peerX, e.(types.EvtPeerUnreachable).Peer)
	case <-time.After(time.Second):
		t.Fatal("未收到不可达事件")
	}
}

// liveHookSelector 在首次 IsLive 时执行 hook，用于在结果处理中途插入并发事件
type liveHookSelector struct {
	pkgif.PathSelector
	armed atomic.Bool
	hook  func()
}

func (s *liveHookSelector) IsLive(peer PeerID) bool {
	if s.armed.CompareAndSwap(true, false) {
		s.hook()
	}
	return s.PathSelector.IsLive(peer)
}

// TestPathManager_RelayLostDuringOutcome 结果处理期间中继断开，指标与结果保持一致
func TestPathManager_RelayLostDuringOutcome(t *testing.T) {
	var pm *PathManager
	lost := make(chan struct{})
	sel := &liveHookSelector{}
	sel.hook = func() {
		go func() {
			pm.HandleRelayLost(peerX)
			close(lost)
		}()
		// 给并发的中继断开处理足够时间抢先执行
		time.Sleep(50 * time.Millisecond)
	}

	pm, tr, _ := newTestManager(t, WithFxOptions(fx.Decorate(func(s pkgif.PathSelector) pkgif.PathSelector {
		sel.PathSelector = s
		return sel
	})))
	connectWithRTT(t, pm, tr, peerX, 350)

	sel.armed.Store(true)
	out := pm.MaybePunch(context.Background(), peerX)

	select {
	case <-lost:
	case <-time.After(2 * time.Second):
		t.Fatal("中继断开处理未完成")
	}

	// 中继断开等待结果处理完成：打洞成功并提升，随后只丢弃回退中继
	require.Equal(t, types.OutcomeSucceeded, out.Result, "err: %v", out.Err)
	assert.Equal(t, PathStateDirect, pm.State(peerX))
	snap := pm.Snapshot(peerX)
	assert.Equal(t, 1, snap.Peer.Samples)
	assert.Equal(t, 1, snap.Global.Samples)
}

// TestPathManager_TransportNotifier 传输层推送的 RTT 触发自动打洞
func TestPathManager_TransportNotifier(t *testing.T) {
	pm, tr, _ := newTestManager(t)
	connectWithRTT(t, pm, tr, peerX, 120)
	require.NoError(t, pm.Start(context.Background()))

	changed, err := pm.Subscribe(new(types.EvtPathChanged))
	require.NoError(t, err)

	h := tr.Handlers()
	require.NotNil(t, h.OnRTTSample)
	h.OnRTTSample(peerX, PathKindRelay, 380)

	select {
	case e := <-changed.Out():
		evt := e.(types.EvtPathChanged)
		assert.Equal(t, PathStateRelayed, evt.From)
		assert.Equal(t, PathStateDirect, evt.To)
	case <-time.After(2 * time.Second):
		t.Fatal("未自动升级为直连")
	}

	h.OnPeerDisconnected(peerX)
	assert.Equal(t, PathStateNone, pm.State(peerX))

	require.NoError(t, pm.Stop())
	assert.Nil(t, tr.Handlers().OnRTTSample, "停止后注销回调")
}

// TestPathManager_Trigger 启动前建立的慢中继由 Trigger 驱动升级
func TestPathManager_Trigger(t *testing.T) {
	pm, tr, _ := newTestManager(t)
	connectWithRTT(t, pm, tr, peerX, 350)
	require.NoError(t, pm.Start(context.Background()))
	assert.Equal(t, 0, tr.PunchCalls())

	pm.Trigger(peerX)
	require.Eventually(t, func() bool { return pm.State(peerX) == PathStateDirect }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, tr.PunchCalls())
}

func TestPathManager_Lifecycle(t *testing.T) {
	pm, _, _ := newTestManager(t)

	require.NoError(t, pm.Start(context.Background()))
	assert.ErrorIs(t, pm.Start(context.Background()), ErrAlreadyStarted)
	require.NoError(t, pm.Stop())
	require.NoError(t, pm.Stop())
	assert.ErrorIs(t, pm.Start(context.Background()), ErrClosed)

	_, err := pm.Subscribe(new(types.EvtPathChanged))
	assert.ErrorIs(t, err, ErrClosed)
}

func TestPathManager_Registerer(t *testing.T) {
	reg := prometheus.NewRegistry()
	pm, tr, _ := newTestManager(t, WithRegisterer(reg))
	connectWithRTT(t, pm, tr, peerX, 350)
	require.Equal(t, types.OutcomeSucceeded, pm.MaybePunch(context.Background(), peerX).Result)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	assert.True(t, names["pathmgr_punch_attempts_total"])
	assert.True(t, names["pathmgr_path_transitions_total"])
	assert.True(t, names["pathmgr_punch_in_flight"])
	assert.True(t, names["pathmgr_events_dropped_total"])

	for _, mf := range families {
		if mf.GetName() == "pathmgr_tracked_peers" {
			require.Len(t, mf.GetMetric(), 1)
			assert.Equal(t, 1.0, mf.GetMetric()[0].GetGauge().GetValue())
		}
	}
	assert.True(t, names["pathmgr_tracked_peers"])
}

func TestConfigFromJSON(t *testing.T) {
	cfg, err := ConfigFromJSON([]byte(`{"max_relay_rtt_ms": 150}`))
	require.NoError(t, err)
	assert.Equal(t, uint64(150), cfg.MaxRelayRTTMs)
	assert.Equal(t, DefaultConfig().MinPunchSuccessRate, cfg.MinPunchSuccessRate)

	_, err = ConfigFromJSON([]byte(`{"punch_backoff_multiplier": 0.5}`))
	assert.Error(t, err)
}
