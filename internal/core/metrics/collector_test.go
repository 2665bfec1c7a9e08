package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-pathmgr/pkg/types"
)

func TestCollector_Register(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	require.NoError(t, err)

	c.ObserveAttempt(types.PunchAttemptRecord{Success: true, LatencyMs: 120, HasLatency: true})
	c.ObserveAttempt(types.PunchAttemptRecord{Success: false})
	c.ObserveAttempt(types.PunchAttemptRecord{Success: false})

	assert.Equal(t, 1.0, testutil.ToFloat64(c.attempts.WithLabelValues("success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.attempts.WithLabelValues("failure")))

	n, err := testutil.GatherAndCount(reg, "pathmgr_punch_latency_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// 重复注册失败
	_, err = NewCollector(reg)
	assert.Error(t, err)
}

func TestCollector_Gauges(t *testing.T) {
	c, err := NewCollector(nil)
	require.NoError(t, err)

	c.InFlightInc()
	c.InFlightInc()
	c.InFlightDec()
	assert.Equal(t, 1.0, testutil.ToFloat64(c.inFlight))

	c.ObserveTransition(types.PathStateRelayed, types.PathStateDirect)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.transitions.WithLabelValues("relayed", "direct")))

	c.ObserveOutcome(types.OutcomeSaturated)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.outcomes.WithLabelValues("saturated")))

	c.ObserveBackoff(5 * time.Second)
	assert.Equal(t, 1, testutil.CollectAndCount(c.backoff))
}

// staticDrops 固定返回丢弃数的 DropCounter
type staticDrops map[string]int64

func (d staticDrops) Dropped(eventType any) int64 {
	switch eventType.(type) {
	case *types.EvtPathChanged:
		return d["path_changed"]
	case *types.EvtPeerUnreachable:
		return d["peer_unreachable"]
	}
	return 0
}

func TestCollector_Watch(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	require.NoError(t, err)
	store, err := NewStore(DefaultConfig(), c)
	require.NoError(t, err)

	require.NoError(t, c.Watch(store, staticDrops{"path_changed": 3, "peer_unreachable": 1}))

	store.RecordAttempt(types.PunchAttemptRecord{PeerID: "a", Success: true})
	store.RecordAttempt(types.PunchAttemptRecord{PeerID: "b", Success: false})
	assert.Equal(t, 2.0, testutil.ToFloat64(c.trackedPeers))

	store.RemovePeer("a")
	assert.Equal(t, 1.0, testutil.ToFloat64(c.trackedPeers))

	require.Len(t, c.dropped, len(droppedEvents))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.dropped[0]))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.dropped[1]))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.dropped[3]))

	n, err := testutil.GatherAndCount(reg, "pathmgr_events_dropped_total")
	require.NoError(t, err)
	assert.Equal(t, len(droppedEvents), n)

	// 未提供总线时只导出 Peer 数
	c2, err := NewCollector(nil)
	require.NoError(t, err)
	require.NoError(t, c2.Watch(store, nil))
	assert.Empty(t, c2.dropped)
	assert.Equal(t, 1.0, testutil.ToFloat64(c2.trackedPeers))
}

func TestCollector_NilSafe(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.ObserveAttempt(types.PunchAttemptRecord{Success: true})
		c.InFlightInc()
		c.InFlightDec()
		c.ObserveBackoff(time.Second)
		c.ObserveOutcome(types.OutcomeFailed)
		c.ObserveTransition(types.PathStateNone, types.PathStateRelayed)
	})
}

func TestStore_FeedsCollector(t *testing.T) {
	c, err := NewCollector(nil)
	require.NoError(t, err)
	s, err := NewStore(DefaultConfig(), c)
	require.NoError(t, err)

	s.RecordAttempt(types.PunchAttemptRecord{PeerID: "p", Success: true})
	assert.Equal(t, 1.0, testutil.ToFloat64(c.attempts.WithLabelValues("success")))
}
