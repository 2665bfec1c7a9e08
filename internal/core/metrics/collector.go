package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	pkgif "github.com/dep2p/go-pathmgr/pkg/interfaces"
	"github.com/dep2p/go-pathmgr/pkg/types"
)

const namespace = "pathmgr"

// Collector Prometheus 指标导出
//
// 所有方法对 nil 接收者安全，未启用导出时调用方无需判断。
type Collector struct {
	attempts    *prometheus.CounterVec
	outcomes    *prometheus.CounterVec
	inFlight    prometheus.Gauge
	latency     prometheus.Histogram
	backoff     prometheus.Histogram
	transitions *prometheus.CounterVec

	reg          prometheus.Registerer
	trackedPeers prometheus.GaugeFunc
	dropped      []prometheus.CounterFunc
}

var (
	_ pkgif.PunchInstrumentation = (*Collector)(nil)
	_ pkgif.PathInstrumentation  = (*Collector)(nil)
)

// NewCollector 创建并注册指标，reg 为 nil 时只创建不注册
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "punch_attempts_total",
			Help:      "Hole punch attempts by result.",
		}, []string{"result"}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "punch_outcomes_total",
			Help:      "MaybePunch outcomes by kind.",
		}, []string{"outcome"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "punch_in_flight",
			Help:      "Hole punch attempts currently in flight.",
		}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "punch_latency_seconds",
			Help:      "Latency of successful hole punches.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		backoff: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "punch_backoff_seconds",
			Help:      "Backoff delays scheduled after failed punches.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "path_transitions_total",
			Help:      "Path state transitions.",
		}, []string{"from", "to"}),
		reg: reg,
	}

	if reg != nil {
		for _, col := range []prometheus.Collector{
			c.attempts, c.outcomes, c.inFlight, c.latency, c.backoff, c.transitions,
		} {
			if err := reg.Register(col); err != nil {
				return nil, err
			}
		}
	}
	return c, nil
}

// 导出丢弃计数的事件类型
var droppedEvents = []struct {
	name string
	typ  any
}{
	{"path_changed", new(types.EvtPathChanged)},
	{"relay_degraded", new(types.EvtRelayDegraded)},
	{"punch_completed", new(types.EvtPunchCompleted)},
	{"peer_unreachable", new(types.EvtPeerUnreachable)},
}

// Watch 导出 Store 跟踪的 Peer 数与事件总线丢弃数
//
// bus 为 nil 时只导出 Peer 数。
func (c *Collector) Watch(store *Store, bus pkgif.DropCounter) error {
	if c == nil {
		return nil
	}

	cols := make([]prometheus.Collector, 0, 1+len(droppedEvents))
	if store != nil {
		c.trackedPeers = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tracked_peers",
			Help:      "Peers with punch statistics in memory.",
		}, func() float64 { return float64(store.TrackedPeers()) })
		cols = append(cols, c.trackedPeers)
	}
	if bus != nil {
		for _, ev := range droppedEvents {
			typ := ev.typ
			cf := prometheus.NewCounterFunc(prometheus.CounterOpts{
				Namespace:   namespace,
				Name:        "events_dropped_total",
				Help:        "Events dropped because a subscriber was too slow.",
				ConstLabels: prometheus.Labels{"event": ev.name},
			}, func() float64 { return float64(bus.Dropped(typ)) })
			c.dropped = append(c.dropped, cf)
			cols = append(cols, cf)
		}
	}

	if c.reg == nil {
		return nil
	}
	for _, col := range cols {
		if err := c.reg.Register(col); err != nil {
			return err
		}
	}
	return nil
}

// ObserveAttempt 记录一次打洞尝试
func (c *Collector) ObserveAttempt(rec types.PunchAttemptRecord) {
	if c == nil {
		return
	}
	result := "failure"
	if rec.Success {
		result = "success"
		if rec.HasLatency {
			c.latency.Observe((time.Duration(rec.LatencyMs) * time.Millisecond).Seconds())
		}
	}
	c.attempts.WithLabelValues(result).Inc()
}

// InFlightInc 进行中的尝试 +1
func (c *Collector) InFlightInc() {
	if c == nil {
		return
	}
	c.inFlight.Inc()
}

// InFlightDec 进行中的尝试 -1
func (c *Collector) InFlightDec() {
	if c == nil {
		return
	}
	c.inFlight.Dec()
}

// ObserveBackoff 记录退避时长
func (c *Collector) ObserveBackoff(delay time.Duration) {
	if c == nil {
		return
	}
	c.backoff.Observe(delay.Seconds())
}

// ObserveOutcome 记录 MaybePunch 结果
func (c *Collector) ObserveOutcome(kind types.OutcomeKind) {
	if c == nil {
		return
	}
	c.outcomes.WithLabelValues(kind.String()).Inc()
}

// ObserveTransition 记录路径状态迁移
func (c *Collector) ObserveTransition(from, to types.PathState) {
	if c == nil {
		return
	}
	c.transitions.WithLabelValues(from.String(), to.String()).Inc()
}
