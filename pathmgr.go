package pathmgr

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/fx"
	"go.uber.org/multierr"

	"github.com/dep2p/go-pathmgr/internal/util/logger"
	pkgif "github.com/dep2p/go-pathmgr/pkg/interfaces"
)

var log = logger.Logger("pathmgr")

// stopTimeout Fx App 停止超时
const stopTimeout = 30 * time.Second

// PathManager 路径管理器
//
// 组合路径选择、打洞编排与指标，所有方法并发安全。
type PathManager struct {
	mu sync.Mutex

	// config 构造时复制的私有副本，之后不再修改
	config Config
	app    *fx.App

	started bool
	closed  bool

	// 通过 Subscribe 创建的订阅，Stop 时关闭
	subs []pkgif.Subscription

	bus          pkgif.EventBus
	selector     pkgif.PathSelector
	orchestrator pkgif.PunchOrchestrator
	metrics      pkgif.PunchMetrics
	connector    pkgif.RelayConnector
	notifier     pkgif.TransportNotifier
}

// New 创建路径管理器
//
// cfg 会被复制；调用方之后对原值的修改不影响已创建的实例。
func New(cfg Config, opts ...Option) (*PathManager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	o := defaultOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}

	pm := &PathManager{config: cfg}
	app := buildFxApp(&pm.config, o, pm)
	if err := app.Err(); err != nil {
		return nil, fmt.Errorf("failed to build components: %w", err)
	}
	pm.app = app

	log.Debug("路径管理器已创建",
		"maxRelayRTTMs", cfg.MaxRelayRTTMs,
		"minPunchSuccessRate", cfg.MinPunchSuccessRate,
		"punchBackoffMultiplier", cfg.PunchBackoffMultiplier)
	return pm, nil
}

// WithDefaults 使用默认配置创建路径管理器
func WithDefaults(opts ...Option) (*PathManager, error) {
	return New(DefaultConfig(), opts...)
}

// ════════════════════════════════════════════════════════════════════════════
//                              生命周期
// ════════════════════════════════════════════════════════════════════════════

// Start 启动调度循环并注册传输层回调
//
// 未启动时 Connect、MaybePunch 等方法同样可用，只是没有自动评估。
func (pm *PathManager) Start(ctx context.Context) error {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if pm.closed {
		return ErrClosed
	}
	if pm.started {
		return ErrAlreadyStarted
	}

	if err := pm.app.Start(ctx); err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}
	pm.started = true

	if pm.notifier != nil {
		pm.notifier.SetHandlers(pkgif.TransportHandlers{
			OnDirectPathLost:   pm.HandleDirectPathLost,
			OnRelayLost:        pm.HandleRelayLost,
			OnPeerDisconnected: pm.HandlePeerDisconnected,
			OnRTTSample:        pm.ReportRTT,
		})
	}

	log.Info("路径管理器已启动")
	return nil
}

// Stop 停止路径管理器
//
// 重复调用安全；停止后不能再次启动。
func (pm *PathManager) Stop() error {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if pm.closed {
		return nil
	}
	pm.closed = true

	if pm.notifier != nil {
		pm.notifier.SetHandlers(pkgif.TransportHandlers{})
	}

	var err error
	for _, sub := range pm.subs {
		err = multierr.Append(err, sub.Close())
	}
	pm.subs = nil

	if pm.started {
		ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
		defer cancel()
		err = multierr.Append(err, pm.app.Stop(ctx))
	}

	if err != nil {
		log.Warn("路径管理器停止时出错", "err", err)
		return err
	}
	log.Info("路径管理器已停止")
	return nil
}

// ════════════════════════════════════════════════════════════════════════════
//                              路径
// ════════════════════════════════════════════════════════════════════════════

// Connect 建立到 peer 的中继连接
//
// 失败返回 *ConnectError，由调用方决定是否重试。
func (pm *PathManager) Connect(ctx context.Context, peer PeerID) (RelayHandle, error) {
	return pm.connector.Connect(ctx, peer)
}

// CurrentPath 返回 peer 的当前路径
func (pm *PathManager) CurrentPath(peer PeerID) (ActivePath, bool) {
	return pm.selector.CurrentPath(peer)
}

// State 返回 peer 的路径状态
func (pm *PathManager) State(peer PeerID) PathState {
	return pm.selector.State(peer)
}

// ReportRTT 上报 RTT 采样
func (pm *PathManager) ReportRTT(peer PeerID, kind PathKind, rttMs uint64) {
	pm.selector.UpdateRTT(peer, kind, rttMs)
}

// HandleDirectPathLost 传输层检测到直连断开
//
// 直连节点没有进行中的打洞，先清理打洞状态，再交给路径选择。
func (pm *PathManager) HandleDirectPathLost(peer PeerID) {
	if pm.selector.State(peer) == PathStateDirect {
		pm.orchestrator.RemovePeer(peer)
	}
	pm.selector.OnDirectPathLost(peer)
	pm.cleanupIfGone(peer)
}

// HandleRelayLost 传输层检测到中继断开
//
// 先清理打洞状态（等待正在处理的结果），路径选择移除节点后不会再有指标写入。
func (pm *PathManager) HandleRelayLost(peer PeerID) {
	pm.orchestrator.RemovePeer(peer)
	pm.selector.OnRelayLost(peer)
	pm.cleanupIfGone(peer)
}

// HandlePeerDisconnected 节点完全断开
//
// 按顺序清理：打洞状态（等待正在处理的结果）→ 路径选择 → 指标。
func (pm *PathManager) HandlePeerDisconnected(peer PeerID) {
	pm.orchestrator.RemovePeer(peer)
	pm.selector.Remove(peer)
	pm.metrics.RemovePeer(peer)
	log.Debug("节点已断开", "peer", peer.ShortString())
}

// cleanupIfGone 路径选择已移除节点时清理其余状态
func (pm *PathManager) cleanupIfGone(peer PeerID) {
	if pm.selector.IsLive(peer) {
		return
	}
	pm.orchestrator.RemovePeer(peer)
	pm.metrics.RemovePeer(peer)
}

// ════════════════════════════════════════════════════════════════════════════
//                              打洞
// ════════════════════════════════════════════════════════════════════════════

// MaybePunch 评估 peer，符合条件时执行一次打洞并等待结果
func (pm *PathManager) MaybePunch(ctx context.Context, peer PeerID) PunchOutcome {
	return pm.orchestrator.MaybePunch(ctx, peer)
}

// Trigger 请求调度循环尽快评估 peer
//
// 仅在 Start 后生效；队列满时忽略，由周期评估补上。
func (pm *PathManager) Trigger(peer PeerID) {
	pm.orchestrator.Trigger(peer)
}

// PunchAsync 异步执行 MaybePunch
func (pm *PathManager) PunchAsync(ctx context.Context, peer PeerID) <-chan PunchOutcome {
	return pm.orchestrator.PunchAsync(ctx, peer)
}

// ════════════════════════════════════════════════════════════════════════════
//                              观测
// ════════════════════════════════════════════════════════════════════════════

// Subscribe 订阅事件
//
// evt 为事件类型指针，如 new(types.EvtPathChanged)。订阅在 Stop 时自动关闭。
func (pm *PathManager) Subscribe(evt any, opts ...pkgif.SubscriptionOpt) (Subscription, error) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if pm.closed {
		return nil, ErrClosed
	}
	sub, err := pm.bus.Subscribe(evt, opts...)
	if err != nil {
		return nil, err
	}
	pm.subs = append(pm.subs, sub)
	return sub, nil
}

// Snapshot 返回 peer 的指标快照
func (pm *PathManager) Snapshot(peer PeerID) MetricsSnapshot {
	return pm.metrics.Snapshot(peer)
}

// Records 返回 peer 最近的打洞记录（由旧到新）
func (pm *PathManager) Records(peer PeerID) []PunchAttemptRecord {
	return pm.metrics.Records(peer)
}

// Config 返回配置副本
func (pm *PathManager) Config() Config {
	return pm.config
}
