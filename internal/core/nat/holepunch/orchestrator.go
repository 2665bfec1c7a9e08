package holepunch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/dep2p/go-pathmgr/config"
	"github.com/dep2p/go-pathmgr/internal/core/heuristics"
	"github.com/dep2p/go-pathmgr/internal/util/logger"
	pkgif "github.com/dep2p/go-pathmgr/pkg/interfaces"
	"github.com/dep2p/go-pathmgr/pkg/types"
)

// 包级别日志实例
var log = logger.Logger("nat.holepunch")

// kick 队列容量，满时丢弃（周期评估会补上）
const kickBuffer = 64

var (
	// ErrMissingDependency 缺少必需依赖
	ErrMissingDependency = errors.New("holepunch: missing dependency")

	// errAborted 调用方取消，尝试未完成
	errAborted = errors.New("holepunch: attempt aborted")
)

// Deps 编排器依赖
type Deps struct {
	Transport pkgif.Transport
	Selector  pkgif.PathSelector
	Metrics   pkgif.PunchMetrics

	// 以下可选
	Instrument pkgif.PunchInstrumentation
	Bus        pkgif.EventBus
	Clock      clock.Clock
}

// Orchestrator 打洞编排器
type Orchestrator struct {
	config  Config
	pathCfg *config.Config
	deps    Deps
	clock   clock.Clock

	sem     *semaphore.Weighted
	limiter *rate.Limiter

	// peerID -> *peerPunchState
	states sync.Map

	completedEm pkgif.Emitter
	kick        chan types.PeerID

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started atomic.Bool
	stopped atomic.Bool
}

var _ pkgif.PunchOrchestrator = (*Orchestrator)(nil)

// NewOrchestrator 创建编排器
func NewOrchestrator(cfg Config, pathCfg *config.Config, deps Deps) (*Orchestrator, error) {
	cfg.Validate()

	if deps.Transport == nil || deps.Selector == nil || deps.Metrics == nil {
		return nil, ErrMissingDependency
	}
	if pathCfg == nil {
		def := config.DefaultConfig()
		pathCfg = &def
	}
	if deps.Clock == nil {
		deps.Clock = clock.New()
	}

	o := &Orchestrator{
		config:  cfg,
		pathCfg: pathCfg,
		deps:    deps,
		clock:   deps.Clock,
		sem:     semaphore.NewWeighted(int64(cfg.MaxConcurrent)),
		limiter: rate.NewLimiter(rate.Limit(cfg.StartRate), cfg.StartBurst),
		kick:    make(chan types.PeerID, kickBuffer),
	}

	if deps.Bus != nil {
		em, err := deps.Bus.Emitter(new(types.EvtPunchCompleted))
		if err != nil {
			return nil, fmt.Errorf("holepunch: create emitter: %w", err)
		}
		o.completedEm = em
	}

	return o, nil
}

// ============================================================================
//                              打洞
// ============================================================================

// MaybePunch 评估 peer，符合条件时执行一次打洞并等待结果
func (o *Orchestrator) MaybePunch(ctx context.Context, peer types.PeerID) types.PunchOutcome {
	out := o.maybePunch(ctx, peer)
	out.Peer = peer
	if o.deps.Instrument != nil {
		o.deps.Instrument.ObserveOutcome(out.Result)
	}
	return out
}

// PunchAsync 异步执行 MaybePunch
func (o *Orchestrator) PunchAsync(ctx context.Context, peer types.PeerID) <-chan types.PunchOutcome {
	ch := make(chan types.PunchOutcome, 1)
	go func() {
		defer close(ch)
		ch <- o.MaybePunch(ctx, peer)
	}()
	return ch
}

func (o *Orchestrator) maybePunch(ctx context.Context, peer types.PeerID) types.PunchOutcome {
	current, ok := o.deps.Selector.CurrentPath(peer)
	if !ok {
		return types.PunchOutcome{Result: types.OutcomeNoPath}
	}

	snap := o.deps.Metrics.Snapshot(peer)
	decision := heuristics.Evaluate(peer, current, snap, o.pathCfg)
	if !decision.Attempt {
		log.Debug("无需打洞",
			"peer", peer.ShortString(),
			"reason", decision.Reason.String())
		return types.PunchOutcome{Result: types.OutcomeNotEligible}
	}
	relay, ok := current.(types.RelayHandle)
	if !ok {
		return types.PunchOutcome{Result: types.OutcomeNotEligible}
	}

	// Idle → Scheduled
	st := o.lockState(peer)
	now := o.clock.Now()
	switch {
	case st.phase != phaseIdle:
		st.mu.Unlock()
		return types.PunchOutcome{Result: types.OutcomeInFlight}
	case now.Before(st.nextEligible):
		remaining := st.nextEligible.Sub(now)
		st.mu.Unlock()
		return types.PunchOutcome{Result: types.OutcomeBackoff, NextDelay: remaining}
	}
	st.phase = phaseScheduled
	st.lastActivity = now
	st.mu.Unlock()

	// Scheduled → InFlight
	if !o.sem.TryAcquire(1) {
		o.toIdle(st)
		log.Debug("并发已满，推迟打洞", "peer", peer.ShortString())
		return types.PunchOutcome{Result: types.OutcomeSaturated}
	}
	if !o.limiter.AllowN(now, 1) {
		o.sem.Release(1)
		o.toIdle(st)
		log.Debug("启动速率受限，推迟打洞", "peer", peer.ShortString())
		return types.PunchOutcome{Result: types.OutcomeSaturated}
	}
	defer o.sem.Release(1)

	st.mu.Lock()
	if st.removed {
		st.mu.Unlock()
		return types.PunchOutcome{Result: types.OutcomeDiscarded}
	}
	st.phase = phaseInFlight
	st.mu.Unlock()

	return o.run(ctx, peer, relay, snap, st, decision)
}

// run 执行一次尝试并处理结果
func (o *Orchestrator) run(ctx context.Context, peer types.PeerID, relay types.RelayHandle,
	snap types.MetricsSnapshot, st *peerPunchState, decision heuristics.Decision) types.PunchOutcome {

	if o.deps.Instrument != nil {
		o.deps.Instrument.InFlightInc()
		defer o.deps.Instrument.InFlightDec()
	}

	id := uuid.NewString()
	timeout := heuristics.AttemptTimeout(snap, o.config.AttemptTimeout, o.config.MaxAttemptTimeout)
	start := o.clock.Now()

	log.Info("开始打洞",
		"peer", peer.ShortString(),
		"attempt", id,
		"relayRTT", relay.RTTMs,
		"globalFallback", decision.GlobalFallback,
		"timeout", timeout)

	direct, err := o.attempt(ctx, peer, relay, timeout)
	latency := o.clock.Since(start)

	if err == nil {
		err = o.validate(ctx, peer, direct)
	}

	return o.complete(peer, st, id, start, latency, direct, err)
}

// attempt 在超时内调用传输层打洞
//
// 传输层忽略 ctx 时在截止时间放弃等待，迟到的结果被丢弃。
func (o *Orchestrator) attempt(ctx context.Context, peer types.PeerID, relay types.RelayHandle, timeout time.Duration) (types.DirectHandle, error) {
	actx, cancel := o.clock.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		direct types.DirectHandle
		err    error
	}
	ch := make(chan result, 1)
	go func() {
		direct, err := o.deps.Transport.AttemptHolePunch(actx, peer, relay)
		ch <- result{direct, err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			if ctx.Err() != nil {
				return types.DirectHandle{}, errAborted
			}
			return types.DirectHandle{}, classify(actx, peer, r.err)
		}
		if r.direct.PeerID.IsEmpty() {
			r.direct.PeerID = peer
		}
		return r.direct, nil
	case <-actx.Done():
		if ctx.Err() != nil {
			return types.DirectHandle{}, errAborted
		}
		return types.DirectHandle{}, &types.PunchError{Peer: peer, Reason: types.PunchReasonTimeout, Err: actx.Err()}
	}
}

// validate 在 ValidateTimeout 内验证直连
//
// 与 attempt 相同：探测忽略 ctx 时在截止时间放弃等待，按验证失败处理。
func (o *Orchestrator) validate(ctx context.Context, peer types.PeerID, direct types.DirectHandle) error {
	vctx, cancel := o.clock.WithTimeout(ctx, o.config.ValidateTimeout)
	defer cancel()

	ch := make(chan error, 1)
	go func() {
		ch <- o.deps.Selector.Validate(vctx, direct)
	}()

	var err error
	select {
	case err = <-ch:
	case <-vctx.Done():
		err = vctx.Err()
	}
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return errAborted
	}
	return &types.PunchError{Peer: peer, Reason: types.PunchReasonValidation, Err: err}
}

// classify 将传输层错误归类为 PunchError
func classify(actx context.Context, peer types.PeerID, err error) error {
	var perr *types.PunchError
	if errors.As(err, &perr) {
		return perr
	}

	reason := types.PunchReasonTransport
	switch {
	case errors.Is(err, types.ErrPunchRefused):
		reason = types.PunchReasonRefused
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(actx.Err(), context.DeadlineExceeded):
		reason = types.PunchReasonTimeout
	}
	return &types.PunchError{Peer: peer, Reason: reason, Err: err}
}

// complete 处理尝试结果
//
// 持有 Peer 状态锁直到处理完成，RemovePeer 会等待这里结束。
func (o *Orchestrator) complete(peer types.PeerID, st *peerPunchState, id string, start time.Time,
	latency time.Duration, direct types.DirectHandle, err error) types.PunchOutcome {

	st.mu.Lock()
	defer st.mu.Unlock()

	now := o.clock.Now()
	st.phase = phaseIdle
	st.lastActivity = now

	if st.removed || errors.Is(err, errAborted) || !o.deps.Selector.IsLive(peer) {
		log.Debug("打洞结果被丢弃",
			"peer", peer.ShortString(),
			"attempt", id,
			"removed", st.removed)
		return types.PunchOutcome{Result: types.OutcomeDiscarded, AttemptID: id, Err: err}
	}

	rec := types.PunchAttemptRecord{
		ID:        id,
		PeerID:    peer,
		Timestamp: start,
		Success:   err == nil,
	}
	if err == nil {
		rec.LatencyMs = uint64(latency.Milliseconds())
		rec.HasLatency = true
	}
	o.deps.Metrics.RecordAttempt(rec)
	o.emitCompleted(rec)

	if err == nil {
		if perr := o.deps.Selector.Promote(direct); perr != nil {
			log.Warn("打洞成功但提升直连失败",
				"peer", peer.ShortString(),
				"attempt", id,
				"err", perr)
			return types.PunchOutcome{Result: types.OutcomeDiscarded, AttemptID: id, Err: perr}
		}
		st.reset()
		log.Info("打洞成功",
			"peer", peer.ShortString(),
			"attempt", id,
			"latency", latency,
			"endpoint", direct.Endpoint)
		return types.PunchOutcome{Result: types.OutcomeSucceeded, AttemptID: id, Direct: &direct}
	}

	delay := st.nextDelay(o.config.BaseBackoff, o.config.MaxBackoff, o.pathCfg.PunchBackoffMultiplier)
	st.failures++
	st.delay = delay
	st.nextEligible = now.Add(delay)
	if o.deps.Instrument != nil {
		o.deps.Instrument.ObserveBackoff(delay)
	}

	log.Info("打洞失败，进入退避",
		"peer", peer.ShortString(),
		"attempt", id,
		"failures", st.failures,
		"backoff", delay,
		"err", err)
	return types.PunchOutcome{Result: types.OutcomeFailed, AttemptID: id, Err: err, NextDelay: delay}
}

func (o *Orchestrator) emitCompleted(rec types.PunchAttemptRecord) {
	if o.completedEm != nil {
		_ = o.completedEm.Emit(types.EvtPunchCompleted{Record: rec})
	}
}

// ============================================================================
//                              状态表
// ============================================================================

// lockState 获取或创建 Peer 状态，返回时已加锁
func (o *Orchestrator) lockState(peer types.PeerID) *peerPunchState {
	for {
		v, _ := o.states.LoadOrStore(peer, &peerPunchState{lastActivity: o.clock.Now()})
		st := v.(*peerPunchState)
		st.mu.Lock()
		if !st.removed {
			return st
		}
		st.mu.Unlock()
	}
}

func (o *Orchestrator) toIdle(st *peerPunchState) {
	st.mu.Lock()
	st.phase = phaseIdle
	st.mu.Unlock()
}

// RemovePeer 删除 Peer 打洞状态
//
// 进行中的尝试继续运行，但结果会被丢弃。正在处理结果时会等待其完成。
func (o *Orchestrator) RemovePeer(peer types.PeerID) {
	v, ok := o.states.LoadAndDelete(peer)
	if !ok {
		return
	}
	st := v.(*peerPunchState)
	st.mu.Lock()
	st.removed = true
	phase := st.phase
	st.mu.Unlock()

	log.Debug("移除打洞状态", "peer", peer.ShortString(), "phase", phase.String())
}

// eligible 廉价预检：状态允许且判定通过
func (o *Orchestrator) eligible(peer types.PeerID) bool {
	if v, ok := o.states.Load(peer); ok {
		st := v.(*peerPunchState)
		st.mu.Lock()
		busy := st.phase != phaseIdle || o.clock.Now().Before(st.nextEligible)
		st.mu.Unlock()
		if busy {
			return false
		}
	}

	current, ok := o.deps.Selector.CurrentPath(peer)
	if !ok {
		return false
	}
	return heuristics.ShouldAttemptPunch(peer, current, o.deps.Metrics.Snapshot(peer), o.pathCfg)
}

// gc 回收长时间空闲且退避已到期的状态
func (o *Orchestrator) gc() {
	now := o.clock.Now()
	var n int
	o.states.Range(func(k, v any) bool {
		st := v.(*peerPunchState)
		st.mu.Lock()
		if st.phase == phaseIdle && !now.Before(st.nextEligible) && now.Sub(st.lastActivity) >= o.config.IdleExpiry {
			st.removed = true
			o.states.CompareAndDelete(k, st)
			n++
		}
		st.mu.Unlock()
		return true
	})
	if n > 0 {
		log.Debug("回收空闲打洞状态", "count", n)
	}
}

// ============================================================================
//                              调度
// ============================================================================

// Trigger 请求尽快评估 peer
func (o *Orchestrator) Trigger(peer types.PeerID) {
	select {
	case o.kick <- peer:
	default:
		log.Debug("评估队列已满，等待周期评估", "peer", peer.ShortString())
	}
}

// Start 启动调度循环
//
// ctx 只用于启动阶段，循环的生命周期由 Stop 控制。
func (o *Orchestrator) Start(_ context.Context) error {
	if !o.started.CompareAndSwap(false, true) {
		return nil
	}
	o.ctx, o.cancel = context.WithCancel(context.Background())

	var subs []pkgif.Subscription
	if o.deps.Bus != nil {
		degraded, err := o.deps.Bus.Subscribe(new(types.EvtRelayDegraded))
		if err != nil {
			return fmt.Errorf("holepunch: subscribe: %w", err)
		}
		changed, err := o.deps.Bus.Subscribe(new(types.EvtPathChanged))
		if err != nil {
			_ = degraded.Close()
			return fmt.Errorf("holepunch: subscribe: %w", err)
		}
		subs = append(subs, degraded, changed)
	}

	ticker := o.clock.Ticker(o.config.EvalInterval)

	o.wg.Add(1)
	go o.loop(ticker, subs)

	log.Info("打洞编排器已启动",
		"evalInterval", o.config.EvalInterval,
		"maxConcurrent", o.config.MaxConcurrent)
	return nil
}

// Stop 停止调度循环并等待由循环启动的尝试结束
func (o *Orchestrator) Stop() error {
	if !o.started.Load() || !o.stopped.CompareAndSwap(false, true) {
		return nil
	}
	o.cancel()
	o.wg.Wait()

	if o.completedEm != nil {
		_ = o.completedEm.Close()
	}
	log.Info("打洞编排器已停止")
	return nil
}

func (o *Orchestrator) loop(ticker *clock.Ticker, subs []pkgif.Subscription) {
	defer o.wg.Done()
	defer ticker.Stop()
	defer func() {
		for _, sub := range subs {
			_ = sub.Close()
		}
	}()

	var degradedCh, changedCh <-chan any
	if len(subs) == 2 {
		degradedCh, changedCh = subs[0].Out(), subs[1].Out()
	}

	for {
		select {
		case <-o.ctx.Done():
			return
		case <-ticker.C:
			o.evaluateAll()
			o.gc()
		case peer := <-o.kick:
			o.schedule(peer)
		case e, ok := <-degradedCh:
			if !ok {
				degradedCh = nil
				continue
			}
			if evt, ok := e.(types.EvtRelayDegraded); ok {
				o.schedule(evt.Peer)
			}
		case e, ok := <-changedCh:
			if !ok {
				changedCh = nil
				continue
			}
			if evt, ok := e.(types.EvtPathChanged); ok && evt.To == types.PathStateRelayed {
				o.schedule(evt.Peer)
			}
		}
	}
}

// evaluateAll 评估所有中继节点
func (o *Orchestrator) evaluateAll() {
	for _, peer := range o.deps.Selector.RelayedPeers() {
		o.schedule(peer)
	}
}

// schedule 预检通过时为 peer 启动独立的尝试协程，只在 loop 中调用
func (o *Orchestrator) schedule(peer types.PeerID) {
	if o.ctx.Err() != nil || !o.eligible(peer) {
		return
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		out := o.MaybePunch(o.ctx, peer)
		log.Debug("调度打洞完成",
			"peer", peer.ShortString(),
			"result", out.Result.String())
	}()
}
