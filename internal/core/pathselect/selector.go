package pathselect

import (
	"context"
	"fmt"
	"sync"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-pathmgr/config"
	"github.com/dep2p/go-pathmgr/internal/util/logger"
	pkgif "github.com/dep2p/go-pathmgr/pkg/interfaces"
	"github.com/dep2p/go-pathmgr/pkg/types"
)

var log = logger.Logger("pathselect")

// Deps 路径选择的可选依赖
type Deps struct {
	// Bus 为空时不发出事件
	Bus pkgif.EventBus

	// Prober 为空时 Validate 只检查状态
	Prober pkgif.DirectProber

	// Metrics 接收 RTT 采样
	Metrics pkgif.PunchMetrics

	Instrument pkgif.PathInstrumentation

	Clock clock.Clock
}

// Selector 路径选择器
type Selector struct {
	config *config.Config
	deps   Deps

	// peerID -> *peerEntry
	peers sync.Map

	changedEm     pkgif.Emitter
	degradedEm    pkgif.Emitter
	unreachableEm pkgif.Emitter
}

// peerEntry 单个 Peer 的路径状态
type peerEntry struct {
	mu sync.RWMutex

	peer   types.PeerID
	state  types.PathState
	relay  *types.RelayHandle
	direct *types.DirectHandle

	// removed 条目已从 peers 中删除，持有旧指针的调用方必须重新加载
	removed bool
}

// current 返回当前路径的值拷贝，调用方持有锁
func (e *peerEntry) current() types.ActivePath {
	switch e.state {
	case types.PathStateRelayed:
		if e.relay != nil {
			return *e.relay
		}
	case types.PathStateDirect:
		if e.direct != nil {
			return *e.direct
		}
	}
	return nil
}

var _ pkgif.PathSelector = (*Selector)(nil)

// NewSelector 创建路径选择器
func NewSelector(cfg *config.Config, deps Deps) (*Selector, error) {
	if cfg == nil {
		def := config.DefaultConfig()
		cfg = &def
	}
	if deps.Clock == nil {
		deps.Clock = clock.New()
	}

	s := &Selector{config: cfg, deps: deps}

	if deps.Bus != nil {
		var err error
		if s.changedEm, err = deps.Bus.Emitter(new(types.EvtPathChanged)); err != nil {
			return nil, fmt.Errorf("pathselect: create emitter: %w", err)
		}
		if s.degradedEm, err = deps.Bus.Emitter(new(types.EvtRelayDegraded)); err != nil {
			return nil, fmt.Errorf("pathselect: create emitter: %w", err)
		}
		if s.unreachableEm, err = deps.Bus.Emitter(new(types.EvtPeerUnreachable)); err != nil {
			return nil, fmt.Errorf("pathselect: create emitter: %w", err)
		}
	}

	return s, nil
}

// Close 关闭事件发射器
func (s *Selector) Close() error {
	for _, em := range []pkgif.Emitter{s.changedEm, s.degradedEm, s.unreachableEm} {
		if em != nil {
			_ = em.Close()
		}
	}
	return nil
}

// ============================================================================
//                              查询
// ============================================================================

func (s *Selector) load(peer types.PeerID) (*peerEntry, bool) {
	v, ok := s.peers.Load(peer)
	if !ok {
		return nil, false
	}
	return v.(*peerEntry), true
}

// CurrentPath 返回当前路径
func (s *Selector) CurrentPath(peer types.PeerID) (types.ActivePath, bool) {
	e, ok := s.load(peer)
	if !ok {
		return nil, false
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.removed {
		return nil, false
	}
	p := e.current()
	return p, p != nil
}

// State 返回当前状态，未跟踪的节点返回 PathStateNone
func (s *Selector) State(peer types.PeerID) types.PathState {
	e, ok := s.load(peer)
	if !ok {
		return types.PathStateNone
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.removed {
		return types.PathStateNone
	}
	return e.state
}

// IsLive 节点是否仍有可用路径
func (s *Selector) IsLive(peer types.PeerID) bool {
	return s.State(peer).IsConnected()
}

// RelayedPeers 返回处于 Relayed 状态的节点
func (s *Selector) RelayedPeers() []types.PeerID {
	var peers []types.PeerID
	s.peers.Range(func(_, v any) bool {
		e := v.(*peerEntry)
		e.mu.RLock()
		if !e.removed && e.state == types.PathStateRelayed {
			peers = append(peers, e.peer)
		}
		e.mu.RUnlock()
		return true
	})
	return peers
}

// ============================================================================
//                              状态转换
// ============================================================================

// OnRelayEstablished 中继已建立
func (s *Selector) OnRelayEstablished(relay types.RelayHandle) {
	if relay.PeerID.IsEmpty() {
		log.Warn("忽略空节点的中继句柄")
		return
	}

	for {
		v, _ := s.peers.LoadOrStore(relay.PeerID, &peerEntry{
			peer:  relay.PeerID,
			state: types.PathStateNone,
		})
		e := v.(*peerEntry)

		e.mu.Lock()
		if e.removed {
			// 与 Remove 竞争，重新创建
			e.mu.Unlock()
			continue
		}

		h := relay
		e.relay = &h
		if e.state == types.PathStateNone {
			s.transition(e, types.PathStateRelayed)
		} else {
			log.Debug("刷新中继句柄",
				"peer", relay.PeerID.ShortString(),
				"relay", relay.RelayPeerID.ShortString(),
				"state", e.state.String())
		}
		e.mu.Unlock()
		break
	}

	if relay.RTTMs > 0 && s.deps.Metrics != nil {
		s.deps.Metrics.RecordRTT(relay.PeerID, types.PathKindRelay, relay.RTTMs)
	}
}

// Validate 验证直连句柄，不改变状态
func (s *Selector) Validate(ctx context.Context, direct types.DirectHandle) error {
	e, ok := s.load(direct.PeerID)
	if !ok {
		return ErrPeerNotFound
	}

	e.mu.RLock()
	state, removed := e.state, e.removed
	e.mu.RUnlock()

	if removed {
		return ErrPeerNotFound
	}
	if state != types.PathStateRelayed {
		return ErrNotRelayed
	}

	if s.deps.Prober != nil {
		if err := s.deps.Prober.ProbeDirect(ctx, direct); err != nil {
			return fmt.Errorf("%w: %w", ErrProbeFailed, err)
		}
	}
	return nil
}

// Promote Relayed → Direct
func (s *Selector) Promote(direct types.DirectHandle) error {
	e, ok := s.load(direct.PeerID)
	if !ok {
		log.Warn("提升直连失败：节点未跟踪", "peer", direct.PeerID.ShortString())
		return ErrPeerNotFound
	}

	e.mu.Lock()
	if e.removed {
		e.mu.Unlock()
		log.Warn("提升直连失败：节点已断开", "peer", direct.PeerID.ShortString())
		return ErrPeerNotFound
	}
	if e.state != types.PathStateRelayed {
		state := e.state
		e.mu.Unlock()
		log.Warn("提升直连失败：状态不符",
			"peer", direct.PeerID.ShortString(),
			"state", state.String())
		return ErrNotRelayed
	}

	h := direct
	e.direct = &h
	s.transition(e, types.PathStateDirect)
	e.mu.Unlock()

	if direct.RTTMs > 0 && s.deps.Metrics != nil {
		s.deps.Metrics.RecordRTT(direct.PeerID, types.PathKindDirect, direct.RTTMs)
	}
	return nil
}

// OnDirectPathLost 直连丢失
//
// 保留了中继时回退到 Relayed；否则节点不可达并被移除。
func (s *Selector) OnDirectPathLost(peer types.PeerID) {
	e, ok := s.load(peer)
	if !ok {
		log.Debug("忽略直连丢失：节点未跟踪", "peer", peer.ShortString())
		return
	}

	e.mu.Lock()
	if e.removed || e.state != types.PathStateDirect {
		state := e.state
		e.mu.Unlock()
		log.Debug("忽略直连丢失：非直连状态",
			"peer", peer.ShortString(),
			"state", state.String())
		return
	}

	e.direct = nil
	if e.relay != nil {
		s.transition(e, types.PathStateRelayed)
		e.mu.Unlock()
		log.Info("直连丢失，回退到中继", "peer", peer.ShortString())
		return
	}

	s.removeLocked(e)
	e.mu.Unlock()

	log.Warn("直连丢失且无中继可回退，节点不可达", "peer", peer.ShortString())
	s.emitUnreachable(peer)
}

// OnRelayLost 中继断开
//
// Relayed 状态下节点不可达并被移除；Direct 状态下只丢弃回退中继。
func (s *Selector) OnRelayLost(peer types.PeerID) {
	e, ok := s.load(peer)
	if !ok {
		return
	}

	e.mu.Lock()
	if e.removed {
		e.mu.Unlock()
		return
	}

	switch e.state {
	case types.PathStateDirect:
		e.relay = nil
		e.mu.Unlock()
		log.Debug("中继断开，直连无回退路径", "peer", peer.ShortString())
	case types.PathStateRelayed:
		s.removeLocked(e)
		e.mu.Unlock()
		log.Warn("中继断开，节点不可达", "peer", peer.ShortString())
		s.emitUnreachable(peer)
	default:
		e.relay = nil
		e.mu.Unlock()
	}
}

// Remove 移除节点全部状态
func (s *Selector) Remove(peer types.PeerID) {
	e, ok := s.load(peer)
	if !ok {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return
	}
	s.removeLocked(e)
	log.Debug("移除节点路径状态", "peer", peer.ShortString())
}

// removeLocked 转换为 Disconnected 并删除条目，调用方持有写锁
func (s *Selector) removeLocked(e *peerEntry) {
	e.relay = nil
	e.direct = nil
	if e.state != types.PathStateNone {
		s.transition(e, types.PathStateDisconnected)
	}
	e.removed = true
	s.peers.CompareAndDelete(e.peer, e)
}

// UpdateRTT 刷新对应路径的 RTT 采样
//
// 中继 RTT 从门限以内越过门限时发出 EvtRelayDegraded。
func (s *Selector) UpdateRTT(peer types.PeerID, kind types.PathKind, rttMs uint64) {
	e, ok := s.load(peer)
	if !ok {
		return
	}

	var degraded bool
	e.mu.Lock()
	if e.removed {
		e.mu.Unlock()
		return
	}
	switch kind {
	case types.PathKindRelay:
		if e.relay != nil {
			prev := e.relay.RTTMs
			h := *e.relay
			h.RTTMs = rttMs
			e.relay = &h
			threshold := s.config.MaxRelayRTTMs
			degraded = e.state == types.PathStateRelayed && prev <= threshold && rttMs > threshold
		}
	case types.PathKindDirect:
		if e.direct != nil {
			h := *e.direct
			h.RTTMs = rttMs
			e.direct = &h
		}
	}
	e.mu.Unlock()

	if s.deps.Metrics != nil {
		s.deps.Metrics.RecordRTT(peer, kind, rttMs)
	}

	if degraded {
		log.Info("中继延迟越过门限",
			"peer", peer.ShortString(),
			"rttMs", rttMs,
			"thresholdMs", s.config.MaxRelayRTTMs)
		if s.degradedEm != nil {
			_ = s.degradedEm.Emit(types.EvtRelayDegraded{Peer: peer, RTTMs: rttMs, At: s.deps.Clock.Now()})
		}
	}
}

// transition 执行状态转换并发出事件，调用方持有写锁
func (s *Selector) transition(e *peerEntry, to types.PathState) {
	from := e.state
	e.state = to
	now := s.deps.Clock.Now()

	path := e.current()
	log.Info("路径状态变更",
		"peer", e.peer.ShortString(),
		"from", from.String(),
		"to", to.String())

	if s.deps.Instrument != nil {
		s.deps.Instrument.ObserveTransition(from, to)
	}
	if s.changedEm != nil {
		_ = s.changedEm.Emit(types.EvtPathChanged{
			Peer: e.peer,
			From: from,
			To:   to,
			Path: path,
			At:   now,
		})
	}
}

func (s *Selector) emitUnreachable(peer types.PeerID) {
	if s.unreachableEm != nil {
		_ = s.unreachableEm.Emit(types.EvtPeerUnreachable{Peer: peer, At: s.deps.Clock.Now()})
	}
}
