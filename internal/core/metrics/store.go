package metrics

import (
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dep2p/go-pathmgr/internal/util/logger"
	pkgif "github.com/dep2p/go-pathmgr/pkg/interfaces"
	"github.com/dep2p/go-pathmgr/pkg/types"
)

var log = logger.Logger("metrics")

// Store 打洞指标存储
//
// 每个 Peer 的统计有独立的锁；全局窗口由 globalMu 保护。
type Store struct {
	config Config

	peers *lru.Cache[types.PeerID, *peerStats]

	globalMu sync.Mutex
	global   *window

	collector *Collector
}

// peerStats 单个 Peer 的统计
type peerStats struct {
	mu sync.Mutex

	attempts     *window
	relayRTT     ewma
	directRTT    ewma
	punchLatency ewma
	lastAttempt  time.Time
}

var _ pkgif.PunchMetrics = (*Store)(nil)

// NewStore 创建指标存储，collector 可为 nil
func NewStore(config Config, collector *Collector) (*Store, error) {
	config.Validate()

	peers, err := lru.NewWithEvict(config.MaxPeers, func(peer types.PeerID, _ *peerStats) {
		log.Debug("Peer 统计被 LRU 淘汰", "peer", peer.ShortString())
	})
	if err != nil {
		return nil, fmt.Errorf("metrics: create peer cache: %w", err)
	}

	return &Store{
		config:    config,
		peers:     peers,
		global:    newWindow(config.GlobalWindowSize),
		collector: collector,
	}, nil
}

// peer 获取或创建 Peer 统计
func (s *Store) peer(id types.PeerID) *peerStats {
	if ps, ok := s.peers.Get(id); ok {
		return ps
	}
	ps := &peerStats{
		attempts:     newWindow(s.config.WindowSize),
		relayRTT:     ewma{alpha: s.config.EWMAAlpha},
		directRTT:    ewma{alpha: s.config.EWMAAlpha},
		punchLatency: ewma{alpha: s.config.EWMAAlpha},
	}
	if prev, ok, _ := s.peers.PeekOrAdd(id, ps); ok {
		return prev
	}
	return ps
}

// RecordAttempt 记录一次打洞尝试
func (s *Store) RecordAttempt(rec types.PunchAttemptRecord) {
	if rec.PeerID.IsEmpty() {
		return
	}

	ps := s.peer(rec.PeerID)
	ps.mu.Lock()
	if _, evicted := ps.attempts.push(rec); evicted {
		log.Debug("窗口已满，淘汰最旧记录", "peer", rec.PeerID.ShortString())
	}
	if rec.Success && rec.HasLatency {
		ps.punchLatency.add(float64(rec.LatencyMs))
	}
	if rec.Timestamp.After(ps.lastAttempt) {
		ps.lastAttempt = rec.Timestamp
	}
	ps.mu.Unlock()

	s.globalMu.Lock()
	s.global.push(rec)
	s.globalMu.Unlock()

	s.collector.ObserveAttempt(rec)
}

// RecordRTT 记录 RTT 采样
func (s *Store) RecordRTT(peer types.PeerID, kind types.PathKind, rttMs uint64) {
	if peer.IsEmpty() {
		return
	}

	ps := s.peer(peer)
	ps.mu.Lock()
	defer ps.mu.Unlock()

	switch kind {
	case types.PathKindRelay:
		ps.relayRTT.add(float64(rttMs))
	case types.PathKindDirect:
		ps.directRTT.add(float64(rttMs))
	}
}

// Snapshot 计算指标快照
//
// 未跟踪的 Peer 返回空的 Peer 统计与当前全局统计。
func (s *Store) Snapshot(peer types.PeerID) types.MetricsSnapshot {
	var snap types.MetricsSnapshot

	if ps, ok := s.peers.Peek(peer); ok {
		ps.mu.Lock()
		snap.Peer = ps.attempts.stats()
		snap.RelayRTT = ps.relayRTT.snapshot()
		snap.DirectRTT = ps.directRTT.snapshot()
		snap.PunchLatency = ps.punchLatency.snapshot()
		snap.LastAttempt = ps.lastAttempt
		ps.mu.Unlock()
	}

	snap.Global = s.GlobalStats()
	return snap
}

// GlobalStats 返回全局成功率统计
func (s *Store) GlobalStats() types.SuccessStats {
	s.globalMu.Lock()
	defer s.globalMu.Unlock()
	return s.global.stats()
}

// Records 返回 Peer 窗口内记录
func (s *Store) Records(peer types.PeerID) []types.PunchAttemptRecord {
	ps, ok := s.peers.Peek(peer)
	if !ok {
		return nil
	}
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.attempts.records()
}

// RemovePeer 删除 Peer 统计
func (s *Store) RemovePeer(peer types.PeerID) {
	if s.peers.Remove(peer) {
		log.Debug("移除 Peer 统计", "peer", peer.ShortString())
	}
}

// TrackedPeers 返回当前跟踪的 Peer 数
func (s *Store) TrackedPeers() int {
	return s.peers.Len()
}
