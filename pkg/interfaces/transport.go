// Package interfaces 定义 pathmgr 公共接口
//
// 本文件定义由外部传输/发现层实现的接口。
package interfaces

import (
	"context"

	"github.com/dep2p/go-pathmgr/pkg/types"
)

// Transport 外部传输层
//
// 负责真正的中继预约与打洞协议执行，pathmgr 只决定是否以及何时调用。
type Transport interface {
	// EstablishRelay 建立到 peer 的中继连接
	EstablishRelay(ctx context.Context, peer types.PeerID) (types.RelayHandle, error)

	// AttemptHolePunch 通过中继协调打洞
	//
	// 可能阻塞整个 NAT 穿透过程，必须遵守 ctx 的超时与取消。
	// 拒绝打洞时可返回（或包装）types.ErrPunchRefused。
	AttemptHolePunch(ctx context.Context, peer types.PeerID, relay types.RelayHandle) (types.DirectHandle, error)
}

// DirectProber 可选接口：在切换前验证直连可达
//
// Transport 实现该接口时，路径选择在释放中继前会先探测新直连。
type DirectProber interface {
	ProbeDirect(ctx context.Context, direct types.DirectHandle) error
}

// TransportHandlers 传输层事件回调
type TransportHandlers struct {
	// OnDirectPathLost 直连断开（与打洞无关的独立检测）
	OnDirectPathLost func(peer types.PeerID)

	// OnRelayLost 中继连接断开
	OnRelayLost func(peer types.PeerID)

	// OnPeerDisconnected 节点完全断开
	OnPeerDisconnected func(peer types.PeerID)

	// OnRTTSample RTT 采样
	OnRTTSample func(peer types.PeerID, kind types.PathKind, rttMs uint64)
}

// TransportNotifier 可选接口：传输层主动推送事件
//
// PathManager 启动时注册回调，停止时以零值 TransportHandlers 注销。
type TransportNotifier interface {
	SetHandlers(h TransportHandlers)
}
