package relay

import (
	"context"
	"errors"

	"golang.org/x/sync/singleflight"

	"github.com/dep2p/go-pathmgr/internal/util/logger"
	pkgif "github.com/dep2p/go-pathmgr/pkg/interfaces"
	"github.com/dep2p/go-pathmgr/pkg/types"
)

var log = logger.Logger("relay")

// Connector 中继建立器
type Connector struct {
	config    Config
	transport pkgif.Transport
	selector  pkgif.PathSelector

	group singleflight.Group
}

var _ pkgif.RelayConnector = (*Connector)(nil)

// NewConnector 创建中继建立器
func NewConnector(config Config, transport pkgif.Transport, selector pkgif.PathSelector) *Connector {
	config.Validate()
	return &Connector{
		config:    config,
		transport: transport,
		selector:  selector,
	}
}

// Connect 建立到 peer 的中继连接并交给路径选择
func (c *Connector) Connect(ctx context.Context, peer types.PeerID) (types.RelayHandle, error) {
	if peer.IsEmpty() {
		return types.RelayHandle{}, &types.ConnectError{Peer: peer, Err: types.ErrEmptyPeerID}
	}

	if p, ok := c.selector.CurrentPath(peer); ok {
		if rh, isRelay := p.(types.RelayHandle); isRelay {
			return rh, nil
		}
	}

	// 合并并发调用；使用独立的 ctx，避免首个调用方取消影响其他等待者
	ch := c.group.DoChan(string(peer), func() (any, error) {
		return c.establish(context.WithoutCancel(ctx), peer)
	})

	select {
	case r := <-ch:
		if r.Err != nil {
			return types.RelayHandle{}, r.Err
		}
		return r.Val.(types.RelayHandle), nil
	case <-ctx.Done():
		return types.RelayHandle{}, &types.ConnectError{Peer: peer, Err: ctx.Err()}
	}
}

func (c *Connector) establish(ctx context.Context, peer types.PeerID) (types.RelayHandle, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.ConnectTimeout)
	defer cancel()

	log.Debug("建立中继连接", "peer", peer.ShortString())

	relay, err := c.transport.EstablishRelay(ctx, peer)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = errors.Join(ErrRelayTimeout, err)
		}
		log.Warn("建立中继失败", "peer", peer.ShortString(), "err", err)
		return types.RelayHandle{}, &types.ConnectError{Peer: peer, Err: err}
	}
	if relay.PeerID.IsEmpty() {
		relay.PeerID = peer
	}

	c.selector.OnRelayEstablished(relay)
	log.Info("中继连接已建立",
		"peer", peer.ShortString(),
		"relay", relay.RelayPeerID.ShortString(),
		"rttMs", relay.RTTMs)
	return relay, nil
}
