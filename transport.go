package pathmgr

import (
	"context"

	"github.com/dep2p/go-pathmgr/pkg/types"
)

// unavailableTransport 未配置传输层时的默认实现
type unavailableTransport struct{}

func (unavailableTransport) EstablishRelay(context.Context, types.PeerID) (types.RelayHandle, error) {
	return types.RelayHandle{}, types.ErrTransportUnavailable
}

func (unavailableTransport) AttemptHolePunch(context.Context, types.PeerID, types.RelayHandle) (types.DirectHandle, error) {
	return types.DirectHandle{}, types.ErrTransportUnavailable
}
