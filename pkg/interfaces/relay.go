// Package interfaces 定义 pathmgr 公共接口
//
// 本文件定义中继建立接口。
package interfaces

import (
	"context"

	"github.com/dep2p/go-pathmgr/pkg/types"
)

// RelayConnector 建立中继并交给路径选择
//
// 失败以 *types.ConnectError 返回，核心不自行重试。
type RelayConnector interface {
	Connect(ctx context.Context, peer types.PeerID) (types.RelayHandle, error)
}
