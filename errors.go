package pathmgr

import (
	"errors"

	"github.com/dep2p/go-pathmgr/pkg/types"
)

// 公共错误定义
var (
	// ErrAlreadyStarted 已启动
	ErrAlreadyStarted = errors.New("pathmgr: already started")

	// ErrClosed 已停止，不能再次启动
	ErrClosed = errors.New("pathmgr: closed")

	// ErrNilOption 传入了 nil 协作者
	ErrNilOption = errors.New("pathmgr: nil option value")

	// ErrTransportUnavailable 未通过 WithTransport 配置传输层
	ErrTransportUnavailable = types.ErrTransportUnavailable

	// ErrPunchRefused 传输层表示 NAT 穿透被拒绝
	ErrPunchRefused = types.ErrPunchRefused
)
