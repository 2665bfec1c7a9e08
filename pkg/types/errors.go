package types

import (
	"errors"
	"fmt"
)

// 公共错误
var (
	// ErrEmptyPeerID 空节点 ID
	ErrEmptyPeerID = errors.New("empty peer ID")

	// ErrTransportUnavailable 未配置传输层
	ErrTransportUnavailable = errors.New("transport unavailable")
)

// ============================================================================
//                              ConnectError
// ============================================================================

// ConnectError 中继建立失败
//
// 返回给发现层/调用方，核心不会自行重试中继建立。
type ConnectError struct {
	Peer PeerID
	Err  error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("connect %s via relay: %v", e.Peer.ShortString(), e.Err)
}

func (e *ConnectError) Unwrap() error {
	return e.Err
}

// ============================================================================
//                              PunchError
// ============================================================================

// PunchFailureReason 打洞失败原因
type PunchFailureReason int

const (
	// PunchReasonTransport 传输层错误
	PunchReasonTransport PunchFailureReason = iota
	// PunchReasonTimeout 超时
	PunchReasonTimeout
	// PunchReasonRefused NAT 穿透被拒绝
	PunchReasonRefused
	// PunchReasonValidation 直连可达性验证失败
	PunchReasonValidation
)

// String 返回原因字符串
func (r PunchFailureReason) String() string {
	switch r {
	case PunchReasonTransport:
		return "transport"
	case PunchReasonTimeout:
		return "timeout"
	case PunchReasonRefused:
		return "refused"
	case PunchReasonValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// ErrPunchRefused 传输层可以返回（或包装）此错误表示 NAT 穿透被拒绝
var ErrPunchRefused = errors.New("hole punch refused")

// PunchError 打洞失败
//
// 在本地恢复：转换为 Failed 结果并驱动退避，不会作为硬错误传播给应用。
type PunchError struct {
	Peer   PeerID
	Reason PunchFailureReason
	Err    error
}

func (e *PunchError) Error() string {
	return fmt.Sprintf("hole punch %s failed (%s): %v", e.Peer.ShortString(), e.Reason, e.Err)
}

func (e *PunchError) Unwrap() error {
	return e.Err
}
