package pathselect

import "errors"

var (
	// ErrPeerNotFound 节点未被跟踪或已断开
	ErrPeerNotFound = errors.New("pathselect: peer not found")

	// ErrNotRelayed 节点不处于 Relayed 状态
	ErrNotRelayed = errors.New("pathselect: peer not relayed")

	// ErrProbeFailed 直连探测失败
	ErrProbeFailed = errors.New("pathselect: direct probe failed")
)
