package relay

import "errors"

// ErrRelayTimeout 中继建立超时
var ErrRelayTimeout = errors.New("relay: timeout")
