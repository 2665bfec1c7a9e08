// Package types 定义 pathmgr 的公共数据结构
//
// 这是整个系统的最底层包，不依赖任何其他 pathmgr 内部包。
// 所有类型都是纯值类型，用于在各模块间传递数据。
//
// # 文件组织
//
//   - ids.go     - PeerID
//   - path.go    - ActivePath, RelayHandle, DirectHandle, PathKind, PathState
//   - punch.go   - PunchAttemptRecord, PunchOutcome, OutcomeKind
//   - errors.go  - ConnectError, PunchError 以及公共错误
//   - events.go  - 事件类型（EvtPathChanged 等）
//
// # ActivePath
//
// ActivePath 是一个封闭接口，只有 RelayHandle 与 DirectHandle 两种实现。
// 调用方通过类型分支处理：
//
//	switch p := path.(type) {
//	case types.RelayHandle:
//	    // 中继路径
//	case types.DirectHandle:
//	    // 直连路径
//	}
package types
