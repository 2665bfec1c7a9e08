// Package mocks 提供统一的测试 Mock 实现
//
// # 传输 Mock
//
//   - MockTransport: 模拟 interfaces.Transport，同时实现 DirectProber 与 TransportNotifier
//
// # 设计原则
//
// 1. 函数式注入: 每个 Mock 都支持通过 XxxFunc 字段注入自定义行为
// 2. 调用记录: 记录调用历史，便于验证测试行为
// 3. 并发安全: 编排器会从多个协程调用传输层，调用记录由锁保护
//
// # 使用示例
//
//	tr := mocks.NewMockTransport()
//	tr.AttemptHolePunchFunc = func(ctx context.Context, peer types.PeerID, relay types.RelayHandle) (types.DirectHandle, error) {
//	    return types.DirectHandle{}, types.ErrPunchRefused
//	}
//
//	// 模拟传输层推送事件
//	tr.Handlers().OnDirectPathLost(peer)
package mocks
