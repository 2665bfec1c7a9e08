// Package pathselect 实现路径选择状态机
//
// 每个 Peer 有且只有一个权威的当前路径：
//
//	None ──OnRelayEstablished──▶ Relayed ──Promote──▶ Direct
//	                               ▲                    │
//	                               └──OnDirectPathLost──┘（存在中继时回退）
//
//	任意状态 ──Remove / 中继与直连均丢失──▶ Disconnected（终态，状态全部移除）
//
// 升级到直连后中继句柄仍被保留，直连丢失时可以立即回退而无需重新建立中继。
//
// # 并发
//
// 状态保存在 sync.Map 中，每个 Peer 一把读写锁，没有全局锁。
// CurrentPath 只持有该 Peer 的读锁并返回值拷贝，读到的总是完整的某一状态。
//
// # 事件
//
// 每次状态转换发出 types.EvtPathChanged；中继 RTT 越过门限时发出
// types.EvtRelayDegraded；节点因无路可退被移除时发出 types.EvtPeerUnreachable。
//
// 非法转换（对未知节点 Promote、对非直连节点 OnDirectPathLost 等）记录日志后忽略。
package pathselect
