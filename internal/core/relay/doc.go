// Package relay 建立初始中继连接
//
// Connector 是发现层与路径选择之间的胶水：调用 Transport.EstablishRelay
// 建立中继，成功后交给路径选择（None → Relayed）。
//
//   - 同一 Peer 的并发 Connect 合并为一次传输层调用
//   - 已处于 Relayed 状态的 Peer 直接返回现有中继句柄
//   - 直连状态下 Connect 会重建回退中继
//   - 失败以 *types.ConnectError 返回，不重试
package relay
