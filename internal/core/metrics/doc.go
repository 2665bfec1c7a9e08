// Package metrics 实现打洞指标与学习
//
// Store 记录每次打洞结果与 RTT 采样，提供按 Peer 与全局的滚动统计：
//   - 每个 Peer 一个有界环形窗口（默认 20 条），窗口满时淘汰最旧记录
//   - 全局窗口（默认 256 条）作为 Peer 无数据时的回退依据
//   - 跟踪的 Peer 数量由 LRU 限制，突发流量不会导致内存无界增长
//   - 中继 RTT、直连 RTT、成功打洞耗时使用 EWMA 平滑
//
// “学习”指启发式使用的判断依据由这些数据计算得出，而非硬编码：
// 成功率门限基于滚动窗口，打洞超时基于打洞耗时 EWMA。
//
// 样本数为 0 时成功率未定义，SuccessStats.Rate 返回 ok=false。
//
// # 使用示例
//
//	store, _ := metrics.NewStore(metrics.DefaultConfig(), nil)
//
//	store.RecordAttempt(types.PunchAttemptRecord{PeerID: peer, Success: true})
//	snap := store.Snapshot(peer)
//	if rate, ok := snap.Peer.Rate(); ok {
//	    // ...
//	}
//
// Collector 将同一份数据以 Prometheus 指标导出。
package metrics
