// Package heuristics 实现打洞判定
//
// ShouldAttemptPunch 是纯函数：相同输入总是得到相同结果，没有副作用。
// 规则按顺序求值，第一条命中的规则决定结果：
//
//  1. 没有当前路径，或已经是直连：不打洞
//  2. 中继 RTT 不超过 MaxRelayRTTMs：中继足够快，不打洞
//  3. 样本足够（>= MinConfidenceSamples）且成功率低于 MinPunchSuccessRate：不打洞
//  4. 其余情况：打洞
//
// 成功率优先使用 Peer 自身的窗口；Peer 没有任何样本时回退到全局成功率。
// 样本不足时（冷启动）不因成功率拒绝。
//
// 退避与并发限制不在这里判断，由编排器负责。
package heuristics
