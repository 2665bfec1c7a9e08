// Package holepunch 实现打洞编排
//
// Orchestrator 决定何时对哪个 Peer 发起打洞，实际的 NAT 穿透由外部
// Transport 完成。它保证：
//
//   - 同一 Peer 至多一个进行中的尝试
//   - 全局并发不超过 MaxConcurrent，启动速率受令牌桶限制
//   - 失败后指数退避：首次 BaseBackoff，之后乘以 PunchBackoffMultiplier，上限 MaxBackoff
//   - 成功后退避复位
//
// # 单个 Peer 的状态
//
//	Idle ──判定通过且退避到期──▶ Scheduled ──获得并发槽位与令牌──▶ InFlight
//	  ▲                              │                                 │
//	  └────────── Saturated ─────────┘                                 │
//	  └─────────────────── Succeeded / Failed / Discarded ─────────────┘
//
// 尝试完成时节点若已断开，结果被丢弃：不写指标，不改路径。
//
// # 调度
//
// Start 之后每 EvalInterval 评估一次所有中继节点，中继延迟越过门限或
// 新建中继时立即评估对应节点。长时间空闲的状态会被回收。
//
// # 使用示例
//
//	o, _ := holepunch.NewOrchestrator(holepunch.DefaultConfig(), &cfg, holepunch.Deps{
//	    Transport: transport,
//	    Selector:  selector,
//	    Metrics:   store,
//	})
//	out := o.MaybePunch(ctx, peer)
package holepunch
