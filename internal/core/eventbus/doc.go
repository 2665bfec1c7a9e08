// Package eventbus 实现进程内事件总线
//
// 路径选择与打洞编排通过事件总线解耦：
//   - pathselect 发出 EvtPathChanged / EvtRelayDegraded / EvtPeerUnreachable
//   - holepunch 订阅后触发对应 Peer 的即时评估，并发出 EvtPunchCompleted
//   - 应用可通过 PathManager.Subscribe 观察路径变化
//
// 事件按类型路由，类型以指针标识：
//
//	sub, _ := bus.Subscribe(new(types.EvtPathChanged))
//	defer sub.Close()
//
//	em, _ := bus.Emitter(new(types.EvtPathChanged))
//	em.Emit(types.EvtPathChanged{Peer: peer, To: types.PathStateDirect})
//
// 发射不会阻塞：订阅者缓冲区满时丢弃事件并周期性告警。
package eventbus
