// Package interfaces 定义 pathmgr 的公共接口
//
// 一个接口文件对应一个实现目录：
//   - transport.go     - 外部传输/发现层（由使用方实现）
//   - eventbus.go      - 事件总线          → internal/core/eventbus
//   - metrics.go       - 打洞指标与学习    → internal/core/metrics
//   - selection.go     - 路径选择状态机    → internal/core/pathselect
//   - orchestrator.go  - 打洞编排          → internal/core/nat/holepunch
//   - relay.go         - 中继建立          → internal/core/relay
package interfaces
