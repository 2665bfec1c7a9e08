// Package pathmgr 管理 NAT 后节点之间的连接路径
//
// 节点先经中继建立连接，随后在值得的时候尝试打洞升级为直连：
//
//   - 中继足够快（RTT 不超过 MaxRelayRTTMs）时保持中继
//   - 历史打洞成功率过低时不再尝试
//   - 失败后指数退避，成功后复位
//   - 直连丢失时回退到保留的中继
//
// 真正的中继预约与 NAT 穿透由调用方提供的 Transport 完成，
// pathmgr 只决定是否、何时以及对谁发起。
//
// # 快速开始
//
//	import "github.com/dep2p/go-pathmgr"
//
//	// 1. 创建并启动
//	pm, err := pathmgr.New(pathmgr.DefaultConfig(),
//	    pathmgr.WithTransport(myTransport),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := pm.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer pm.Stop()
//
//	// 2. 发现层找到节点后建立中继
//	if _, err := pm.Connect(ctx, peer); err != nil {
//	    var cerr *pathmgr.ConnectError
//	    if errors.As(err, &cerr) {
//	        // 由发现层决定是否重试
//	    }
//	}
//
//	// 3. 传输层上报 RTT，编排器在中继变慢时自动打洞
//	pm.ReportRTT(peer, pathmgr.PathKindRelay, 320)
//
//	// 4. 读取当前路径
//	p, _ := pm.CurrentPath(peer)
//	switch p.(type) {
//	case pathmgr.DirectHandle:
//	    // 直连
//	case pathmgr.RelayHandle:
//	    // 中继
//	}
//
// # 配置
//
// Config 只有三个字段，默认值为 200ms / 0.3 / 2.0，可以从 JSON 加载：
//
//	cfg, err := pathmgr.ConfigFromJSON([]byte(`{"max_relay_rtt_ms": 150}`))
//
// Option 只用于注入协作者（传输层、时钟、Prometheus Registerer、额外的 Fx 选项）。
//
// # 日志
//
// 日志使用 log/slog，按子系统设置级别：
//
//	PATHMGR_LOG_LEVEL=nat.holepunch=debug,pathselect=info,warn
//	PATHMGR_LOG_FORMAT=json
package pathmgr
