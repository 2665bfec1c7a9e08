package pathmgr

import (
	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-pathmgr/config"
	"github.com/dep2p/go-pathmgr/internal/core/eventbus"
	"github.com/dep2p/go-pathmgr/internal/core/metrics"
	"github.com/dep2p/go-pathmgr/internal/core/nat/holepunch"
	"github.com/dep2p/go-pathmgr/internal/core/pathselect"
	"github.com/dep2p/go-pathmgr/internal/core/relay"
	pkgif "github.com/dep2p/go-pathmgr/pkg/interfaces"
)

// buildFxApp 构建 Fx 应用
//
// 加载顺序（按依赖）：
//  1. 协作者注入: Config → Transport → Clock → Registerer
//  2. 基础组件: EventBus → Metrics
//  3. 路径组件: PathSelect → HolePunch → Relay
//  4. 用户自定义 Fx 选项
func buildFxApp(cfg *config.Config, o *options, pm *PathManager) *fx.App {
	modules := []fx.Option{
		// 协作者注入
		fx.Supply(cfg),
		fx.Provide(func() pkgif.Transport { return o.transport }),
		fx.Provide(func() clock.Clock { return o.clock }),
	}

	if prober, ok := o.transport.(pkgif.DirectProber); ok {
		modules = append(modules, fx.Provide(func() pkgif.DirectProber { return prober }))
	}
	if o.registerer != nil {
		modules = append(modules, fx.Provide(func() prometheus.Registerer { return o.registerer }))
	}

	modules = append(modules,
		eventbus.Module(),
		metrics.Module(),
		pathselect.Module(),
		holepunch.Module(),
		relay.Module(),
	)

	modules = append(modules, o.fxOptions...)

	modules = append(modules,
		fx.Invoke(injectComponents(pm)),

		// Fx 自身日志静默
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}),
	)

	return fx.New(modules...)
}

// componentParams 需要注入 PathManager 的组件
type componentParams struct {
	fx.In

	Bus          pkgif.EventBus
	Selector     pkgif.PathSelector
	Orchestrator pkgif.PunchOrchestrator
	Metrics      pkgif.PunchMetrics
	Connector    pkgif.RelayConnector
	Transport    pkgif.Transport
}

func injectComponents(pm *PathManager) interface{} {
	return func(p componentParams) {
		pm.bus = p.Bus
		pm.selector = p.Selector
		pm.orchestrator = p.Orchestrator
		pm.metrics = p.Metrics
		pm.connector = p.Connector

		if n, ok := p.Transport.(pkgif.TransportNotifier); ok {
			pm.notifier = n
		}
	}
}
