package holepunch

import (
	"context"

	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	"github.com/dep2p/go-pathmgr/config"
	pkgif "github.com/dep2p/go-pathmgr/pkg/interfaces"
)

// Module 返回打洞编排的 Fx 模块
func Module() fx.Option {
	return fx.Module("holepunch",
		fx.Provide(
			ProvideOrchestrator,
			func(o *Orchestrator) pkgif.PunchOrchestrator { return o },
		),
		fx.Invoke(registerLifecycle),
	)
}

// Params 编排器依赖参数
type Params struct {
	fx.In

	Config     *Config        `optional:"true"`
	PathConfig *config.Config `optional:"true"`

	Transport pkgif.Transport
	Selector  pkgif.PathSelector
	Metrics   pkgif.PunchMetrics

	Instrument pkgif.PunchInstrumentation `optional:"true"`
	Bus        pkgif.EventBus             `optional:"true"`
	Clock      clock.Clock                `optional:"true"`
}

// ProvideOrchestrator 提供打洞编排器
func ProvideOrchestrator(p Params) (*Orchestrator, error) {
	cfg := DefaultConfig()
	if p.Config != nil {
		cfg = *p.Config
	}
	return NewOrchestrator(cfg, p.PathConfig, Deps{
		Transport:  p.Transport,
		Selector:   p.Selector,
		Metrics:    p.Metrics,
		Instrument: p.Instrument,
		Bus:        p.Bus,
		Clock:      p.Clock,
	})
}

// registerLifecycle 注册生命周期钩子
func registerLifecycle(lc fx.Lifecycle, o *Orchestrator) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return o.Start(ctx)
		},
		OnStop: func(_ context.Context) error {
			return o.Stop()
		},
	})
}
