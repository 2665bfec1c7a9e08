package pathselect

import (
	"context"

	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	"github.com/dep2p/go-pathmgr/config"
	pkgif "github.com/dep2p/go-pathmgr/pkg/interfaces"
)

// Module 返回路径选择的 Fx 模块
func Module() fx.Option {
	return fx.Module("pathselect",
		fx.Provide(
			ProvideSelector,
			func(s *Selector) pkgif.PathSelector { return s },
		),
		fx.Invoke(registerLifecycle),
	)
}

// Params 路径选择依赖参数
type Params struct {
	fx.In

	Config     *config.Config            `optional:"true"`
	Bus        pkgif.EventBus            `optional:"true"`
	Prober     pkgif.DirectProber        `optional:"true"`
	Metrics    pkgif.PunchMetrics        `optional:"true"`
	Instrument pkgif.PathInstrumentation `optional:"true"`
	Clock      clock.Clock               `optional:"true"`
}

// ProvideSelector 提供路径选择器
func ProvideSelector(p Params) (*Selector, error) {
	return NewSelector(p.Config, Deps{
		Bus:        p.Bus,
		Prober:     p.Prober,
		Metrics:    p.Metrics,
		Instrument: p.Instrument,
		Clock:      p.Clock,
	})
}

func registerLifecycle(lc fx.Lifecycle, s *Selector) {
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return s.Close()
		},
	})
}
