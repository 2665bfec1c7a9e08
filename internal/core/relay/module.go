package relay

import (
	"go.uber.org/fx"

	pkgif "github.com/dep2p/go-pathmgr/pkg/interfaces"
)

// Module 返回中继建立的 Fx 模块
func Module() fx.Option {
	return fx.Module("relay",
		fx.Provide(
			ProvideConnector,
			func(c *Connector) pkgif.RelayConnector { return c },
		),
	)
}

// Params 中继建立依赖参数
type Params struct {
	fx.In

	Config    *Config `optional:"true"`
	Transport pkgif.Transport
	Selector  pkgif.PathSelector
}

// ProvideConnector 提供中继建立器
func ProvideConnector(p Params) *Connector {
	cfg := DefaultConfig()
	if p.Config != nil {
		cfg = *p.Config
	}
	return NewConnector(cfg, p.Transport, p.Selector)
}
