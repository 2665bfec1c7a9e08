package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	pkgif "github.com/dep2p/go-pathmgr/pkg/interfaces"
)

// Params 指标模块依赖参数
type Params struct {
	fx.In

	// Registerer 为空时指标不注册到任何 Registry
	Registerer prometheus.Registerer `optional:"true"`
	Config     *Config               `optional:"true"`
	Bus        pkgif.EventBus        `optional:"true"`
}

// Result 指标模块输出
type Result struct {
	fx.Out

	Store           *Store
	Collector       *Collector
	Metrics         pkgif.PunchMetrics
	PunchInstrument pkgif.PunchInstrumentation
	PathInstrument  pkgif.PathInstrumentation
}

// Module 返回指标模块
func Module() fx.Option {
	return fx.Module("metrics",
		fx.Provide(Provide),
	)
}

// Provide 创建 Collector 与 Store
func Provide(p Params) (Result, error) {
	config := DefaultConfig()
	if p.Config != nil {
		config = *p.Config
	}

	collector, err := NewCollector(p.Registerer)
	if err != nil {
		return Result{}, err
	}
	store, err := NewStore(config, collector)
	if err != nil {
		return Result{}, err
	}

	var drops pkgif.DropCounter
	if dc, ok := p.Bus.(pkgif.DropCounter); ok {
		drops = dc
	}
	if err := collector.Watch(store, drops); err != nil {
		return Result{}, err
	}

	return Result{
		Store:           store,
		Collector:       collector,
		Metrics:         store,
		PunchInstrument: collector,
		PathInstrument:  collector,
	}, nil
}
