package pathmgr

import (
	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-pathmgr/pkg/interfaces"
)

// Option 注入协作者的选项函数
//
// 行为参数只通过 Config 设置。
type Option func(*options) error

// options 内部选项结构
type options struct {
	transport  interfaces.Transport
	clock      clock.Clock
	registerer prometheus.Registerer
	fxOptions  []fx.Option
}

func defaultOptions() *options {
	return &options{
		transport: unavailableTransport{},
		clock:     clock.New(),
	}
}

// WithTransport 设置传输层
//
// Transport 同时实现 interfaces.DirectProber 时，提升直连前会先探测；
// 实现 interfaces.TransportNotifier 时，Start 会注册事件回调。
func WithTransport(t interfaces.Transport) Option {
	return func(o *options) error {
		if t == nil {
			return ErrNilOption
		}
		o.transport = t
		return nil
	}
}

// WithClock 设置时钟（测试中使用 clock.NewMock）
func WithClock(c clock.Clock) Option {
	return func(o *options) error {
		if c == nil {
			return ErrNilOption
		}
		o.clock = c
		return nil
	}
}

// WithRegisterer 将指标注册到 reg
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) error {
		if reg == nil {
			return ErrNilOption
		}
		o.registerer = reg
		return nil
	}
}

// WithFxOptions 追加 Fx 选项（用于替换内部组件或注入调试钩子）
func WithFxOptions(opts ...fx.Option) Option {
	return func(o *options) error {
		o.fxOptions = append(o.fxOptions, opts...)
		return nil
	}
}
