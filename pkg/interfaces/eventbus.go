// Package interfaces 定义 pathmgr 公共接口
//
// 本文件定义事件总线接口。
package interfaces

// EventBus 事件总线
//
// 事件类型以指针形式传入用于标识，例如 new(types.EvtPathChanged)。
type EventBus interface {
	// Subscribe 订阅指定类型的事件
	Subscribe(eventType any, opts ...SubscriptionOpt) (Subscription, error)

	// Emitter 获取指定类型的发射器
	Emitter(eventType any) (Emitter, error)
}

// DropCounter 可选接口：统计因慢订阅者丢弃的事件数
type DropCounter interface {
	Dropped(eventType any) int64
}

// Subscription 事件订阅
type Subscription interface {
	// Out 返回事件通道，Close 后通道被关闭
	Out() <-chan any

	// Close 取消订阅，可重复调用
	Close() error
}

// Emitter 事件发射器
type Emitter interface {
	// Emit 发射事件，不会阻塞在慢订阅者上
	Emit(event any) error

	// Close 关闭发射器
	Close() error
}

// SubscriptionOpt 订阅选项
type SubscriptionOpt func(*SubscriptionSettings)

// SubscriptionSettings 订阅设置
type SubscriptionSettings struct {
	Buffer int
}

// BufSize 设置订阅缓冲区大小
func BufSize(size int) SubscriptionOpt {
	return func(s *SubscriptionSettings) {
		s.Buffer = size
	}
}
