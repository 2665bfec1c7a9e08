package eventbus

import (
	"errors"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/dep2p/go-pathmgr/internal/util/logger"
	pkgif "github.com/dep2p/go-pathmgr/pkg/interfaces"
)

var log = logger.Logger("eventbus")

// 默认订阅缓冲区
const defaultBuffer = 16

var (
	// ErrInvalidEventType 无效的事件类型
	ErrInvalidEventType = errors.New("eventbus: invalid event type")
	// ErrNonPointerType 事件类型必须以指针传入
	ErrNonPointerType = errors.New("eventbus: event type must be a pointer")
	// ErrEmitterClosed 发射器已关闭
	ErrEmitterClosed = errors.New("eventbus: emitter closed")
	// ErrWrongEventType 发射的事件类型与发射器不符
	ErrWrongEventType = errors.New("eventbus: wrong event type")
)

// Bus 事件总线
type Bus struct {
	mu     sync.Mutex
	topics map[reflect.Type]*topic
}

// topic 单一事件类型的订阅集合
type topic struct {
	mu      sync.Mutex
	typ     reflect.Type
	subs    []*Subscription
	dropped atomic.Int64
}

var (
	_ pkgif.EventBus    = (*Bus)(nil)
	_ pkgif.DropCounter = (*Bus)(nil)
)

// NewBus 创建事件总线
func NewBus() *Bus {
	return &Bus{topics: make(map[reflect.Type]*topic)}
}

// Subscribe 订阅事件
func (b *Bus) Subscribe(eventType any, opts ...pkgif.SubscriptionOpt) (pkgif.Subscription, error) {
	typ, err := elemType(eventType)
	if err != nil {
		return nil, err
	}

	settings := pkgif.SubscriptionSettings{Buffer: defaultBuffer}
	for _, opt := range opts {
		opt(&settings)
	}
	if settings.Buffer < 0 {
		settings.Buffer = 0
	}

	t := b.topic(typ)
	sub := &Subscription{topic: t, out: make(chan any, settings.Buffer)}

	t.mu.Lock()
	t.subs = append(t.subs, sub)
	t.mu.Unlock()

	return sub, nil
}

// Emitter 获取发射器
func (b *Bus) Emitter(eventType any) (pkgif.Emitter, error) {
	typ, err := elemType(eventType)
	if err != nil {
		return nil, err
	}
	return &Emitter{topic: b.topic(typ)}, nil
}

// topic 获取或创建事件类型对应的 topic
func (b *Bus) topic(typ reflect.Type) *topic {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.topics[typ]
	if !ok {
		t = &topic{typ: typ}
		b.topics[typ] = t
	}
	return t
}

// elemType 解析事件类型
func elemType(eventType any) (reflect.Type, error) {
	if eventType == nil {
		return nil, ErrInvalidEventType
	}
	typ := reflect.TypeOf(eventType)
	if typ.Kind() != reflect.Ptr {
		return nil, ErrNonPointerType
	}
	return typ.Elem(), nil
}

// publish 投递事件到所有订阅者
func (t *topic) publish(event any) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, sub := range t.subs {
		select {
		case sub.out <- event:
		default:
			// 每 100 次丢弃告警一次
			if n := t.dropped.Add(1); n%100 == 1 {
				log.Warn("慢订阅者，事件被丢弃",
					"type", t.typ.String(),
					"dropped", n)
			}
		}
	}
}

// remove 移除订阅并关闭其通道
//
// 在 topic 锁内关闭，保证 publish 不会写入已关闭的通道。
func (t *topic) remove(sub *Subscription) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i, s := range t.subs {
		if s == sub {
			t.subs = append(t.subs[:i], t.subs[i+1:]...)
			break
		}
	}
	close(sub.out)
}

// Dropped 返回该类型累计丢弃的事件数
func (b *Bus) Dropped(eventType any) int64 {
	typ, err := elemType(eventType)
	if err != nil {
		return 0
	}
	b.mu.Lock()
	t, ok := b.topics[typ]
	b.mu.Unlock()
	if !ok {
		return 0
	}
	return t.dropped.Load()
}
