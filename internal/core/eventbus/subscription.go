package eventbus

import (
	"reflect"
	"sync"
	"sync/atomic"
)

// Subscription 事件订阅
type Subscription struct {
	topic     *topic
	out       chan any
	closeOnce sync.Once
}

// Out 返回事件通道
func (s *Subscription) Out() <-chan any {
	return s.out
}

// Close 取消订阅，可重复调用
func (s *Subscription) Close() error {
	s.closeOnce.Do(func() {
		s.topic.remove(s)
	})
	return nil
}

// Emitter 事件发射器
type Emitter struct {
	topic  *topic
	closed atomic.Bool
}

// Emit 发射事件
//
// event 的类型必须与创建发射器时的类型一致（值或指针均可）。
func (e *Emitter) Emit(event any) error {
	if e.closed.Load() {
		return ErrEmitterClosed
	}
	typ := reflect.TypeOf(event)
	if typ != e.topic.typ && (typ == nil || typ.Kind() != reflect.Ptr || typ.Elem() != e.topic.typ) {
		return ErrWrongEventType
	}
	e.topic.publish(event)
	return nil
}

// Close 关闭发射器
func (e *Emitter) Close() error {
	e.closed.Store(true)
	return nil
}
