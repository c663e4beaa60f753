// Package eventbus dispatches typed events in process. Handlers run
// synchronously on the publishing goroutine, in subscription order.
package eventbus

import (
	"context"
	"reflect"
	"slices"
	"sync"
	"sync/atomic"
)

type Handler[T any] func(context.Context, T)

type subscription struct {
	id uint64
	fn func(context.Context, any)
}

type Bus struct {
	mu   sync.RWMutex
	seq  uint64
	subs map[reflect.Type][]subscription
}

func New() *Bus { return &Bus{subs: make(map[reflect.Type][]subscription)} }

// add registers fn for events of type t. The returned func removes exactly
// this subscription and is safe to call more than once.
func (b *Bus) add(t reflect.Type, fn func(context.Context, any)) func() {
	b.mu.Lock()
	b.seq++
	id := b.seq
	b.subs[t] = append(b.subs[t], subscription{id: id, fn: fn})
	b.mu.Unlock()

	return sync.OnceFunc(func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		// copy so that an emit holding the old slice is unaffected
		rest := slices.DeleteFunc(slices.Clone(b.subs[t]), func(s subscription) bool { return s.id == id })
		if len(rest) == 0 {
			delete(b.subs, t)
			return
		}
		b.subs[t] = rest
	})
}

func (b *Bus) emit(ctx context.Context, e any) {
	if b == nil {
		return
	}
	b.mu.RLock()
	subs := b.subs[reflect.TypeOf(e)]
	b.mu.RUnlock()
	for _, s := range subs {
		s.fn(ctx, e)
	}
}

var global atomic.Pointer[Bus]

// Use installs the process-wide bus. nil turns publishing off.
func Use(b *Bus) { global.Store(b) }

// Subscribe registers h on the process-wide bus. Without a bus it does
// nothing and returns a no-op.
func Subscribe[T any](h Handler[T]) (unsubscribe func()) {
	b := global.Load()
	if b == nil {
		return func() {}
	}
	return SubscribeTo(b, h)
}

func SubscribeTo[T any](b *Bus, h Handler[T]) (unsubscribe func()) {
	return b.add(reflect.TypeFor[T](), func(ctx context.Context, v any) { h(ctx, v.(T)) })
}

// Publish sends e to the handlers of its type on the process-wide bus.
func Publish[T any](ctx context.Context, e T) {
	global.Load().emit(ctx, e)
}
