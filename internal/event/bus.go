package event

import (
	"sync"
	"sync/atomic"
	"time"
)

// Handler processes a delivered event.
type Handler func(Event)

// PanicHandler is called when a subscriber panics during delivery.
type PanicHandler func(ev Event, recovered any)

// Stats is a snapshot of bus counters.
type Stats struct {
	Published     uint64
	Delivered     uint64
	HandlerPanics uint64
	Subscriptions int
}

type subscription struct {
	id      uint64
	pattern Topic
	handler Handler
}

// Bus is a synchronous publish/subscribe bus. It is safe for concurrent
// use.
type Bus struct {
	mu      sync.RWMutex
	subs    []*subscription
	nextID  uint64
	onPanic PanicHandler

	published atomic.Uint64
	delivered atomic.Uint64
	panics    atomic.Uint64
}

// NewBus creates an event bus.
func NewBus() *Bus {
	return &Bus{}
}

// SetPanicHandler installs a callback for subscriber panics. Panics are
// always recovered; without a handler they are only counted.
func (b *Bus) SetPanicHandler(fn PanicHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onPanic = fn
}

// Subscribe registers a handler for topics matching pattern and returns
// a function removing the subscription.
func (b *Bus) Subscribe(pattern Topic, handler Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := &subscription{id: b.nextID, pattern: pattern, handler: handler}
	b.subs = append(b.subs, sub)

	id := sub.id
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.subs {
			if s.id == id {
				b.subs = append(b.subs[:i], b.subs[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers an event to every matching subscriber on the calling
// goroutine.
func (b *Bus) Publish(topic Topic, source string, data map[string]any) {
	ev := Event{
		Topic:  topic,
		Source: source,
		Time:   time.Now(),
		Data:   data,
	}

	b.mu.RLock()
	matched := make([]*subscription, 0, len(b.subs))
	for _, sub := range b.subs {
		if topic.Match(sub.pattern) {
			matched = append(matched, sub)
		}
	}
	onPanic := b.onPanic
	b.mu.RUnlock()

	b.published.Add(1)
	for _, sub := range matched {
		b.deliver(sub, ev, onPanic)
	}
}

func (b *Bus) deliver(sub *subscription, ev Event, onPanic PanicHandler) {
	defer func() {
		if r := recover(); r != nil {
			b.panics.Add(1)
			if onPanic != nil {
				onPanic(ev, r)
			}
		}
	}()

	sub.handler(ev)
	b.delivered.Add(1)
}

// Stats returns a snapshot of bus counters.
func (b *Bus) Stats() Stats {
	b.mu.RLock()
	subs := len(b.subs)
	b.mu.RUnlock()

	return Stats{
		Published:     b.published.Load(),
		Delivered:     b.delivered.Load(),
		HandlerPanics: b.panics.Load(),
		Subscriptions: subs,
	}
}
