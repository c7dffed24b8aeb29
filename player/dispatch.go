package player

import "sync"

// Dispatcher fans values out to subscriber callbacks, synchronously and in subscription order.
// It is the path high-frequency updates take to reach their consumers without going through any shared state.
type Dispatcher[T any] struct {
	mu   sync.RWMutex
	next uint64
	subs []subscriber[T]
}

type subscriber[T any] struct {
	id uint64
	fn func(T)
}

// Subscribe registers fn and returns a function that removes it. The returned function is idempotent.
func (d *Dispatcher[T]) Subscribe(fn func(T)) (cancel func()) {
	d.mu.Lock()
	d.next++
	id := d.next
	d.subs = append(d.subs, subscriber[T]{id: id, fn: fn})
	d.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			d.mu.Lock()
			defer d.mu.Unlock()
			for i, s := range d.subs {
				if s.id == id {
					d.subs = append(d.subs[:i:i], d.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Dispatch delivers v to every current subscriber.
func (d *Dispatcher[T]) Dispatch(v T) {
	d.mu.RLock()
	subs := d.subs
	d.mu.RUnlock()

	for _, s := range subs {
		s.fn(v)
	}
}

// Len returns the number of active subscribers.
func (d *Dispatcher[T]) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.subs)
}
