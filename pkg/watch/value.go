// Package watch provides the two channels a presenter exposes: a latest-value
// container for state and an unbounded FIFO queue for one-shot events.
package watch

import "sync"

// Value holds the latest value of type T and broadcasts changes to subscribers.
//
// Each subscriber sees the current value on subscription and then only the most
// recent write it has not yet read. Writes made while a subscriber is not
// reading overwrite each other, so intermediate values may never be observed.
type Value[T any] struct {
	mu     sync.Mutex
	cur    T
	subs   map[*Subscription[T]]struct{}
	closed bool
}

// Subscription receives the latest value of a Value on C.
type Subscription[T any] struct {
	C <-chan T

	ch     chan T
	parent *Value[T]
}

// NewValue returns a Value holding initial.
func NewValue[T any](initial T) *Value[T] {
	return &Value[T]{
		cur:  initial,
		subs: make(map[*Subscription[T]]struct{}),
	}
}

// Get returns the current value.
func (v *Value[T]) Get() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cur
}

// Set replaces the current value and notifies subscribers.
func (v *Value[T]) Set(val T) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cur = val
	v.broadcast()
}

// Update applies fn to the current value atomically and returns the result.
func (v *Value[T]) Update(fn func(T) T) T {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cur = fn(v.cur)
	v.broadcast()
	return v.cur
}

// Subscribe registers a new subscriber. The current value is immediately
// available on the returned subscription's channel.
func (v *Value[T]) Subscribe() *Subscription[T] {
	ch := make(chan T, 1)
	s := &Subscription[T]{C: ch, ch: ch, parent: v}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		close(ch)
		return s
	}
	ch <- v.cur
	v.subs[s] = struct{}{}
	return s
}

// Close closes every subscription channel. Later Set calls only update the value.
func (v *Value[T]) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.closed = true
	for s := range v.subs {
		close(s.ch)
	}
	clear(v.subs)
}

// broadcast must be called with v.mu held.
func (v *Value[T]) broadcast() {
	for s := range v.subs {
		// drop the unread value, if any, so the slot holds the latest
		select {
		case <-s.ch:
		default:
		}
		s.ch <- v.cur
	}
}

// Cancel unregisters the subscription and closes its channel.
func (s *Subscription[T]) Cancel() {
	v := s.parent
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.subs[s]; !ok {
		return
	}
	delete(v.subs, s)
	close(s.ch)
}
