// Package presenter holds the state and event plumbing shared by the login,
// setup and notification flows.
package presenter

import (
	"context"
	"sync"

	"github.com/go-training/gh-notifier/pkg/watch"
)

// Base owns the observable state S, the one-shot event queue of E, and a
// lifecycle scope. Work started with Launch is cancelled by Close.
type Base[S any, E any] struct {
	state  *watch.Value[S]
	events *watch.Queue[E]

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New returns a Base holding initial state and an empty event queue.
func New[S any, E any](initial S) *Base[S, E] {
	ctx, cancel := context.WithCancel(context.Background())
	return &Base[S, E]{
		state:  watch.NewValue(initial),
		events: watch.NewQueue[E](),
		ctx:    ctx,
		cancel: cancel,
	}
}

// State returns the latest state.
func (b *Base[S, E]) State() S {
	return b.state.Get()
}

// Subscribe returns a latest-value subscription to state changes.
func (b *Base[S, E]) Subscribe() *watch.Subscription[S] {
	return b.state.Subscribe()
}

// Events returns the one-shot event queue.
func (b *Base[S, E]) Events() *watch.Queue[E] {
	return b.events
}

// UpdateState applies fn to the current state.
func (b *Base[S, E]) UpdateState(fn func(S) S) {
	b.state.Update(fn)
}

// SendEvent enqueues a one-shot event.
func (b *Base[S, E]) SendEvent(e E) {
	b.events.Send(e)
}

// Context returns the lifecycle context. It is cancelled by Close.
func (b *Base[S, E]) Context() context.Context {
	return b.ctx
}

// Launch runs fn on its own goroutine bound to the lifecycle scope.
func (b *Base[S, E]) Launch(fn func(ctx context.Context)) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		fn(b.ctx)
	}()
}

// Wait blocks until every launched task has returned.
func (b *Base[S, E]) Wait() {
	b.wg.Wait()
}

// Close cancels running tasks, waits for them, and closes state subscriptions.
// Events already queued remain receivable.
func (b *Base[S, E]) Close() {
	b.cancel()
	b.wg.Wait()
	b.state.Close()
	b.events.Close()
}
