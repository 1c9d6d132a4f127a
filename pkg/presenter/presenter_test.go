package presenter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBase_StateAndEvents(t *testing.T) {
	b := New[int, string](1)
	defer b.Close()

	b.UpdateState(func(n int) int { return n * 10 })
	assert.Equal(t, 10, b.State())

	b.SendEvent("a")
	b.SendEvent("b")
	assert.Equal(t, []string{"a", "b"}, b.Events().Drain())
}

func TestBase_CloseCancelsLaunched(t *testing.T) {
	b := New[int, string](0)

	started := make(chan struct{})
	var cancelled bool
	b.Launch(func(ctx context.Context) {
		close(started)
		select {
		case <-ctx.Done():
			cancelled = true
		case <-time.After(5 * time.Second):
		}
	})

	<-started
	b.Close()
	assert.True(t, cancelled)
	assert.Error(t, b.Context().Err())
}

func TestBase_EventsSurviveClose(t *testing.T) {
	b := New[int, string](0)
	b.SendEvent("pending")
	b.Close()

	got, ok := b.Events().TryReceive()
	assert.True(t, ok)
	assert.Equal(t, "pending", got)
}
