package eventbus

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestPublishDeliversToSubscribers(t *testing.T) {
	defer goleak.VerifyNone(t)

	b := New()
	defer b.Close()

	got := make(chan DomainEvent, 2)
	b.Subscribe(EventSearchStarted, func(e DomainEvent) { got <- e })
	b.Subscribe(EventSearchCompleted, func(e DomainEvent) { t.Error("unexpected event type") })

	b.Publish(SearchStartedEvent{Generation: 7})

	select {
	case e := <-got:
		started, ok := e.(SearchStartedEvent)
		require.True(t, ok)
		assert.Equal(t, uint64(7), started.Generation)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestUnsubscribeRemovesOnlyThatHandler(t *testing.T) {
	defer goleak.VerifyNone(t)

	b := New()
	defer b.Close()

	var first, second atomic.Int32
	var wg sync.WaitGroup
	unsubscribe := b.Subscribe(EventConfigSaved, func(DomainEvent) { first.Add(1) })
	b.Subscribe(EventConfigSaved, func(DomainEvent) {
		second.Add(1)
		wg.Done()
	})

	unsubscribe()
	wg.Add(1)
	b.Publish(ConfigSavedEvent{Path: "x"})
	wg.Wait()

	assert.Equal(t, int32(0), first.Load())
	assert.Equal(t, int32(1), second.Load())
}

func TestHandlerPanicIsRecovered(t *testing.T) {
	defer goleak.VerifyNone(t)

	b := New()
	defer b.Close()

	done := make(chan struct{})
	b.Subscribe(EventError, func(DomainEvent) { panic("boom") })
	b.Subscribe(EventError, func(DomainEvent) { close(done) })
	b.Publish(ErrorEvent{Message: "x"})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("second handler not called")
	}
}

func TestPublishAfterCloseIsDropped(t *testing.T) {
	defer goleak.VerifyNone(t)

	b := New()
	var called atomic.Bool
	b.Subscribe(EventThemeChanged, func(DomainEvent) { called.Store(true) })
	b.Close()
	b.Close()

	b.Publish(ThemeChangedEvent{Theme: "light"})
	time.Sleep(10 * time.Millisecond)
	assert.False(t, called.Load())
}
