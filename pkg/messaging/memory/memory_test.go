package memory

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan []byte) []byte {
	t.Helper()
	select {
	case msg, ok := <-ch:
		require.True(t, ok, "channel closed")
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func TestPublishSubscribe(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := b.Subscribe(ctx, "appointments")
	require.NoError(t, err)
	other, err := b.Subscribe(ctx, "other")
	require.NoError(t, err)

	require.NoError(t, b.Publish(ctx, "appointments", map[string]int{"id": 1}))

	assert.JSONEq(t, `{"id":1}`, string(receive(t, ch)))
	select {
	case msg := <-other:
		t.Fatalf("unexpected message on other channel: %s", msg)
	default:
	}
}

func TestPublishWithoutSubscribers(t *testing.T) {
	b := NewBroker()
	assert.NoError(t, b.Publish(context.Background(), "appointments", "hello"))
}

func TestPublishUnmarshalable(t *testing.T) {
	b := NewBroker()
	err := b.Publish(context.Background(), "appointments", make(chan int))
	assert.Error(t, err)
}

func TestCloseClosesSubscribers(t *testing.T) {
	b := NewBroker()
	ch, err := b.Subscribe(context.Background(), "appointments")
	require.NoError(t, err)

	require.NoError(t, b.Close())
	require.NoError(t, b.Close())

	_, ok := <-ch
	assert.False(t, ok)
	assert.Error(t, b.Publish(context.Background(), "appointments", "late"))
	_, err = b.Subscribe(context.Background(), "appointments")
	assert.Error(t, err)
}

func TestSubscriptionEndsWithContext(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := b.Subscribe(ctx, "appointments")
	require.NoError(t, err)
	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("subscription not closed after cancel")
	}
}

func TestCloseReleasesSubscriptionGoroutines(t *testing.T) {
	before := runtime.NumGoroutine()

	b := NewBroker()
	for i := 0; i < 50; i++ {
		_, err := b.Subscribe(context.Background(), "appointments")
		require.NoError(t, err)
	}
	require.NoError(t, b.Close())

	assert.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= before
	}, time.Second, 10*time.Millisecond)
}
