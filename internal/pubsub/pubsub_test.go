package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func recvOne(t *testing.T, ch <-chan any) any {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for payload")
		return nil
	}
}

func TestHub_PublishReachesAllSubscribers(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first := hub.Subscribe(ctx, "user.added")
	second := hub.Subscribe(ctx, "user.added")

	hub.Publish("user.added", "payload")

	require.Equal(t, "payload", recvOne(t, first))
	require.Equal(t, "payload", recvOne(t, second))
}

func TestHub_TopicsAreIndependent(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	other := hub.Subscribe(ctx, "other")
	hub.Publish("user.added", "payload")

	select {
	case v := <-other:
		t.Fatalf("unexpected payload on other topic: %v", v)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_CancelClosesStream(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())

	ch := hub.Subscribe(ctx, "user.added")
	cancel()

	select {
	case _, open := <-ch:
		require.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("stream not closed after cancel")
	}

	// A publish after teardown must not panic or block.
	hub.Publish("user.added", "ignored")
}

func TestHub_PublishWithoutSubscribersIsNoop(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	hub.Publish("user.added", "nobody listening")
}

func TestHub_SlowSubscriberDoesNotBlockPublish(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := hub.Subscribe(ctx, "user.added")

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*2; i++ {
			hub.Publish("user.added", i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}

	require.Equal(t, 0, recvOne(t, ch))
}
