package streaming

import (
	"context"
	"testing"
	"time"

	"github.com/rendis/vizor/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryHubPublishSubscribe(t *testing.T) {
	hub := NewMemoryHub()
	ctx := context.Background()

	ch, cancel, err := hub.Subscribe(ctx, Filter{})
	require.NoError(t, err)
	defer cancel()

	require.NoError(t, hub.Publish(ctx, Event{Type: schema.EventRenderStarted, PayloadID: "p1"}))

	select {
	case ev := <-ch:
		assert.Equal(t, schema.EventRenderStarted, ev.Type)
		assert.Equal(t, "p1", ev.PayloadID)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestMemoryHubFilters(t *testing.T) {
	hub := NewMemoryHub()
	ctx := context.Background()

	byPayload, cancel1, err := hub.Subscribe(ctx, Filter{PayloadID: "p2"})
	require.NoError(t, err)
	defer cancel1()

	byType, cancel2, err := hub.Subscribe(ctx, Filter{Types: []string{schema.EventSelectionChanged}})
	require.NoError(t, err)
	defer cancel2()

	require.NoError(t, hub.Publish(ctx, Event{Type: schema.EventRenderCompleted, PayloadID: "p1"}))
	require.NoError(t, hub.Publish(ctx, Event{Type: schema.EventSelectionChanged, PayloadID: "p2"}))

	select {
	case ev := <-byPayload:
		assert.Equal(t, "p2", ev.PayloadID)
	case <-time.After(time.Second):
		t.Fatal("payload-filtered event not delivered")
	}

	select {
	case ev := <-byType:
		assert.Equal(t, schema.EventSelectionChanged, ev.Type)
	case <-time.After(time.Second):
		t.Fatal("type-filtered event not delivered")
	}

	// The render.completed event must not reach either subscriber.
	select {
	case ev := <-byPayload:
		t.Fatalf("unexpected event %v", ev)
	default:
	}
}

func TestMemoryHubUnsubscribe(t *testing.T) {
	hub := NewMemoryHub()
	ctx := context.Background()

	ch, cancel, err := hub.Subscribe(ctx, Filter{})
	require.NoError(t, err)
	cancel()

	require.NoError(t, hub.Publish(ctx, Event{Type: schema.EventRenderStarted}))
	select {
	case _, ok := <-ch:
		assert.False(t, ok, "expected no delivery after cancel")
	default:
	}
}

func TestMemoryHubCancelledContext(t *testing.T) {
	hub := NewMemoryHub()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.Error(t, hub.Publish(ctx, Event{Type: schema.EventRenderStarted}))
	_, _, err := hub.Subscribe(ctx, Filter{})
	require.Error(t, err)
}
