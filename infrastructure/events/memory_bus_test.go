package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pagecraft-backend/application/ports"
	"pagecraft-backend/domain/core/valueobjects"
	"pagecraft-backend/domain/events"
)

func TestMemoryBus_DispatchesByEventType(t *testing.T) {
	bus := NewMemoryBus(zap.NewNop())

	var inserted, deleted int
	bus.Subscribe("node.inserted", func(ctx context.Context, event events.DomainEvent) {
		inserted++
	})
	bus.Subscribe("node.deleted", func(ctx context.Context, event events.DomainEvent) {
		deleted++
	})

	batch := []events.DomainEvent{
		events.NewNodeInserted(valueobjects.NewNodeID(), "button", valueobjects.NodeID{}, time.Now()),
		events.NewNodeInserted(valueobjects.NewNodeID(), "card", valueobjects.NodeID{}, time.Now()),
		events.NewNodeDeleted(valueobjects.NewNodeID(), false, time.Now()),
	}
	require.NoError(t, bus.PublishBatch(context.Background(), batch))

	assert.Equal(t, 2, inserted)
	assert.Equal(t, 1, deleted)
}

func TestMemoryBus_NoSubscribersIsFine(t *testing.T) {
	bus := NewMemoryBus(zap.NewNop())

	err := bus.Publish(context.Background(), events.NewPageDeleted(valueobjects.NewPageID(), time.Now()))
	assert.NoError(t, err)
}

func TestEditorBus_TopicIsolation(t *testing.T) {
	bus := NewEditorBus()
	gridCh, unsubGrid := bus.SubscribeEditor("grid")
	defer unsubGrid()
	panelCh, unsubPanel := bus.SubscribeEditor("panel")
	defer unsubPanel()

	bus.PublishEditor(ports.EditorEvent{Topic: "grid", Payload: map[string]interface{}{"visible": true}})

	select {
	case event := <-gridCh:
		assert.Equal(t, true, event.Payload["visible"])
	default:
		t.Fatal("grid subscriber should have received the event")
	}

	select {
	case <-panelCh:
		t.Fatal("panel subscriber must not see grid events")
	default:
	}
}

func TestEditorBus_SlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	bus := NewEditorBus()
	ch, unsub := bus.SubscribeEditor("grid")
	defer unsub()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			bus.PublishEditor(ports.EditorEvent{Topic: "grid"})
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publisher blocked on a slow subscriber")
	}
	assert.LessOrEqual(t, len(ch), 16)
}

func TestEditorBus_UnsubscribeClosesChannel(t *testing.T) {
	bus := NewEditorBus()
	ch, unsub := bus.SubscribeEditor("grid")

	unsub()
	bus.PublishEditor(ports.EditorEvent{Topic: "grid"})

	_, open := <-ch
	assert.False(t, open)
}
