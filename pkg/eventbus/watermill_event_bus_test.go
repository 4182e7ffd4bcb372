package eventbus_test

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rolerabbit/rabbitflow/pkg/channels/gochannel"
	"github.com/rolerabbit/rabbitflow/pkg/eventbus"
	"github.com/rolerabbit/rabbitflow/pkg/events"
)

func newTestBus(t *testing.T) *eventbus.WatermillEventBus {
	t.Helper()

	publisher, subscriber, err := gochannel.CreateTestChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(publisher, subscriber)
	t.Cleanup(func() { _ = bus.Close() })

	return bus
}

func TestWatermillEventBus_PublishAndHandle(t *testing.T) {
	bus := newTestBus(t)

	received := make(chan any, 1)

	err := bus.Handle(events.ExecutionRequestedEvent, func(_ context.Context, event any) error {
		received <- event

		return nil
	})
	require.NoError(t, err)
	require.NoError(t, bus.Subscribe(t.Context()))

	sent := events.ExecutionRequested{
		BaseEvent:   events.NewBaseEvent(events.ExecutionRequestedEvent, "wf-1"),
		ExecutionID: "exec-1",
		TriggeredBy: "manual",
		TriggerData: map[string]any{"user": "alice"},
	}
	require.NoError(t, bus.Publish(t.Context(), "wf-1", sent))

	select {
	case event := <-received:
		requested, ok := event.(*events.ExecutionRequested)
		require.True(t, ok)
		assert.Equal(t, "wf-1", requested.WorkflowID)
		assert.Equal(t, "exec-1", requested.ExecutionID)
		assert.Equal(t, "manual", requested.TriggeredBy)
		assert.Equal(t, map[string]any{"user": "alice"}, requested.TriggerData)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestWatermillEventBus_UnhandledTypesAreDropped(t *testing.T) {
	bus := newTestBus(t)

	received := make(chan any, 2)

	err := bus.Handle(events.ExecutionCompletedEvent, func(_ context.Context, event any) error {
		received <- event

		return nil
	})
	require.NoError(t, err)
	require.NoError(t, bus.Subscribe(t.Context()))

	// No handler for started events; only the completed event comes through.
	started := events.ExecutionStarted{
		BaseEvent:   events.NewBaseEvent(events.ExecutionStartedEvent, "wf-1"),
		ExecutionID: "exec-1",
	}
	require.NoError(t, bus.Publish(t.Context(), "wf-1", started))

	completed := events.ExecutionCompleted{
		BaseEvent:   events.NewBaseEvent(events.ExecutionCompletedEvent, "wf-1"),
		ExecutionID: "exec-1",
		DurationMs:  42,
	}
	require.NoError(t, bus.Publish(t.Context(), "wf-1", completed))

	select {
	case event := <-received:
		got, ok := event.(*events.ExecutionCompleted)
		require.True(t, ok)
		assert.Equal(t, int64(42), got.DurationMs)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
	}

	assert.Empty(t, received)
}

func TestWatermillEventBus_GenerateID(t *testing.T) {
	bus := newTestBus(t)

	first := bus.GenerateID()
	second := bus.GenerateID()

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}
