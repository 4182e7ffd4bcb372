package main

import (
	"log/slog"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rolerabbit/rabbitflow/pkg/channels/gochannel"
	"github.com/rolerabbit/rabbitflow/pkg/eventbus"
	"github.com/rolerabbit/rabbitflow/pkg/events"
	"github.com/rolerabbit/rabbitflow/pkg/models"
	"github.com/rolerabbit/rabbitflow/pkg/persistence"
	"github.com/rolerabbit/rabbitflow/pkg/persistence/file"
	"github.com/rolerabbit/rabbitflow/pkg/registry"
)

func newTestWorker(t *testing.T) (*Worker, persistence.Persistence) {
	t.Helper()

	p := file.NewPersistence(t.TempDir())
	reg := registry.NewDefaultRegistry(slog.Default())

	publisher, subscriber, err := gochannel.CreateChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(publisher, subscriber)
	t.Cleanup(func() { _ = bus.Close() })

	return NewWorker("worker-test", slog.Default(), p, reg, bus, nil), p
}

func saveSlowWorkflow(t *testing.T, p persistence.Persistence) *models.Workflow {
	t.Helper()

	workflow := &models.Workflow{
		Name:        "Slow Workflow",
		Status:      models.WorkflowStatusActive,
		TriggerType: models.TriggerTypeManual,
		Nodes: []*models.WorkflowNode{
			{ID: "t", Type: models.NodeTypeTriggerManual, Config: map[string]any{}},
			{ID: "wait", Type: models.NodeTypeWaitDelay, Config: map[string]any{"delay_ms": float64(300)}},
		},
		Connections: []*models.Connection{
			{ID: "c1", Source: "t", Target: "wait"},
		},
	}
	require.NoError(t, p.WorkflowRepository().Save(t.Context(), workflow))

	return workflow
}

func TestWorker_PersistsRunningStatusDuringRun(t *testing.T) {
	worker, p := newTestWorker(t)
	workflow := saveSlowWorkflow(t, p)

	executionID := uuid.New().String()
	require.NoError(t, p.ExecutionRepository().Save(t.Context(), &models.Execution{
		ID:          executionID,
		WorkflowID:  workflow.ID,
		Status:      models.ExecutionStatusQueued,
		TriggeredBy: "manual",
		StartedAt:   time.Now().UTC(),
	}))

	requested := &events.ExecutionRequested{
		BaseEvent:   events.NewBaseEvent(events.ExecutionRequestedEvent, workflow.ID),
		ExecutionID: executionID,
		TriggeredBy: "manual",
	}

	done := make(chan error, 1)

	go func() { done <- worker.handleExecutionRequested(t.Context(), requested) }()

	// The queued record flips to running before the run finishes.
	require.Eventually(t, func() bool {
		execution, err := p.ExecutionRepository().GetByID(t.Context(), executionID)

		return err == nil && execution.Status == models.ExecutionStatusRunning
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, <-done)

	final, err := p.ExecutionRepository().GetByID(t.Context(), executionID)
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusCompleted, final.Status)
	require.Contains(t, final.Trace, "wait")
	assert.Equal(t, models.NodeStatusSucceeded, final.Trace["wait"].Status)
}

func TestWorker_MarksRunningWithoutQueuedRecord(t *testing.T) {
	worker, p := newTestWorker(t)
	workflow := saveSlowWorkflow(t, p)

	executionID := uuid.New().String()
	requested := &events.ExecutionRequested{
		BaseEvent:   events.NewBaseEvent(events.ExecutionRequestedEvent, workflow.ID),
		ExecutionID: executionID,
		TriggeredBy: "schedule",
	}

	require.NoError(t, worker.handleExecutionRequested(t.Context(), requested))

	final, err := p.ExecutionRepository().GetByID(t.Context(), executionID)
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusCompleted, final.Status)
	assert.Equal(t, "schedule", final.TriggeredBy)
}
