package services

import (
	"context"
	"log/slog"
	"testing"

	"github.com/rolerabbit/rabbitflow/pkg/eventbus"
	"github.com/rolerabbit/rabbitflow/pkg/events"
	"github.com/rolerabbit/rabbitflow/pkg/models"
	"github.com/rolerabbit/rabbitflow/pkg/persistence"
	"github.com/rolerabbit/rabbitflow/pkg/persistence/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturePublisher struct {
	keys   []string
	events []eventbus.Event
}

func (c *capturePublisher) Publish(_ context.Context, key string, event eventbus.Event) error {
	c.keys = append(c.keys, key)
	c.events = append(c.events, event)

	return nil
}

func newExecutionService(t *testing.T) (*Execution, persistence.Persistence, *capturePublisher) {
	t.Helper()

	p := file.NewPersistence(t.TempDir())
	publisher := &capturePublisher{}

	return NewExecution(p, publisher, slog.Default()), p, publisher
}

func saveWorkflow(t *testing.T, p persistence.Persistence, status models.WorkflowStatus) *models.Workflow {
	t.Helper()

	workflow := validWorkflow("Runnable Workflow")
	workflow.Status = status
	require.NoError(t, p.WorkflowRepository().Save(t.Context(), workflow))

	return workflow
}

func TestExecution_Enqueue(t *testing.T) {
	service, p, publisher := newExecutionService(t)
	workflow := saveWorkflow(t, p, models.WorkflowStatusActive)

	execution, err := service.Enqueue(t.Context(), workflow.ID, "manual", map[string]any{"user": "alice"})
	require.NoError(t, err)

	assert.NotEmpty(t, execution.ID)
	assert.Equal(t, workflow.ID, execution.WorkflowID)
	assert.Equal(t, models.ExecutionStatusQueued, execution.Status)
	assert.Equal(t, "manual", execution.TriggeredBy)
	assert.False(t, execution.StartedAt.IsZero())

	// The queued record is persisted before the event goes out.
	stored, err := p.ExecutionRepository().GetByID(t.Context(), execution.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusQueued, stored.Status)

	require.Len(t, publisher.events, 1)
	assert.Equal(t, workflow.ID, publisher.keys[0])

	requested, ok := publisher.events[0].(events.ExecutionRequested)
	require.True(t, ok)
	assert.Equal(t, events.ExecutionRequestedEvent, requested.GetType())
	assert.Equal(t, workflow.ID, requested.WorkflowID)
	assert.Equal(t, execution.ID, requested.ExecutionID)
	assert.Equal(t, "manual", requested.TriggeredBy)
	assert.Equal(t, map[string]any{"user": "alice"}, requested.TriggerData)
}

func TestExecution_Enqueue_DraftIsExecutable(t *testing.T) {
	service, p, _ := newExecutionService(t)
	workflow := saveWorkflow(t, p, models.WorkflowStatusDraft)

	_, err := service.Enqueue(t.Context(), workflow.ID, "manual", nil)
	require.NoError(t, err)
}

func TestExecution_Enqueue_NotExecutable(t *testing.T) {
	tests := []struct {
		name   string
		status models.WorkflowStatus
	}{
		{name: "paused", status: models.WorkflowStatusPaused},
		{name: "archived", status: models.WorkflowStatusArchived},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, p, publisher := newExecutionService(t)
			workflow := saveWorkflow(t, p, tt.status)

			_, err := service.Enqueue(t.Context(), workflow.ID, "manual", nil)
			require.ErrorIs(t, err, ErrWorkflowNotExecutable)
			assert.True(t, IsConflictError(err))
			assert.Empty(t, publisher.events)
		})
	}
}

func TestExecution_Enqueue_WorkflowNotFound(t *testing.T) {
	service, _, publisher := newExecutionService(t)

	_, err := service.Enqueue(t.Context(), "missing-id", "manual", nil)
	assert.True(t, persistence.IsWorkflowNotFound(err))
	assert.Empty(t, publisher.events)
}

func TestExecution_ListByWorkflow(t *testing.T) {
	service, p, _ := newExecutionService(t)
	workflow := saveWorkflow(t, p, models.WorkflowStatusActive)

	first, err := service.Enqueue(t.Context(), workflow.ID, "manual", nil)
	require.NoError(t, err)
	second, err := service.Enqueue(t.Context(), workflow.ID, "webhook", nil)
	require.NoError(t, err)

	executions, err := service.ListByWorkflow(t.Context(), workflow.ID)
	require.NoError(t, err)
	require.Len(t, executions, 2)

	ids := []string{executions[0].ID, executions[1].ID}
	assert.Contains(t, ids, first.ID)
	assert.Contains(t, ids, second.ID)
}

func TestExecution_Stats(t *testing.T) {
	service, p, _ := newExecutionService(t)
	workflow := saveWorkflow(t, p, models.WorkflowStatusActive)

	for _, status := range []models.ExecutionStatus{
		models.ExecutionStatusCompleted,
		models.ExecutionStatusCompleted,
		models.ExecutionStatusFailed,
	} {
		execution, err := service.Enqueue(t.Context(), workflow.ID, "manual", nil)
		require.NoError(t, err)

		execution.Status = status
		require.NoError(t, p.ExecutionRepository().Save(t.Context(), execution))
	}

	stats, err := service.Stats(t.Context(), workflow.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalExecutions)
	assert.Equal(t, int64(2), stats.SuccessfulExecutions)
	assert.Equal(t, int64(1), stats.FailedExecutions)
	assert.InDelta(t, 2.0/3.0, stats.SuccessRate, 0.001)
}
