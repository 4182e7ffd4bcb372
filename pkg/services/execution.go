package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rolerabbit/rabbitflow/pkg/eventbus"
	"github.com/rolerabbit/rabbitflow/pkg/events"
	"github.com/rolerabbit/rabbitflow/pkg/models"
	"github.com/rolerabbit/rabbitflow/pkg/persistence"
)

// Execution enqueues workflow runs and reads execution records. Runs are
// asynchronous: Enqueue persists a queued record and publishes an
// ExecutionRequested event; a worker picks it up.
type Execution struct {
	persistence persistence.Persistence
	bus         eventbus.EventPublisher
	logger      *slog.Logger
}

func NewExecution(p persistence.Persistence, bus eventbus.EventPublisher, logger *slog.Logger) *Execution {
	return &Execution{
		persistence: p,
		bus:         bus,
		logger:      logger.With("module", "execution_service"),
	}
}

// Enqueue creates a queued execution for the workflow and requests a run.
func (e *Execution) Enqueue(ctx context.Context, workflowID, triggeredBy string, triggerData map[string]any) (*models.Execution, error) {
	workflow, err := e.persistence.WorkflowRepository().GetByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	if !workflow.IsExecutable() {
		return nil, fmt.Errorf("%w: status %s", ErrWorkflowNotExecutable, workflow.Status)
	}

	execution := &models.Execution{
		ID:          uuid.New().String(),
		WorkflowID:  workflowID,
		Status:      models.ExecutionStatusQueued,
		TriggeredBy: triggeredBy,
		StartedAt:   time.Now().UTC(),
	}

	if err := e.persistence.ExecutionRepository().Save(ctx, execution); err != nil {
		return nil, fmt.Errorf("failed to save execution: %w", err)
	}

	event := events.ExecutionRequested{
		BaseEvent:   events.NewBaseEvent(events.ExecutionRequestedEvent, workflowID),
		ExecutionID: execution.ID,
		TriggeredBy: triggeredBy,
		TriggerData: triggerData,
	}

	if err := e.bus.Publish(ctx, workflowID, event); err != nil {
		return nil, fmt.Errorf("failed to publish execution request: %w", err)
	}

	e.logger.InfoContext(ctx, "execution enqueued",
		"workflow_id", workflowID,
		"execution_id", execution.ID,
		"triggered_by", triggeredBy)

	return execution, nil
}

func (e *Execution) Get(ctx context.Context, id string) (*models.Execution, error) {
	return e.persistence.ExecutionRepository().GetByID(ctx, id)
}

func (e *Execution) ListByWorkflow(ctx context.Context, workflowID string) ([]*models.Execution, error) {
	return e.persistence.ExecutionRepository().ListByWorkflow(ctx, workflowID)
}

func (e *Execution) Stats(ctx context.Context, workflowID string) (*models.ExecutionStats, error) {
	return e.persistence.ExecutionRepository().Stats(ctx, workflowID)
}
