// Package main provides the rabbitflow worker: it consumes execution
// requests from the event bus, runs them through the engine, and publishes
// lifecycle events.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/rolerabbit/rabbitflow/pkg/engine"
	"github.com/rolerabbit/rabbitflow/pkg/eventbus"
	"github.com/rolerabbit/rabbitflow/pkg/events"
	"github.com/rolerabbit/rabbitflow/pkg/models"
	"github.com/rolerabbit/rabbitflow/pkg/persistence"
	"github.com/rolerabbit/rabbitflow/pkg/registry"
)

type Worker struct {
	id          string
	logger      *slog.Logger
	persistence persistence.Persistence
	engine      *engine.Engine
	eventBus    eventbus.EventBus
}

func NewWorker(
	id string,
	logger *slog.Logger,
	p persistence.Persistence,
	reg *registry.Registry,
	eventBus eventbus.EventBus,
	tracer trace.Tracer,
) *Worker {
	return &Worker{
		id:          id,
		logger:      logger,
		persistence: p,
		engine:      engine.New(reg, logger, tracer),
		eventBus:    eventBus,
	}
}

// Start subscribes to execution requests and blocks until SIGINT or SIGTERM.
func (w *Worker) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := w.eventBus.Handle(events.ExecutionRequestedEvent, w.handleExecutionRequested); err != nil {
		return err
	}

	if err := w.eventBus.Subscribe(ctx); err != nil {
		return err
	}

	w.logger.InfoContext(ctx, "worker started")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	w.logger.Info("shutting down worker")
	cancel()

	return nil
}

func (w *Worker) handleExecutionRequested(ctx context.Context, event any) error {
	requested, ok := event.(*events.ExecutionRequested)
	if !ok {
		w.logger.ErrorContext(ctx, "invalid event type for execution request")

		return nil
	}

	logger := w.logger.With(
		"workflow_id", requested.WorkflowID,
		"execution_id", requested.ExecutionID)

	logger.InfoContext(ctx, "processing execution request")

	workflow, err := w.persistence.WorkflowRepository().GetByID(ctx, requested.WorkflowID)
	if err != nil {
		logger.ErrorContext(ctx, "failed to load workflow", "error", err)

		return err
	}

	w.markRunning(ctx, logger, workflow.ID, requested)

	started := events.ExecutionStarted{
		BaseEvent:   events.NewBaseEvent(events.ExecutionStartedEvent, workflow.ID),
		ExecutionID: requested.ExecutionID,
	}
	started.WorkerID = w.id

	if err := w.eventBus.Publish(ctx, workflow.ID, started); err != nil {
		logger.ErrorContext(ctx, "failed to publish execution started event", "error", err)
	}

	execution, runErr := w.engine.Run(ctx, workflow, requested.ExecutionID, requested.TriggeredBy, requested.TriggerData)

	if err := w.persistence.ExecutionRepository().Save(ctx, execution); err != nil {
		logger.ErrorContext(ctx, "failed to persist execution", "error", err)

		return err
	}

	w.publishOutcome(ctx, logger, execution, runErr)

	return nil
}

// markRunning flips the queued record to running so status polling observes
// the run while it is in flight. The terminal save after the run replaces it.
func (w *Worker) markRunning(ctx context.Context, logger *slog.Logger, workflowID string, requested *events.ExecutionRequested) {
	execution, err := w.persistence.ExecutionRepository().GetByID(ctx, requested.ExecutionID)
	if err != nil {
		execution = &models.Execution{
			ID:          requested.ExecutionID,
			WorkflowID:  workflowID,
			TriggeredBy: requested.TriggeredBy,
			StartedAt:   time.Now().UTC(),
		}
	}

	execution.Status = models.ExecutionStatusRunning

	if err := w.persistence.ExecutionRepository().Save(ctx, execution); err != nil {
		logger.ErrorContext(ctx, "failed to mark execution running", "error", err)
	}
}

func (w *Worker) publishOutcome(ctx context.Context, logger *slog.Logger, execution *models.Execution, runErr error) {
	var event eventbus.Event

	switch {
	case runErr == nil:
		completed := events.ExecutionCompleted{
			BaseEvent:   events.NewBaseEvent(events.ExecutionCompletedEvent, execution.WorkflowID),
			ExecutionID: execution.ID,
			DurationMs:  execution.DurationMs,
		}
		completed.WorkerID = w.id
		event = completed
	case errors.Is(runErr, engine.ErrRunCancelled):
		cancelled := events.ExecutionCancelled{
			BaseEvent:   events.NewBaseEvent(events.ExecutionCancelledEvent, execution.WorkflowID),
			ExecutionID: execution.ID,
		}
		cancelled.WorkerID = w.id
		event = cancelled
	default:
		failed := events.ExecutionFailed{
			BaseEvent:   events.NewBaseEvent(events.ExecutionFailedEvent, execution.WorkflowID),
			ExecutionID: execution.ID,
			Error:       runErr.Error(),
		}
		failed.WorkerID = w.id
		event = failed
	}

	if err := w.eventBus.Publish(ctx, execution.WorkflowID, event); err != nil {
		logger.ErrorContext(ctx, "failed to publish execution outcome", "error", err)
	}
}
