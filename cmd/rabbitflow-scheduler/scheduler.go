// Package main provides the rabbitflow scheduler: it keeps the due-time
// store in sync with active schedule-triggered workflows and enqueues their
// runs when they come due.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rolerabbit/rabbitflow/pkg/eventbus"
	"github.com/rolerabbit/rabbitflow/pkg/models"
	"github.com/rolerabbit/rabbitflow/pkg/persistence"
	"github.com/rolerabbit/rabbitflow/pkg/schedule"
	"github.com/rolerabbit/rabbitflow/pkg/services"
)

const (
	pollInterval = 10 * time.Second
	syncInterval = time.Minute
	pageSize     = 100
)

type Scheduler struct {
	logger           *slog.Logger
	persistence      persistence.Persistence
	store            *schedule.RedisStore
	executionService *services.Execution
}

func NewScheduler(
	logger *slog.Logger,
	p persistence.Persistence,
	store *schedule.RedisStore,
	eventBus eventbus.EventBus,
) *Scheduler {
	return &Scheduler{
		logger:           logger,
		persistence:      p,
		store:            store,
		executionService: services.NewExecution(p, eventBus, logger),
	}
}

// Start runs the sync and poll loops until SIGINT or SIGTERM.
func (s *Scheduler) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.sync(ctx)

	pollTicker := time.NewTicker(pollInterval)
	defer pollTicker.Stop()

	syncTicker := time.NewTicker(syncInterval)
	defer syncTicker.Stop()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	s.logger.InfoContext(ctx, "scheduler started")

	for {
		select {
		case <-pollTicker.C:
			s.dispatchDue(ctx)
		case <-syncTicker.C:
			s.sync(ctx)
		case <-sigChan:
			s.logger.Info("shutting down scheduler")

			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// sync rebuilds store entries from the active schedule-triggered workflows.
// Existing entries keep their due time; new workflows get their first one.
func (s *Scheduler) sync(ctx context.Context) {
	offset := 0

	for {
		page, err := s.persistence.WorkflowRepository().List(ctx, persistence.ListWorkflowsOptions{
			Status: models.WorkflowStatusActive,
			Limit:  pageSize,
			Offset: offset,
		})
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to list workflows", "error", err)

			return
		}

		for _, workflow := range page.Workflows {
			if workflow.TriggerType != models.TriggerTypeSchedule {
				continue
			}

			s.syncWorkflow(ctx, workflow)
		}

		offset += len(page.Workflows)
		if offset >= page.TotalCount || len(page.Workflows) == 0 {
			return
		}
	}
}

func (s *Scheduler) syncWorkflow(ctx context.Context, workflow *models.Workflow) {
	cronExpr, timezone := scheduleConfig(workflow)
	if cronExpr == "" {
		return
	}

	existing, err := s.store.Get(ctx, workflow.ID)
	if err == nil && existing.CronExpr == cronExpr && existing.Timezone == timezone {
		return
	}

	entry, err := schedule.New(workflow.ID, cronExpr, timezone)
	if err != nil {
		s.logger.ErrorContext(ctx, "invalid schedule config", "workflow_id", workflow.ID, "error", err)

		return
	}

	if err := s.store.Save(ctx, entry); err != nil {
		s.logger.ErrorContext(ctx, "failed to save schedule", "workflow_id", workflow.ID, "error", err)
	}
}

// dispatchDue enqueues a run for every due schedule and advances its due
// time.
func (s *Scheduler) dispatchDue(ctx context.Context) {
	now := time.Now().UTC()

	due, err := s.store.Due(ctx, now)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to query due schedules", "error", err)

		return
	}

	for _, entry := range due {
		execution, err := s.executionService.Enqueue(ctx, entry.WorkflowID, string(models.TriggerTypeSchedule), map[string]any{
			"scheduled_at": entry.NextDueAt.Format(time.RFC3339),
		})
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to enqueue scheduled run",
				"workflow_id", entry.WorkflowID,
				"error", err)

			if persistence.IsWorkflowNotFound(err) {
				if err := s.store.Delete(ctx, entry.WorkflowID); err != nil {
					s.logger.ErrorContext(ctx, "failed to drop schedule", "workflow_id", entry.WorkflowID, "error", err)
				}
			}

			continue
		}

		s.logger.InfoContext(ctx, "scheduled run enqueued",
			"workflow_id", entry.WorkflowID,
			"execution_id", execution.ID)

		if err := entry.Advance(now); err != nil {
			s.logger.ErrorContext(ctx, "failed to advance schedule", "workflow_id", entry.WorkflowID, "error", err)

			continue
		}

		if err := s.store.Save(ctx, entry); err != nil {
			s.logger.ErrorContext(ctx, "failed to save schedule", "workflow_id", entry.WorkflowID, "error", err)
		}
	}
}

func scheduleConfig(workflow *models.Workflow) (string, string) {
	for _, node := range workflow.Nodes {
		if node.Type != models.NodeTypeTriggerSchedule {
			continue
		}

		cronExpr, _ := node.Config["cron"].(string)
		timezone, _ := node.Config["timezone"].(string)

		return cronExpr, timezone
	}

	return "", ""
}
