// Package persistence provides the data storage abstraction for workflows
// and execution records.
package persistence

import (
	"context"

	"github.com/rolerabbit/rabbitflow/pkg/models"
)

// Persistence is the storage layer entry point. Implementations provide the
// repositories and own the underlying connection lifecycle.
type Persistence interface {
	WorkflowRepository() WorkflowRepository
	ExecutionRepository() ExecutionRepository
	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// ListWorkflowsOptions filters and pages workflow listings.
type ListWorkflowsOptions struct {
	Owner        string
	Status       models.WorkflowStatus
	TemplateOnly bool
	Limit        int
	Offset       int
}

// WorkflowListResult is one page of workflows plus the unpaged total.
type WorkflowListResult struct {
	Workflows  []*models.Workflow
	TotalCount int
}

// WorkflowRepository stores workflow definitions.
type WorkflowRepository interface {
	Save(ctx context.Context, workflow *models.Workflow) error
	GetByID(ctx context.Context, id string) (*models.Workflow, error)
	List(ctx context.Context, opts ListWorkflowsOptions) (*WorkflowListResult, error)
	Delete(ctx context.Context, id string) error
}

// ExecutionRepository stores execution records. Terminal executions are
// immutable; Save on a terminal record replaces it wholesale and is only
// valid from the engine finishing a run.
type ExecutionRepository interface {
	Save(ctx context.Context, execution *models.Execution) error
	GetByID(ctx context.Context, id string) (*models.Execution, error)
	ListByWorkflow(ctx context.Context, workflowID string) ([]*models.Execution, error)
	Stats(ctx context.Context, workflowID string) (*models.ExecutionStats, error)
}
