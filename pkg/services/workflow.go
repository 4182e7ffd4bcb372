package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/rolerabbit/rabbitflow/pkg/graph"
	"github.com/rolerabbit/rabbitflow/pkg/models"
	"github.com/rolerabbit/rabbitflow/pkg/persistence"
	"github.com/rolerabbit/rabbitflow/pkg/registry"
)

// ErrWorkflowNotFound is returned when a workflow is not found.
var ErrWorkflowNotFound = persistence.ErrWorkflowNotFound

// Workflow is the workflow definition service: CRUD, graph replacement with
// the structural validation gate, and export/import.
type Workflow struct {
	persistence persistence.Persistence
	registry    *registry.Registry
	validate    *validator.Validate
	logger      *slog.Logger
}

func NewWorkflow(p persistence.Persistence, reg *registry.Registry, logger *slog.Logger) *Workflow {
	return &Workflow{
		persistence: p,
		registry:    reg,
		validate:    validator.New(),
		logger:      logger.With("module", "workflow_service"),
	}
}

// HealthCheck checks the health of the persistence layer.
func (w *Workflow) HealthCheck(ctx context.Context) (string, bool) {
	if w.persistence == nil {
		return "persistence layer not initialized", false
	}

	if err := w.persistence.HealthCheck(ctx); err != nil {
		return "persistence layer is unhealthy: " + err.Error(), false
	}

	return "persistence layer is healthy", true
}

// Create validates and saves a new workflow. New workflows start as drafts
// unless a status is supplied; the graph must pass structural validation.
func (w *Workflow) Create(ctx context.Context, workflow *models.Workflow) (*models.Workflow, error) {
	if workflow == nil {
		return nil, ErrWorkflowNil
	}

	if workflow.Status == "" {
		workflow.Status = models.WorkflowStatusDraft
	}

	if workflow.TriggerType == "" {
		workflow.TriggerType = models.TriggerTypeManual
	}

	if err := w.validate.Struct(workflow); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	if err := w.validateGraph(workflow); err != nil {
		return nil, err
	}

	if err := w.persistence.WorkflowRepository().Save(ctx, workflow); err != nil {
		return nil, fmt.Errorf("failed to save workflow: %w", err)
	}

	w.logger.InfoContext(ctx, "workflow created", "workflow_id", workflow.ID, "name", workflow.Name)

	return workflow, nil
}

func (w *Workflow) Get(ctx context.Context, id string) (*models.Workflow, error) {
	return w.persistence.WorkflowRepository().GetByID(ctx, id)
}

// ListWorkflowsRequest contains options for listing workflows.
type ListWorkflowsRequest struct {
	Limit        int
	Offset       int
	Owner        string
	Status       models.WorkflowStatus
	TemplateOnly bool
}

// ListWorkflowsResponse contains one page of workflows.
type ListWorkflowsResponse struct {
	Workflows   []*models.Workflow `json:"workflows"`
	TotalCount  int                `json:"total_count"`
	HasNextPage bool               `json:"has_next_page"`
}

func (w *Workflow) List(ctx context.Context, req ListWorkflowsRequest) (*ListWorkflowsResponse, error) {
	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 20
	}

	if req.Offset < 0 {
		req.Offset = 0
	}

	result, err := w.persistence.WorkflowRepository().List(ctx, persistence.ListWorkflowsOptions{
		Owner:        req.Owner,
		Status:       req.Status,
		TemplateOnly: req.TemplateOnly,
		Limit:        req.Limit,
		Offset:       req.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}

	return &ListWorkflowsResponse{
		Workflows:   result.Workflows,
		TotalCount:  result.TotalCount,
		HasNextPage: req.Offset+len(result.Workflows) < result.TotalCount,
	}, nil
}

// UpdateGraph replaces a workflow's nodes and connections after the
// structural validation gate. Archived workflows are read-only.
func (w *Workflow) UpdateGraph(ctx context.Context, id string, nodes []*models.WorkflowNode, connections []*models.Connection) (*models.Workflow, error) {
	workflow, err := w.persistence.WorkflowRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if workflow.Status == models.WorkflowStatusArchived {
		return nil, fmt.Errorf("%w: %s", ErrWorkflowArchived, id)
	}

	for _, connection := range connections {
		connection.Normalize()
	}

	workflow.Nodes = nodes
	workflow.Connections = connections

	if err := w.validateGraph(workflow); err != nil {
		return nil, err
	}

	if err := w.persistence.WorkflowRepository().Save(ctx, workflow); err != nil {
		return nil, fmt.Errorf("failed to save workflow: %w", err)
	}

	w.logger.InfoContext(ctx, "workflow graph updated",
		"workflow_id", id,
		"nodes", len(nodes),
		"connections", len(connections))

	return workflow, nil
}

func (w *Workflow) Delete(ctx context.Context, id string) error {
	if err := w.persistence.WorkflowRepository().Delete(ctx, id); err != nil {
		return err
	}

	w.logger.InfoContext(ctx, "workflow deleted", "workflow_id", id)

	return nil
}

// Export produces the interchange file for a workflow's graph.
func (w *Workflow) Export(ctx context.Context, id string, viewport map[string]any) ([]byte, error) {
	workflow, err := w.persistence.WorkflowRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return graph.New(workflow, w.registry).Export(viewport)
}

// Import creates a new draft workflow from an interchange file. The payload
// is parsed and validated in full before anything is persisted.
func (w *Workflow) Import(ctx context.Context, name, owner string, data []byte) (*models.Workflow, error) {
	if name == "" {
		return nil, ErrWorkflowNameRequired
	}

	workflow := &models.Workflow{
		Name:        name,
		Status:      models.WorkflowStatusDraft,
		TriggerType: models.TriggerTypeManual,
		Owner:       owner,
	}

	g := graph.New(workflow, w.registry)

	if err := g.Import(data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	if err := w.validateGraph(workflow); err != nil {
		return nil, err
	}

	if err := w.persistence.WorkflowRepository().Save(ctx, workflow); err != nil {
		return nil, fmt.Errorf("failed to save imported workflow: %w", err)
	}

	w.logger.InfoContext(ctx, "workflow imported", "workflow_id", workflow.ID, "name", name)

	return workflow, nil
}

func (w *Workflow) validateGraph(workflow *models.Workflow) error {
	if problems := graph.New(workflow, w.registry).Validate(); len(problems) > 0 {
		return &graph.ValidationError{Errors: problems}
	}

	return nil
}
