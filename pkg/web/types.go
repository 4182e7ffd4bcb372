// Package web provides the HTTP handlers and request/response types for the
// workflow API.
package web

import (
	"encoding/json"

	"github.com/rolerabbit/rabbitflow/pkg/models"
)

// CreateWorkflowRequest is the body for creating a new workflow.
type CreateWorkflowRequest struct {
	Name        string                 `json:"name"         validate:"required,min=3"`
	Description string                 `json:"description"`
	TriggerType models.TriggerType     `json:"trigger_type" validate:"omitempty,oneof=manual schedule webhook event"`
	Nodes       []*models.WorkflowNode `json:"nodes"`
	Connections []*models.Connection   `json:"connections"`
	Variables   map[string]any         `json:"variables,omitempty"`
	Owner       string                 `json:"owner"        validate:"required"`
	IsTemplate  bool                   `json:"is_template,omitempty"`
}

// UpdateGraphRequest replaces a workflow's nodes and connections wholesale.
type UpdateGraphRequest struct {
	Nodes       []*models.WorkflowNode `json:"nodes"       validate:"required"`
	Connections []*models.Connection   `json:"connections" validate:"required"`
}

// ExecuteWorkflowRequest starts an asynchronous run.
type ExecuteWorkflowRequest struct {
	TriggeredBy string         `json:"triggered_by"`
	TriggerData map[string]any `json:"trigger_data,omitempty"`
}

// ExecuteWorkflowResponse points the caller at the queued execution.
type ExecuteWorkflowResponse struct {
	ExecutionID string                 `json:"execution_id"`
	Status      models.ExecutionStatus `json:"status"`
}

// TestNodeRequest is the body for the node test harness endpoint. TestInput
// stays raw so malformed JSON is reported as invalid input rather than a
// body parse failure.
type TestNodeRequest struct {
	Node      *models.WorkflowNode `json:"node"       validate:"required"`
	TestInput json.RawMessage      `json:"test_input"`
}

// InstantiateTemplateRequest clones a template into an owned draft.
type InstantiateTemplateRequest struct {
	Owner string `json:"owner" validate:"required"`
	Name  string `json:"name"`
}

// ImportWorkflowRequest creates a workflow from an exported graph file.
type ImportWorkflowRequest struct {
	Name  string          `json:"name"  validate:"required,min=3"`
	Owner string          `json:"owner" validate:"required"`
	Graph json.RawMessage `json:"graph" validate:"required"`
}
