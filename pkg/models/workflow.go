// Package models defines the core domain models for node-based workflow automation.
package models

import "time"

// WorkflowStatus represents the lifecycle state of a workflow.
type WorkflowStatus string

const (
	WorkflowStatusDraft    WorkflowStatus = "draft"    // Editable, not executable
	WorkflowStatusActive   WorkflowStatus = "active"   // Executable
	WorkflowStatusPaused   WorkflowStatus = "paused"   // Temporarily not executable
	WorkflowStatusArchived WorkflowStatus = "archived" // Historical, read-only
)

// TriggerType defines how a workflow run is started.
type TriggerType string

const (
	TriggerTypeManual   TriggerType = "manual"
	TriggerTypeSchedule TriggerType = "schedule"
	TriggerTypeWebhook  TriggerType = "webhook"
	TriggerTypeEvent    TriggerType = "event"
)

// Workflow represents a node-based automation workflow. Nodes and connections
// form a directed graph; the only permitted cycles are the implicit ones inside
// loop node body subgraphs.
type Workflow struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"         validate:"required,min=3"`
	Description string          `json:"description"`
	Status      WorkflowStatus  `json:"status"       validate:"required,oneof=draft active paused archived"`
	TriggerType TriggerType     `json:"trigger_type" validate:"required,oneof=manual schedule webhook event"`
	Nodes       []*WorkflowNode `json:"nodes"`
	Connections []*Connection   `json:"connections"`
	Variables   map[string]any  `json:"variables,omitempty"`
	Owner       string          `json:"owner"`
	IsTemplate  bool            `json:"is_template,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   *time.Time      `json:"deleted_at,omitempty"`
}

// NodeByID returns the node with the given ID, or nil.
func (w *Workflow) NodeByID(id string) *WorkflowNode {
	for _, node := range w.Nodes {
		if node.ID == id {
			return node
		}
	}

	return nil
}

// IsExecutable reports whether the workflow may be run.
func (w *Workflow) IsExecutable() bool {
	return w.Status == WorkflowStatusActive || w.Status == WorkflowStatusDraft
}
