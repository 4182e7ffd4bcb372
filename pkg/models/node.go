package models

import "time"

// CategoryType represents the category of a node type.
type CategoryType string

const (
	CategoryTypeTrigger   CategoryType = "trigger"
	CategoryTypeAction    CategoryType = "action"
	CategoryTypeCondition CategoryType = "condition"
	CategoryTypeLoop      CategoryType = "loop"
	CategoryTypeWait      CategoryType = "wait"
)

// Built-in node type identifiers. The set is closed: a workflow referencing a
// type outside the registry is structurally invalid.
const (
	NodeTypeTriggerManual   = "TRIGGER_MANUAL"
	NodeTypeTriggerSchedule = "TRIGGER_SCHEDULE"
	NodeTypeTriggerWebhook  = "TRIGGER_WEBHOOK"
	NodeTypeTriggerEvent    = "TRIGGER_EVENT"
	NodeTypeConditionIf     = "CONDITION_IF"
	NodeTypeConditionSwitch = "CONDITION_SWITCH"
	NodeTypeLoopForEach     = "LOOP_FOR_EACH"
	NodeTypeWaitDelay       = "WAIT_DELAY"
	NodeTypeAIAgentAnalyze  = "AI_AGENT_ANALYZE"
	NodeTypeHTTPRequest     = "HTTP_REQUEST"
	NodeTypeTransform       = "TRANSFORM"
	NodeTypeLog             = "LOG"
)

// Position holds the editor canvas coordinates of a node. It has no effect on
// execution semantics but must round-trip losslessly through persistence.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// WorkflowNode represents a single node instance in a workflow graph.
type WorkflowNode struct {
	ID       string         `json:"id"       validate:"required"`
	Type     string         `json:"type"     validate:"required"`
	Label    string         `json:"label"`
	Position Position       `json:"position"`
	Config   map[string]any `json:"config"`
}

// ContextKey returns the run-context key this node's output is stored under.
// The label wins when set so downstream nodes can reference steps by name.
func (n *WorkflowNode) ContextKey() string {
	if n.Label != "" {
		return n.Label
	}

	return n.ID
}

// NodeStatus defines the possible states of a node within an execution trace.
type NodeStatus string

const (
	NodeStatusPending   NodeStatus = "pending"
	NodeStatusRunning   NodeStatus = "running"
	NodeStatusSucceeded NodeStatus = "succeeded"
	NodeStatusFailed    NodeStatus = "failed"
	NodeStatusSkipped   NodeStatus = "skipped"
)

// NodeResult is the output of one node execution. Handle names the output
// handle the node routed to; empty means the unconditional default output.
type NodeResult struct {
	NodeID string         `json:"node_id"`
	Handle string         `json:"handle,omitempty"`
	Output map[string]any `json:"output,omitempty"`
}

// NodeTrace records one node's progress inside an execution record.
type NodeTrace struct {
	Status      NodeStatus     `json:"status"`
	Output      map[string]any `json:"output,omitempty"`
	Error       string         `json:"error,omitempty"`
	StartedAt   *time.Time     `json:"started_at,omitempty"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
}
