// Package graph holds the workflow graph model: node and connection mutation
// operations, structural invariants, serialization, and branch resolution.
package graph

import (
	"errors"
	"fmt"
)

// Structural sentinel errors. These are raised at mutation, save, or
// execution-start time and always surfaced to the caller.
var (
	// ErrInvalidNodeType indicates a node type outside the registry.
	ErrInvalidNodeType = errors.New("invalid node type")

	// ErrUnknownNodeReference indicates a connection endpoint that is not in the node set.
	ErrUnknownNodeReference = errors.New("unknown node reference")

	// ErrDuplicateHandleBinding indicates a second outgoing connection on the
	// same handle of a branching node.
	ErrDuplicateHandleBinding = errors.New("duplicate handle binding")

	// ErrGraphCycle indicates a cycle outside a loop body subgraph.
	ErrGraphCycle = errors.New("graph cycle detected")

	// ErrMissingSourceHandle indicates a branching-node connection without a handle.
	ErrMissingSourceHandle = errors.New("missing source handle")

	// ErrMalformedImport indicates an import payload that failed to parse or
	// is missing required fields.
	ErrMalformedImport = errors.New("malformed import payload")
)

// Validation error codes reported by Validate.
const (
	CodeInvalidNodeType        = "invalid_node_type"
	CodeUnknownNodeReference   = "unknown_node_reference"
	CodeGraphCycle             = "graph_cycle"
	CodeOrphanNode             = "orphan_node"
	CodeMissingTrigger         = "missing_trigger"
	CodeInvalidCron            = "invalid_cron"
	CodeInvalidTimezone        = "invalid_timezone"
	CodeMissingSourceHandle    = "missing_source_handle"
	CodeInconsistentCondition  = "inconsistent_condition"
	CodeDuplicateHandleBinding = "duplicate_handle_binding"
	CodeDuplicateContextKey    = "duplicate_context_key"
)

// GraphError describes one structural problem found by Validate.
type GraphError struct {
	Code         string `json:"code"`
	NodeID       string `json:"node_id,omitempty"`
	ConnectionID string `json:"connection_id,omitempty"`
	Message      string `json:"message"`
}

func (e GraphError) Error() string {
	switch {
	case e.NodeID != "":
		return fmt.Sprintf("%s (node %s): %s", e.Code, e.NodeID, e.Message)
	case e.ConnectionID != "":
		return fmt.Sprintf("%s (connection %s): %s", e.Code, e.ConnectionID, e.Message)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// ValidationError aggregates the full list of graph errors so a single save
// attempt reports everything wrong at once.
type ValidationError struct {
	Errors []GraphError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return "graph validation failed: " + e.Errors[0].Error()
	}

	return fmt.Sprintf("graph validation failed with %d errors", len(e.Errors))
}
