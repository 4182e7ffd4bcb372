package engine

import (
	"errors"
	"fmt"
)

// ErrRunCancelled marks a run stopped by its context before completion.
// In-flight nodes were allowed to finish; the partial trace is preserved.
var ErrRunCancelled = errors.New("run cancelled")

// ErrInvalidJSON is returned by the node test harness when the supplied test
// input is not a JSON object.
var ErrInvalidJSON = errors.New("invalid json input")

// NodeExecutionError reports a node that failed at runtime. It is recorded in
// the execution trace and fails the run; it is never conflated with the
// structural errors the graph package reports.
type NodeExecutionError struct {
	NodeID   string
	NodeType string
	Err      error
}

func (e *NodeExecutionError) Error() string {
	return fmt.Sprintf("node %s (%s): %v", e.NodeID, e.NodeType, e.Err)
}

func (e *NodeExecutionError) Unwrap() error {
	return e.Err
}

func NewNodeExecutionError(nodeID, nodeType string, err error) *NodeExecutionError {
	return &NodeExecutionError{NodeID: nodeID, NodeType: nodeType, Err: err}
}
