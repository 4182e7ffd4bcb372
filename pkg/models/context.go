package models

import (
	"fmt"
	"strings"
	"sync"
)

// RunContext is the accumulating key/value store of node outputs during one
// execution. It is append-only: each node writes exactly one key (its own) and
// no key is ever overwritten, so concurrent node dispatch only needs the
// insertion mutex.
type RunContext struct {
	ExecutionID string
	WorkflowID  string

	variables map[string]any

	mu      sync.Mutex
	outputs map[string]map[string]any
}

// TriggerKey is the run-context key holding the trigger payload.
const TriggerKey = "trigger"

// NewRunContext creates a run context seeded with the workflow variables and
// the trigger payload.
func NewRunContext(executionID, workflowID string, variables, triggerData map[string]any) *RunContext {
	rc := &RunContext{
		ExecutionID: executionID,
		WorkflowID:  workflowID,
		variables:   variables,
		outputs:     make(map[string]map[string]any),
	}

	if triggerData == nil {
		triggerData = make(map[string]any)
	}

	rc.outputs[TriggerKey] = triggerData

	return rc
}

// SetOutput records a node's output under key. Overwriting an existing key is
// an error: the context is append-only by contract.
func (rc *RunContext) SetOutput(key string, output map[string]any) error {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if _, exists := rc.outputs[key]; exists {
		return fmt.Errorf("run context key %q already written", key)
	}

	rc.outputs[key] = output

	return nil
}

// Output returns the output recorded under key.
func (rc *RunContext) Output(key string) (map[string]any, bool) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	out, ok := rc.outputs[key]

	return out, ok
}

// Variable returns a workflow-scoped variable.
func (rc *RunContext) Variable(name string) (any, bool) {
	v, ok := rc.variables[name]

	return v, ok
}

// Lookup resolves a dot-separated path ("analyze.score", "trigger.jobs")
// against the recorded outputs.
func (rc *RunContext) Lookup(path string) (any, bool) {
	segments := strings.Split(path, ".")

	output, ok := rc.Output(segments[0])
	if !ok {
		return nil, false
	}

	var current any = output
	for _, segment := range segments[1:] {
		asMap, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}

		current, ok = asMap[segment]
		if !ok {
			return nil, false
		}
	}

	return current, true
}

// Snapshot returns a shallow copy of all recorded outputs.
func (rc *RunContext) Snapshot() map[string]map[string]any {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	copied := make(map[string]map[string]any, len(rc.outputs))
	for key, value := range rc.outputs {
		copied[key] = value
	}

	return copied
}

// Child creates an isolated sub-context for one loop iteration: it sees the
// parent's outputs so far plus the current item, but its own writes stay local
// until the engine merges iteration results back.
func (rc *RunContext) Child(item any, index int) *RunContext {
	child := &RunContext{
		ExecutionID: rc.ExecutionID,
		WorkflowID:  rc.WorkflowID,
		variables:   rc.variables,
		outputs:     rc.Snapshot(),
	}

	child.outputs["loop"] = map[string]any{
		"item":  item,
		"index": index,
	}

	return child
}

// NewKeysSince returns the outputs present in rc but absent from base. Used to
// collect what one loop iteration produced.
func (rc *RunContext) NewKeysSince(base map[string]map[string]any) map[string]map[string]any {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	produced := make(map[string]map[string]any)

	for key, value := range rc.outputs {
		if _, existed := base[key]; !existed {
			produced[key] = value
		}
	}

	return produced
}
