package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rolerabbit/rabbitflow/pkg/models"
	"github.com/rolerabbit/rabbitflow/pkg/template"
)

// TestResult is the outcome of one isolated node invocation.
type TestResult struct {
	Success    bool           `json:"success"`
	Result     map[string]any `json:"result,omitempty"`
	Error      *TestError     `json:"error,omitempty"`
	DurationMs int64          `json:"duration_ms"`
}

// TestError carries the failure message of a test invocation.
type TestError struct {
	Message string `json:"message"`
}

// TestNode runs a single node against the supplied test input without
// touching any workflow state. The input must decode to a JSON object; it is
// exposed to the node as the trigger payload. Executor and config failures
// are reported in the result, not as an error; only malformed input fails the
// call itself.
func (e *Engine) TestNode(ctx context.Context, node *models.WorkflowNode, testInput json.RawMessage) (*TestResult, error) {
	payload := make(map[string]any)

	if len(testInput) > 0 {
		if err := json.Unmarshal(testInput, &payload); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
		}
	}

	rc := models.NewRunContext(uuid.New().String(), "", nil, payload)
	started := time.Now()

	result, err := e.invokeOnce(ctx, rc, node)
	durationMs := time.Since(started).Milliseconds()

	if err != nil {
		return &TestResult{
			Success:    false,
			Error:      &TestError{Message: err.Error()},
			DurationMs: durationMs,
		}, nil
	}

	return &TestResult{
		Success:    true,
		Result:     result.Output,
		DurationMs: durationMs,
	}, nil
}

func (e *Engine) invokeOnce(ctx context.Context, rc *models.RunContext, node *models.WorkflowNode) (*models.NodeResult, error) {
	config, err := template.RenderConfig(node.Config, rc)
	if err != nil {
		return nil, fmt.Errorf("rendering config: %w", err)
	}

	executor, err := e.registry.Create(node.Type, node.ID, config)
	if err != nil {
		return nil, err
	}

	return executor.Execute(ctx, rc)
}
