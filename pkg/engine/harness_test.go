package engine

import (
	"encoding/json"
	"testing"

	"github.com/rolerabbit/rabbitflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_TestNode_Success(t *testing.T) {
	node := &models.WorkflowNode{
		ID:   "n1",
		Type: models.NodeTypeTransform,
		Config: map[string]any{
			"expression": map[string]any{"greeting": "hi {{trigger.name}}"},
		},
	}

	result, err := testEngine().TestNode(t.Context(), node, json.RawMessage(`{"name": "bob"}`))
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Nil(t, result.Error)
	assert.Equal(t, "hi bob", result.Result["greeting"])
	assert.GreaterOrEqual(t, result.DurationMs, int64(0))
}

func TestEngine_TestNode_ConditionHandles(t *testing.T) {
	node := &models.WorkflowNode{
		ID:   "n1",
		Type: models.NodeTypeConditionIf,
		Config: map[string]any{
			"expression": "{{trigger.score}} >= 7",
		},
	}

	result, err := testEngine().TestNode(t.Context(), node, json.RawMessage(`{"score": 9}`))
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, true, result.Result["condition_result"])
}

func TestEngine_TestNode_ExecutorFailureInResult(t *testing.T) {
	tests := []struct {
		name string
		node *models.WorkflowNode
	}{
		{
			name: "config fails schema",
			node: &models.WorkflowNode{
				ID:     "n1",
				Type:   models.NodeTypeLog,
				Config: map[string]any{"level": "info"},
			},
		},
		{
			name: "unregistered type",
			node: &models.WorkflowNode{
				ID:   "n1",
				Type: "NOT_A_TYPE",
			},
		},
		{
			name: "expression error",
			node: &models.WorkflowNode{
				ID:   "n1",
				Type: models.NodeTypeConditionIf,
				Config: map[string]any{
					"expression": "{{trigger.name}} > 5",
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := testEngine().TestNode(t.Context(), tt.node, json.RawMessage(`{"name": "alice"}`))

			// Failures are reported in the result, not as a call error.
			require.NoError(t, err)
			assert.False(t, result.Success)
			require.NotNil(t, result.Error)
			assert.NotEmpty(t, result.Error.Message)
		})
	}
}

func TestEngine_TestNode_MalformedInput(t *testing.T) {
	node := &models.WorkflowNode{
		ID:     "n1",
		Type:   models.NodeTypeLog,
		Config: map[string]any{"message": "x"},
	}

	tests := []struct {
		name  string
		input json.RawMessage
	}{
		{"broken json", json.RawMessage(`{broken`)},
		{"non-object", json.RawMessage(`[1, 2, 3]`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := testEngine().TestNode(t.Context(), node, tt.input)
			require.ErrorIs(t, err, ErrInvalidJSON)
			assert.Nil(t, result)
		})
	}
}

func TestEngine_TestNode_EmptyInput(t *testing.T) {
	node := &models.WorkflowNode{
		ID:     "n1",
		Type:   models.NodeTypeLog,
		Config: map[string]any{"message": "static"},
	}

	result, err := testEngine().TestNode(t.Context(), node, nil)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "static", result.Result["message"])
}
