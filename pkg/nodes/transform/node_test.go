package transform

import (
	"testing"

	"github.com/rolerabbit/rabbitflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNode(t *testing.T) {
	_, err := NewNode("n1", map[string]any{
		"expression": map[string]any{"out": "{{trigger.in}}"},
	})
	require.NoError(t, err)

	_, err = NewNode("n1", map[string]any{})
	require.Error(t, err)

	_, err = NewNode("n1", map[string]any{"expression": map[string]any{}})
	require.Error(t, err)
}

func TestNode_Execute(t *testing.T) {
	node, err := NewNode("n1", map[string]any{
		"expression": map[string]any{
			"name":  "{{trigger.user.name}}",
			"label": "user {{trigger.user.name}}",
			"raw":   42,
			"items": []any{"{{trigger.user.name}}", "fixed"},
		},
	})
	require.NoError(t, err)

	rc := models.NewRunContext("exec-1", "wf-1", nil, map[string]any{
		"user": map[string]any{"name": "carol"},
	})

	result, err := node.Execute(t.Context(), rc)
	require.NoError(t, err)

	assert.Equal(t, "carol", result.Output["name"])
	assert.Equal(t, "user carol", result.Output["label"])
	assert.Equal(t, 42, result.Output["raw"])
	assert.Equal(t, []any{"carol", "fixed"}, result.Output["items"])
}
