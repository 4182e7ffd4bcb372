package delay

import (
	"context"
	"testing"
	"time"

	"github.com/rolerabbit/rabbitflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNode(t *testing.T) {
	tests := []struct {
		name    string
		config  map[string]any
		wantErr bool
	}{
		{"valid", map[string]any{"delay_ms": float64(100)}, false},
		{"zero delay", map[string]any{"delay_ms": float64(0)}, false},
		{"missing", map[string]any{}, true},
		{"negative", map[string]any{"delay_ms": float64(-1)}, true},
		{"over cap", map[string]any{"delay_ms": float64((25 * time.Hour).Milliseconds())}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewNode("n1", tt.config)

			if tt.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
		})
	}
}

func TestNode_Execute(t *testing.T) {
	node, err := NewNode("n1", map[string]any{"delay_ms": float64(20)})
	require.NoError(t, err)

	rc := models.NewRunContext("exec-1", "wf-1", nil, nil)

	started := time.Now()
	result, err := node.Execute(t.Context(), rc)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, time.Since(started), 20*time.Millisecond)
	assert.Equal(t, int64(20), result.Output["delayed_ms"])
}

func TestNode_Execute_Cancelled(t *testing.T) {
	node, err := NewNode("n1", map[string]any{"delay_ms": float64(5000)})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()

	rc := models.NewRunContext("exec-1", "wf-1", nil, nil)

	started := time.Now()
	_, err = node.Execute(ctx, rc)

	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(started), time.Second)
}
