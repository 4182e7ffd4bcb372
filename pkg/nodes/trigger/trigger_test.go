package trigger

import (
	"testing"

	"github.com/rolerabbit/rabbitflow/pkg/models"
	"github.com/rolerabbit/rabbitflow/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactories(t *testing.T) {
	tests := []struct {
		factory  protocol.NodeFactory
		nodeType string
	}{
		{NewManualFactory(), models.NodeTypeTriggerManual},
		{NewScheduleFactory(), models.NodeTypeTriggerSchedule},
		{NewWebhookFactory(), models.NodeTypeTriggerWebhook},
		{NewEventFactory(), models.NodeTypeTriggerEvent},
	}

	for _, tt := range tests {
		t.Run(tt.nodeType, func(t *testing.T) {
			assert.Equal(t, tt.nodeType, tt.factory.Type())
			assert.Equal(t, models.CategoryTypeTrigger, tt.factory.Category())
			assert.NotEmpty(t, tt.factory.Name())

			executor, err := tt.factory.Create("n1", nil)
			require.NoError(t, err)
			assert.Equal(t, "n1", executor.ID())
			assert.Equal(t, tt.nodeType, executor.Type())
		})
	}
}

func TestNode_Execute_PassesTriggerPayloadThrough(t *testing.T) {
	executor, err := NewManualFactory().Create("n1", nil)
	require.NoError(t, err)

	payload := map[string]any{"name": "alice", "score": float64(7)}
	rc := models.NewRunContext("exec-1", "wf-1", nil, payload)

	result, err := executor.Execute(t.Context(), rc)
	require.NoError(t, err)

	assert.Equal(t, payload, result.Output)
}
