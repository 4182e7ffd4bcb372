package registry

import (
	"log/slog"
	"testing"

	"github.com/rolerabbit/rabbitflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultRegistry(t *testing.T) {
	reg := NewDefaultRegistry(slog.Default())

	expected := []string{
		models.NodeTypeTriggerManual,
		models.NodeTypeTriggerSchedule,
		models.NodeTypeTriggerWebhook,
		models.NodeTypeTriggerEvent,
		models.NodeTypeConditionIf,
		models.NodeTypeConditionSwitch,
		models.NodeTypeLoopForEach,
		models.NodeTypeWaitDelay,
		models.NodeTypeAIAgentAnalyze,
		models.NodeTypeHTTPRequest,
		models.NodeTypeTransform,
		models.NodeTypeLog,
	}

	for _, nodeType := range expected {
		assert.True(t, reg.Known(nodeType), "expected %s to be registered", nodeType)
	}

	assert.False(t, reg.Known("NOT_A_TYPE"))
}

func TestRegistry_Category(t *testing.T) {
	reg := NewDefaultRegistry(slog.Default())

	tests := []struct {
		nodeType string
		category models.CategoryType
	}{
		{models.NodeTypeTriggerManual, models.CategoryTypeTrigger},
		{models.NodeTypeConditionIf, models.CategoryTypeCondition},
		{models.NodeTypeConditionSwitch, models.CategoryTypeCondition},
		{models.NodeTypeLoopForEach, models.CategoryTypeLoop},
		{models.NodeTypeWaitDelay, models.CategoryTypeWait},
		{models.NodeTypeHTTPRequest, models.CategoryTypeAction},
	}

	for _, tt := range tests {
		t.Run(tt.nodeType, func(t *testing.T) {
			category, ok := reg.Category(tt.nodeType)
			require.True(t, ok)
			assert.Equal(t, tt.category, category)
		})
	}

	_, ok := reg.Category("NOT_A_TYPE")
	assert.False(t, ok)
}

func TestRegistry_Create(t *testing.T) {
	reg := NewDefaultRegistry(slog.Default())

	executor, err := reg.Create(models.NodeTypeLog, "node-1", map[string]any{"message": "hello"})
	require.NoError(t, err)
	assert.Equal(t, "node-1", executor.ID())
	assert.Equal(t, models.NodeTypeLog, executor.Type())
}

func TestRegistry_Create_Unregistered(t *testing.T) {
	reg := NewDefaultRegistry(slog.Default())

	_, err := reg.Create("NOT_A_TYPE", "node-1", nil)
	require.ErrorIs(t, err, ErrUnregisteredNodeType)
}

func TestRegistry_ValidateConfig(t *testing.T) {
	reg := NewDefaultRegistry(slog.Default())

	tests := []struct {
		name     string
		nodeType string
		config   map[string]any
		wantErr  bool
	}{
		{
			name:     "valid http config",
			nodeType: models.NodeTypeHTTPRequest,
			config:   map[string]any{"url": "https://example.com"},
			wantErr:  false,
		},
		{
			name:     "http missing url",
			nodeType: models.NodeTypeHTTPRequest,
			config:   map[string]any{"method": "GET"},
			wantErr:  true,
		},
		{
			name:     "condition missing expression",
			nodeType: models.NodeTypeConditionIf,
			config:   map[string]any{},
			wantErr:  true,
		},
		{
			name:     "log with bad level",
			nodeType: models.NodeTypeLog,
			config:   map[string]any{"message": "x", "level": "loud"},
			wantErr:  true,
		},
		{
			name:     "manual trigger takes empty config",
			nodeType: models.NodeTypeTriggerManual,
			config:   nil,
			wantErr:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := reg.ValidateConfig(tt.nodeType, tt.config)

			if !tt.wantErr {
				require.NoError(t, err)

				return
			}

			require.Error(t, err)

			var schemaErr *SchemaValidationError

			require.ErrorAs(t, err, &schemaErr)
			assert.Equal(t, tt.nodeType, schemaErr.NodeType)
			assert.NotEmpty(t, schemaErr.Problems)
		})
	}
}

func TestRegistry_Definitions(t *testing.T) {
	reg := NewDefaultRegistry(slog.Default())

	definitions := reg.Definitions()
	require.Len(t, definitions, 12)

	// Sorted by type key.
	for i := 1; i < len(definitions); i++ {
		assert.Less(t, definitions[i-1].Type, definitions[i].Type)
	}

	for _, definition := range definitions {
		assert.NotEmpty(t, definition.Name, "definition %s has no name", definition.Type)
		assert.NotEmpty(t, definition.Category)
	}
}

func TestRegistry_HealthCheck(t *testing.T) {
	reg := NewDefaultRegistry(slog.Default())

	message, healthy := reg.HealthCheck()
	assert.True(t, healthy)
	assert.Contains(t, message, "12 node types")

	empty := NewRegistry(slog.Default())

	_, healthy = empty.HealthCheck()
	assert.False(t, healthy)
}
