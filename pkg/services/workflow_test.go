package services

import (
	"log/slog"
	"testing"

	"github.com/rolerabbit/rabbitflow/pkg/graph"
	"github.com/rolerabbit/rabbitflow/pkg/models"
	"github.com/rolerabbit/rabbitflow/pkg/persistence"
	"github.com/rolerabbit/rabbitflow/pkg/persistence/file"
	"github.com/rolerabbit/rabbitflow/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWorkflowService(t *testing.T) (*Workflow, persistence.Persistence) {
	t.Helper()

	p := file.NewPersistence(t.TempDir())
	reg := registry.NewDefaultRegistry(slog.Default())

	return NewWorkflow(p, reg, slog.Default()), p
}

func validWorkflow(name string) *models.Workflow {
	return &models.Workflow{
		Name:        name,
		Status:      models.WorkflowStatusDraft,
		TriggerType: models.TriggerTypeManual,
		Nodes: []*models.WorkflowNode{
			{ID: "t", Type: models.NodeTypeTriggerManual, Config: map[string]any{}},
			{ID: "log", Type: models.NodeTypeLog, Config: map[string]any{"message": "hi"}},
		},
		Connections: []*models.Connection{
			{ID: "c1", Source: "t", Target: "log"},
		},
	}
}

func TestWorkflow_Create(t *testing.T) {
	service, _ := newWorkflowService(t)

	created, err := service.Create(t.Context(), validWorkflow("My Workflow"))
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Equal(t, models.WorkflowStatusDraft, created.Status)

	loaded, err := service.Get(t.Context(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "My Workflow", loaded.Name)
}

func TestWorkflow_Create_Defaults(t *testing.T) {
	service, _ := newWorkflowService(t)

	workflow := validWorkflow("Defaults")
	workflow.Status = ""
	workflow.TriggerType = ""

	created, err := service.Create(t.Context(), workflow)
	require.NoError(t, err)
	assert.Equal(t, models.WorkflowStatusDraft, created.Status)
	assert.Equal(t, models.TriggerTypeManual, created.TriggerType)
}

func TestWorkflow_Create_Invalid(t *testing.T) {
	service, _ := newWorkflowService(t)

	t.Run("nil workflow", func(t *testing.T) {
		_, err := service.Create(t.Context(), nil)
		require.ErrorIs(t, err, ErrWorkflowNil)
	})

	t.Run("name too short", func(t *testing.T) {
		workflow := validWorkflow("ab")

		_, err := service.Create(t.Context(), workflow)
		require.ErrorIs(t, err, ErrInvalidRequest)
		assert.True(t, IsValidationError(err))
	})

	t.Run("structurally invalid graph", func(t *testing.T) {
		workflow := validWorkflow("Broken Graph")
		workflow.Connections = []*models.Connection{
			{ID: "c1", Source: "t", Target: "nowhere"},
		}

		_, err := service.Create(t.Context(), workflow)
		require.Error(t, err)

		var validationErr *graph.ValidationError

		require.ErrorAs(t, err, &validationErr)
		assert.NotEmpty(t, validationErr.Errors)
		assert.True(t, IsValidationError(err))
	})
}

func TestWorkflow_List(t *testing.T) {
	service, _ := newWorkflowService(t)

	for _, name := range []string{"First Workflow", "Second Workflow", "Third Workflow"} {
		_, err := service.Create(t.Context(), validWorkflow(name))
		require.NoError(t, err)
	}

	page, err := service.List(t.Context(), ListWorkflowsRequest{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalCount)
	assert.Len(t, page.Workflows, 2)
	assert.True(t, page.HasNextPage)

	rest, err := service.List(t.Context(), ListWorkflowsRequest{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, rest.Workflows, 1)
	assert.False(t, rest.HasNextPage)
}

func TestWorkflow_UpdateGraph(t *testing.T) {
	service, _ := newWorkflowService(t)

	created, err := service.Create(t.Context(), validWorkflow("To Update"))
	require.NoError(t, err)

	nodes := []*models.WorkflowNode{
		{ID: "t", Type: models.NodeTypeTriggerManual, Config: map[string]any{}},
		{ID: "check", Type: models.NodeTypeConditionIf, Config: map[string]any{"expression": "trigger.ok"}},
		{ID: "yes", Type: models.NodeTypeLog, Config: map[string]any{"message": "yes"}},
	}
	connections := []*models.Connection{
		{ID: "c1", Source: "t", Target: "check"},
		{ID: "c2", Source: "check", Target: "yes", SourceHandle: models.HandleTrue},
	}

	updated, err := service.UpdateGraph(t.Context(), created.ID, nodes, connections)
	require.NoError(t, err)
	assert.Len(t, updated.Nodes, 3)

	// Normalize derived the condition from the handle.
	require.NotNil(t, updated.Connections[1].Condition)
	assert.True(t, *updated.Connections[1].Condition)
}

func TestWorkflow_UpdateGraph_RejectsInvalid(t *testing.T) {
	service, _ := newWorkflowService(t)

	created, err := service.Create(t.Context(), validWorkflow("Gatekept"))
	require.NoError(t, err)

	badNodes := []*models.WorkflowNode{
		{ID: "t", Type: models.NodeTypeTriggerManual, Config: map[string]any{}},
		{ID: "orphan", Type: models.NodeTypeLog, Config: map[string]any{"message": "x"}},
	}

	_, err = service.UpdateGraph(t.Context(), created.ID, badNodes, nil)
	require.Error(t, err)

	var validationErr *graph.ValidationError

	require.ErrorAs(t, err, &validationErr)

	// The stored graph is unchanged after a rejected update.
	loaded, err := service.Get(t.Context(), created.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.Nodes, 2)
	assert.Len(t, loaded.Connections, 1)
}

func TestWorkflow_UpdateGraph_ArchivedIsReadOnly(t *testing.T) {
	service, p := newWorkflowService(t)

	workflow := validWorkflow("Archived One")
	workflow.Status = models.WorkflowStatusArchived
	require.NoError(t, p.WorkflowRepository().Save(t.Context(), workflow))

	_, err := service.UpdateGraph(t.Context(), workflow.ID, workflow.Nodes, workflow.Connections)
	require.ErrorIs(t, err, ErrWorkflowArchived)
	assert.True(t, IsConflictError(err))
}

func TestWorkflow_Delete(t *testing.T) {
	service, _ := newWorkflowService(t)

	created, err := service.Create(t.Context(), validWorkflow("To Delete"))
	require.NoError(t, err)

	require.NoError(t, service.Delete(t.Context(), created.ID))

	_, err = service.Get(t.Context(), created.ID)
	assert.True(t, persistence.IsWorkflowNotFound(err))
}

func TestWorkflow_ExportImportRoundTrip(t *testing.T) {
	service, _ := newWorkflowService(t)

	created, err := service.Create(t.Context(), validWorkflow("Exported"))
	require.NoError(t, err)

	data, err := service.Export(t.Context(), created.ID, map[string]any{"zoom": 1})
	require.NoError(t, err)

	imported, err := service.Import(t.Context(), "Imported Copy", "alice", data)
	require.NoError(t, err)

	assert.NotEqual(t, created.ID, imported.ID)
	assert.Equal(t, models.WorkflowStatusDraft, imported.Status)
	assert.Equal(t, "alice", imported.Owner)
	assert.Len(t, imported.Nodes, len(created.Nodes))
}

func TestWorkflow_Import_Invalid(t *testing.T) {
	service, _ := newWorkflowService(t)

	t.Run("name required", func(t *testing.T) {
		_, err := service.Import(t.Context(), "", "alice", []byte(`{"nodes": [], "edges": []}`))
		require.ErrorIs(t, err, ErrWorkflowNameRequired)
	})

	t.Run("malformed payload", func(t *testing.T) {
		_, err := service.Import(t.Context(), "Broken Import", "alice", []byte(`{nope`))
		require.ErrorIs(t, err, ErrInvalidRequest)
	})
}

func TestWorkflow_HealthCheck(t *testing.T) {
	service, _ := newWorkflowService(t)

	message, healthy := service.HealthCheck(t.Context())
	assert.True(t, healthy)
	assert.NotEmpty(t, message)
}
