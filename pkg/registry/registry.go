// Package registry provides the static catalog of node types: display
// metadata, category, config schema, and the factory that produces each
// type's executor.
package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/rolerabbit/rabbitflow/pkg/models"
	"github.com/rolerabbit/rabbitflow/pkg/protocol"
	"github.com/xeipuuv/gojsonschema"
)

// ErrUnregisteredNodeType is returned when a node type is not in the catalog.
var ErrUnregisteredNodeType = errors.New("node type not registered")

// SchemaValidationError reports a node config that fails its type's schema.
type SchemaValidationError struct {
	NodeType string
	Problems []string
}

func (e *SchemaValidationError) Error() string {
	return fmt.Sprintf("config for %s failed schema validation: %v", e.NodeType, e.Problems)
}

// Registry maps node type identifiers to their factories.
type Registry struct {
	logger    *slog.Logger
	factories map[string]protocol.NodeFactory
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger:    logger,
		factories: make(map[string]protocol.NodeFactory),
	}
}

// Register adds a node factory to the catalog.
func (r *Registry) Register(factory protocol.NodeFactory) {
	r.factories[factory.Type()] = factory
}

// Known reports whether a node type is in the catalog.
func (r *Registry) Known(nodeType string) bool {
	_, ok := r.factories[nodeType]

	return ok
}

// Category returns the category of a node type.
func (r *Registry) Category(nodeType string) (models.CategoryType, bool) {
	factory, ok := r.factories[nodeType]
	if !ok {
		return "", false
	}

	return factory.Category(), true
}

// Create validates config against the type's schema and builds an executor
// bound to the workflow node.
func (r *Registry) Create(nodeType, nodeID string, config map[string]any) (protocol.NodeExecutor, error) {
	factory, ok := r.factories[nodeType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnregisteredNodeType, nodeType)
	}

	if err := r.ValidateConfig(nodeType, config); err != nil {
		return nil, err
	}

	return factory.Create(nodeID, config)
}

// ValidateConfig checks a node config against the type's JSON schema.
func (r *Registry) ValidateConfig(nodeType string, config map[string]any) error {
	factory, ok := r.factories[nodeType]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnregisteredNodeType, nodeType)
	}

	schema := factory.Schema()
	if schema == nil {
		return nil
	}

	if config == nil {
		config = make(map[string]any)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(schema),
		gojsonschema.NewGoLoader(config),
	)
	if err != nil {
		return fmt.Errorf("schema validation for %s: %w", nodeType, err)
	}

	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		problems = append(problems, desc.String())
	}

	return &SchemaValidationError{NodeType: nodeType, Problems: problems}
}

// Definition is the editor-facing description of a node type.
type Definition struct {
	Type        string              `json:"type"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Category    models.CategoryType `json:"category"`
	Schema      map[string]any      `json:"schema"`
}

// Definitions lists every registered node type, sorted by type key.
func (r *Registry) Definitions() []Definition {
	definitions := make([]Definition, 0, len(r.factories))

	for _, factory := range r.factories {
		definitions = append(definitions, Definition{
			Type:        factory.Type(),
			Name:        factory.Name(),
			Description: factory.Description(),
			Category:    factory.Category(),
			Schema:      factory.Schema(),
		})
	}

	sort.Slice(definitions, func(i, j int) bool {
		return definitions[i].Type < definitions[j].Type
	})

	return definitions
}

// HealthCheck reports whether the catalog is usable.
func (r *Registry) HealthCheck() (string, bool) {
	if len(r.factories) == 0 {
		return "no node types registered", false
	}

	return fmt.Sprintf("%d node types registered", len(r.factories)), true
}
