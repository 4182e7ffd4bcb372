package graph

import (
	"encoding/json"
	"fmt"

	"github.com/rolerabbit/rabbitflow/pkg/models"
)

// persistedGraph is the canonical stored form of a graph. Round-tripping
// through it is lossless for node config, position, and every connection
// field including the derived condition.
type persistedGraph struct {
	Nodes       []*models.WorkflowNode `json:"nodes"`
	Connections []*models.Connection   `json:"connections"`
}

// ToJSON serializes the graph's nodes and connections.
func (g *Graph) ToJSON() ([]byte, error) {
	return json.Marshal(persistedGraph{
		Nodes:       g.workflow.Nodes,
		Connections: g.workflow.Connections,
	})
}

// FromJSON replaces the graph's nodes and connections with the persisted
// form. The graph is only mutated after the payload parses completely.
func (g *Graph) FromJSON(data []byte) error {
	var persisted persistedGraph

	if err := json.Unmarshal(data, &persisted); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedImport, err)
	}

	g.workflow.Nodes = persisted.Nodes
	g.workflow.Connections = persisted.Connections

	return nil
}

// ExportFile is the client-side interchange format: nodes, edges, and the
// editor viewport.
type ExportFile struct {
	Nodes    []*models.WorkflowNode `json:"nodes"`
	Edges    []*models.Connection   `json:"edges"`
	Viewport map[string]any         `json:"viewport,omitempty"`
}

// Export produces the interchange file for the current graph.
func (g *Graph) Export(viewport map[string]any) ([]byte, error) {
	return json.MarshalIndent(ExportFile{
		Nodes:    g.workflow.Nodes,
		Edges:    g.workflow.Connections,
		Viewport: viewport,
	}, "", "  ")
}

// Import atomically loads an interchange file: the payload is parsed and
// checked in full before the live graph is touched, so a malformed file
// leaves the graph byte-for-byte unchanged.
func (g *Graph) Import(data []byte) error {
	var raw map[string]json.RawMessage

	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedImport, err)
	}

	nodesRaw, ok := raw["nodes"]
	if !ok {
		return fmt.Errorf("%w: missing required field %q", ErrMalformedImport, "nodes")
	}

	edgesRaw, ok := raw["edges"]
	if !ok {
		return fmt.Errorf("%w: missing required field %q", ErrMalformedImport, "edges")
	}

	var nodes []*models.WorkflowNode
	if err := json.Unmarshal(nodesRaw, &nodes); err != nil {
		return fmt.Errorf("%w: nodes: %v", ErrMalformedImport, err)
	}

	var edges []*models.Connection
	if err := json.Unmarshal(edgesRaw, &edges); err != nil {
		return fmt.Errorf("%w: edges: %v", ErrMalformedImport, err)
	}

	for _, edge := range edges {
		edge.Normalize()
	}

	g.workflow.Nodes = nodes
	g.workflow.Connections = edges

	return nil
}
