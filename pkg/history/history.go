// Package history implements the bounded undo/redo stack over workflow graph
// snapshots. A snapshot captures nodes and connections only; execution records
// and workflow metadata are outside its scope.
package history

import (
	"github.com/rolerabbit/rabbitflow/pkg/models"
)

// DefaultMaxHistory bounds the stack when no explicit limit is given.
const DefaultMaxHistory = 50

// Snapshot is one captured graph state. Snapshots handed out by the stack are
// independent deep copies; mutating one never affects the stack or another
// snapshot.
type Snapshot struct {
	Nodes       []*models.WorkflowNode `json:"nodes"`
	Connections []*models.Connection   `json:"connections"`
}

// Stack is a bounded snapshot stack with a cursor. Saving while undone
// discards the redo branch; saving at capacity evicts the oldest entry. The
// stack is intended for single-goroutine editor sessions and does no locking.
type Stack struct {
	max     int
	entries []*Snapshot
	cursor  int
}

func NewStack(max int) *Stack {
	if max < 1 {
		max = DefaultMaxHistory
	}

	return &Stack{max: max, cursor: -1}
}

// Initialize resets the stack to a single baseline snapshot. The baseline
// itself cannot be undone past.
func (s *Stack) Initialize(nodes []*models.WorkflowNode, connections []*models.Connection) {
	s.entries = []*Snapshot{clone(nodes, connections)}
	s.cursor = 0
}

// Save records a new state after a mutation. Any redo entries beyond the
// cursor are discarded first; if the stack is full the oldest entry is
// evicted.
func (s *Stack) Save(nodes []*models.WorkflowNode, connections []*models.Connection) {
	s.entries = append(s.entries[:s.cursor+1], clone(nodes, connections))

	if len(s.entries) > s.max {
		s.entries = s.entries[len(s.entries)-s.max:]
	}

	s.cursor = len(s.entries) - 1
}

// Undo moves the cursor back one state and returns it, or nil at the bound.
func (s *Stack) Undo() *Snapshot {
	if !s.CanUndo() {
		return nil
	}

	s.cursor--

	return cloneSnapshot(s.entries[s.cursor])
}

// Redo moves the cursor forward one state and returns it, or nil at the bound.
func (s *Stack) Redo() *Snapshot {
	if !s.CanRedo() {
		return nil
	}

	s.cursor++

	return cloneSnapshot(s.entries[s.cursor])
}

// Current returns the state at the cursor, or nil before Initialize.
func (s *Stack) Current() *Snapshot {
	if s.cursor < 0 || s.cursor >= len(s.entries) {
		return nil
	}

	return cloneSnapshot(s.entries[s.cursor])
}

func (s *Stack) CanUndo() bool {
	return s.cursor > 0
}

func (s *Stack) CanRedo() bool {
	return s.cursor >= 0 && s.cursor < len(s.entries)-1
}

// Len returns the number of stored snapshots.
func (s *Stack) Len() int {
	return len(s.entries)
}

func clone(nodes []*models.WorkflowNode, connections []*models.Connection) *Snapshot {
	return cloneSnapshot(&Snapshot{Nodes: nodes, Connections: connections})
}

func cloneSnapshot(snapshot *Snapshot) *Snapshot {
	copied := &Snapshot{
		Nodes:       make([]*models.WorkflowNode, 0, len(snapshot.Nodes)),
		Connections: make([]*models.Connection, 0, len(snapshot.Connections)),
	}

	for _, node := range snapshot.Nodes {
		cloned := *node
		cloned.Config = cloneMap(node.Config)
		copied.Nodes = append(copied.Nodes, &cloned)
	}

	for _, connection := range snapshot.Connections {
		cloned := *connection

		if connection.Condition != nil {
			condition := *connection.Condition
			cloned.Condition = &condition
		}

		copied.Connections = append(copied.Connections, &cloned)
	}

	return copied
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}

	copied := make(map[string]any, len(m))
	for key, value := range m {
		copied[key] = cloneValue(value)
	}

	return copied
}

func cloneValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return cloneMap(v)
	case []any:
		copied := make([]any, len(v))
		for i, item := range v {
			copied[i] = cloneValue(item)
		}

		return copied
	default:
		return v
	}
}
