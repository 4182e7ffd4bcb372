package models

// Output handle names used by branching and loop node types. Other node types
// leave SourceHandle empty and fire all outgoing connections unconditionally.
const (
	HandleTrue    = "true"
	HandleFalse   = "false"
	HandleDefault = "default"
	HandleBody    = "body"
	HandleDone    = "done"
)

// Connection is a directed edge between two nodes. For CONDITION_IF sources the
// SourceHandle is mandatory and Condition mirrors it; the two fields must stay
// consistent.
type Connection struct {
	ID           string `json:"id"            validate:"required"`
	Source       string `json:"source"        validate:"required"`
	Target       string `json:"target"        validate:"required"`
	SourceHandle string `json:"source_handle,omitempty"`
	TargetHandle string `json:"target_handle,omitempty"`
	Condition    *bool  `json:"condition,omitempty"`
}

// Normalize derives Condition from SourceHandle so persisted connections can
// never drift out of sync with their handle.
func (c *Connection) Normalize() {
	switch c.SourceHandle {
	case HandleTrue:
		v := true
		c.Condition = &v
	case HandleFalse:
		v := false
		c.Condition = &v
	default:
		c.Condition = nil
	}
}

// ConditionConsistent reports whether Condition agrees with SourceHandle.
func (c *Connection) ConditionConsistent() bool {
	switch c.SourceHandle {
	case HandleTrue:
		return c.Condition != nil && *c.Condition
	case HandleFalse:
		return c.Condition != nil && !*c.Condition
	default:
		return c.Condition == nil
	}
}
