// Package delay provides the WAIT_DELAY node: a cooperative suspension point
// that parks only its own goroutine, never the engine's dispatch loop.
package delay

import (
	"context"
	"errors"
	"time"

	"github.com/rolerabbit/rabbitflow/pkg/models"
)

// MaxDelay caps a single delay node so a misconfigured workflow cannot park a
// run indefinitely.
const MaxDelay = 24 * time.Hour

// Node implements WAIT_DELAY.
type Node struct {
	id    string
	delay time.Duration
}

// NewNode creates a delay node from its config.
func NewNode(id string, config map[string]any) (*Node, error) {
	raw, ok := config["delay_ms"].(float64)
	if !ok {
		return nil, errors.New("missing required field 'delay_ms'")
	}

	if raw < 0 {
		return nil, errors.New("'delay_ms' must not be negative")
	}

	delay := time.Duration(raw) * time.Millisecond
	if delay > MaxDelay {
		return nil, errors.New("'delay_ms' exceeds the maximum supported delay")
	}

	return &Node{id: id, delay: delay}, nil
}

func (n *Node) ID() string {
	return n.id
}

func (n *Node) Type() string {
	return models.NodeTypeWaitDelay
}

// Execute waits for the configured delay or until the run is cancelled.
func (n *Node) Execute(ctx context.Context, _ *models.RunContext) (*models.NodeResult, error) {
	timer := time.NewTimer(n.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
	}

	return &models.NodeResult{
		NodeID: n.id,
		Output: map[string]any{
			"delayed_ms": n.delay.Milliseconds(),
		},
	}, nil
}
