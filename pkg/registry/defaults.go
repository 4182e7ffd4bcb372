package registry

import (
	"log/slog"

	"github.com/rolerabbit/rabbitflow/pkg/nodes/aianalyze"
	"github.com/rolerabbit/rabbitflow/pkg/nodes/conditional"
	"github.com/rolerabbit/rabbitflow/pkg/nodes/delay"
	"github.com/rolerabbit/rabbitflow/pkg/nodes/httprequest"
	"github.com/rolerabbit/rabbitflow/pkg/nodes/lognode"
	"github.com/rolerabbit/rabbitflow/pkg/nodes/loop"
	switchnode "github.com/rolerabbit/rabbitflow/pkg/nodes/switch"
	"github.com/rolerabbit/rabbitflow/pkg/nodes/transform"
	"github.com/rolerabbit/rabbitflow/pkg/nodes/trigger"
)

// NewDefaultRegistry returns a registry with every built-in node type.
func NewDefaultRegistry(logger *slog.Logger) *Registry {
	r := NewRegistry(logger)

	r.Register(trigger.NewManualFactory())
	r.Register(trigger.NewScheduleFactory())
	r.Register(trigger.NewWebhookFactory())
	r.Register(trigger.NewEventFactory())
	r.Register(conditional.NewFactory())
	r.Register(switchnode.NewFactory())
	r.Register(loop.NewFactory())
	r.Register(delay.NewFactory())
	r.Register(httprequest.NewFactory())
	r.Register(aianalyze.NewFactory())
	r.Register(transform.NewFactory())
	r.Register(lognode.NewFactory())

	return r
}
