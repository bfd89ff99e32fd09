package ports

import (
	"context"

	"github.com/layer-3/zkauth/core"
)

// EventPublisher publishes authentication events for auditing and for other
// instances.
type EventPublisher interface {
	PublishAuthEvent(ctx context.Context, event *core.AuthEvent) error
}
