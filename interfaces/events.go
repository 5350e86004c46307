package interfaces

import "context"

// EventPublisher emits domain events to the message broker. A nil-safe
// no-op implementation is used when no broker is configured.
type EventPublisher interface {
	PublishContentPublished(ctx context.Context, tenantId, itemId string) error
	Close() error
}
