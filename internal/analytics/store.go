package analytics

import (
	"context"

	"github.com/serroba/tinyurl-go/internal/messaging"
)

// Store defines the interface for persisting analytics events.
type Store interface {
	SaveLinkCreated(ctx context.Context, event *LinkCreatedEvent) error
	SaveLinkVisited(ctx context.Context, event *LinkVisitedEvent) error
}

// NewLinkCreatedHandler adapts a Store to a typed message handler for the
// link.created topic.
func NewLinkCreatedHandler(store Store) messaging.Handler[LinkCreatedEvent] {
	return store.SaveLinkCreated
}

// NewLinkVisitedHandler adapts a Store to a typed message handler for the
// link.visited topic.
func NewLinkVisitedHandler(store Store) messaging.Handler[LinkVisitedEvent] {
	return store.SaveLinkVisited
}
