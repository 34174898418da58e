package infrastructure

import (
	"fundledger/domain/events"

	log "github.com/sirupsen/logrus"
)

// NoopEventPublisher drops every event. Maintenance runs use it when they must not
// notify anyone or leave audit entries.
type NoopEventPublisher struct{}

// NewNoopEventPublisher creates a new no-op event publisher
func NewNoopEventPublisher() *NoopEventPublisher {
	return &NoopEventPublisher{}
}

// Publish discards the event
func (n *NoopEventPublisher) Publish(event events.Event) error {
	log.WithField("eventType", event.Type()).Debug("Dropping event, publishing disabled")
	return nil
}
