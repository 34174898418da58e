package application

import (
	"context"

	"fundledger/domain/events"
)

// ErrorReporter receives internal failures before a generic error is returned to the caller
type ErrorReporter interface {
	ReportError(ctx context.Context, err error, fields map[string]interface{})
}

// LocalEventRegistrar registers in-process handlers for published events
type LocalEventRegistrar interface {
	RegisterLocalHandler(eventType events.EventType, handler func(ctx context.Context, event events.Event) error)
}
