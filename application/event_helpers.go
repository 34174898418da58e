package application

import (
	"fmt"

	"fundledger/domain/events"
)

// AssertEventType asserts an event to a concrete type, naming both types on mismatch
func AssertEventType[T events.Event](event interface{}, expectedTypeName string) (T, error) {
	var zero T

	if e, ok := event.(T); ok {
		return e, nil
	}

	errMsg := fmt.Sprintf("event type assertion failed: expected %s, got %T", expectedTypeName, event)
	if e, ok := event.(events.Event); ok && e != nil {
		errMsg += fmt.Sprintf(" (event.Type()=%s)", e.Type())
	}

	return zero, fmt.Errorf("%s", errMsg)
}
