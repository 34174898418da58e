package infrastructure

import (
	"context"
	"testing"

	"fundledger/domain/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUnitOfWorkFactory_NilPublisherDropsEvents(t *testing.T) {
	factory := NewUnitOfWorkFactory(nil, nil)

	_, ok := factory.eventPublisher.(*NoopEventPublisher)
	require.True(t, ok, "nil publisher should fall back to the no-op publisher")

	called := false
	factory.RegisterLocalHandler(events.EventTypeAdminAction, func(ctx context.Context, event events.Event) error {
		called = true
		return nil
	})

	tp := NewNATSTransactionalPublisher(factory.eventPublisher)
	require.NoError(t, tp.Publish(events.AdminActionEvent{TeamID: "team-a", Action: events.AuditActionFundTotalsRecomputed}))
	assert.Equal(t, 1, tp.Pending())

	require.NoError(t, tp.Flush(context.Background()))
	assert.Equal(t, 0, tp.Pending())
	assert.False(t, called, "local handlers are not reachable through the no-op publisher")
}
