package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"fundledger/domain/events"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNATSEventPublisher_Envelope(t *testing.T) {
	bus := &InMemoryMessagePublisher{}
	publisher := NewNATSEventPublisher(bus, NewEventSubjectMapper())

	event := events.WireConfirmedRealtimeEvent{
		Kind:           "wire_confirmed",
		FundID:         "fund-1",
		TransferID:     "transfer-1",
		InvestorID:     "investor-1",
		AmountReceived: decimal.RequireFromString("250000.00"),
	}
	require.NoError(t, publisher.Publish(event))

	require.Len(t, bus.Messages, 1)
	assert.Equal(t, SubjectWireConfirmedLive, bus.Messages[0].Subject)

	var envelope EventEnvelope
	require.NoError(t, json.Unmarshal(bus.Messages[0].Data, &envelope))
	assert.Equal(t, "wire_confirmed_realtime", envelope.EventType)
	assert.Equal(t, "fundledger", envelope.SourceService)
	_, err := uuid.Parse(envelope.EventID)
	assert.NoError(t, err)
	assert.False(t, envelope.Timestamp.IsZero())

	var payload map[string]any
	require.NoError(t, json.Unmarshal(envelope.Payload, &payload))
	assert.Equal(t, "wire_confirmed", payload["type"])
	assert.Equal(t, "fund-1", payload["fundScope"])
	assert.Equal(t, "transfer-1", payload["transferId"])
}

func TestNATSEventPublisher_LocalOnlyWithoutBus(t *testing.T) {
	publisher := NewNATSEventPublisher(nil, NewEventSubjectMapper())

	var handled []events.EventType
	publisher.RegisterLocalHandler(events.EventTypeAdminAction, func(ctx context.Context, event events.Event) error {
		handled = append(handled, event.Type())
		return errors.New("handler failure is logged, not returned")
	})

	assert.NoError(t, publisher.Publish(events.AdminActionEvent{TeamID: "team-1"}))
	assert.NoError(t, publisher.Publish(events.InvestmentFundedEvent{TeamID: "team-1"}))
	assert.Equal(t, []events.EventType{events.EventTypeAdminAction}, handled)
}

func TestNATSEventPublisher_BusErrors(t *testing.T) {
	t.Run("missing stream is tolerated", func(t *testing.T) {
		bus := &InMemoryMessagePublisher{Err: errors.New("nats: no response from stream")}
		publisher := NewNATSEventPublisher(bus, NewEventSubjectMapper())
		assert.NoError(t, publisher.Publish(events.AdminActionEvent{}))
	})

	t.Run("other failures are returned", func(t *testing.T) {
		bus := &InMemoryMessagePublisher{Err: errors.New("connection closed")}
		publisher := NewNATSEventPublisher(bus, NewEventSubjectMapper())
		err := publisher.Publish(events.AdminActionEvent{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection closed")
	})
}

func TestEventSubjectMapper_RoundTrip(t *testing.T) {
	mapper := NewEventSubjectMapper()

	all := []events.Event{
		events.AdminActionEvent{},
		events.WireConfirmationEmailEvent{},
		events.WireConfirmedAnalyticsEvent{},
		events.WireConfirmedRealtimeEvent{},
		events.InvestmentFundedEvent{},
		events.FundTotalsRecomputedEvent{},
	}

	subjects := mapper.GetAllSubjects()
	require.Len(t, subjects, len(all))

	for _, event := range all {
		subject := mapper.MapEventToSubject(event)
		assert.Contains(t, subjects, subject)
		assert.Equal(t, event.Type(), mapper.MapSubjectToEventType(subject))
	}
}
