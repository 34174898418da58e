package infrastructure

import (
	"fmt"

	"fundledger/domain/events"
)

// Subjects published by the ledger
const (
	SubjectAdminAction          = "ledger.audit.admin_action"
	SubjectWireConfirmationMail = "notifications.email.wire_confirmed"
	SubjectWireConfirmedMetrics = "analytics.wire_confirmed"
	SubjectWireConfirmedLive    = "realtime.wire_confirmed"
	SubjectInvestmentFunded     = "ledger.investment.funded"
	SubjectFundTotalsRecomputed = "ledger.fund_totals.recomputed"
)

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts a domain event to its corresponding NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	switch event.Type() {
	case events.EventTypeAdminAction:
		return SubjectAdminAction
	case events.EventTypeWireConfirmationEmail:
		return SubjectWireConfirmationMail
	case events.EventTypeWireConfirmedAnalytic:
		return SubjectWireConfirmedMetrics
	case events.EventTypeWireConfirmedRealtime:
		return SubjectWireConfirmedLive
	case events.EventTypeInvestmentFunded:
		return SubjectInvestmentFunded
	case events.EventTypeFundTotalsRecomputed:
		return SubjectFundTotalsRecomputed
	default:
		return fmt.Sprintf("unknown.%s", event.Type())
	}
}

// MapSubjectToEventType converts a NATS subject back to an event type
func (m *EventSubjectMapper) MapSubjectToEventType(subject string) events.EventType {
	switch subject {
	case SubjectAdminAction:
		return events.EventTypeAdminAction
	case SubjectWireConfirmationMail:
		return events.EventTypeWireConfirmationEmail
	case SubjectWireConfirmedMetrics:
		return events.EventTypeWireConfirmedAnalytic
	case SubjectWireConfirmedLive:
		return events.EventTypeWireConfirmedRealtime
	case SubjectInvestmentFunded:
		return events.EventTypeInvestmentFunded
	case SubjectFundTotalsRecomputed:
		return events.EventTypeFundTotalsRecomputed
	default:
		return events.EventType(subject)
	}
}

// GetAllSubjects returns all subjects that this service publishes to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	return []string{
		SubjectAdminAction,
		SubjectWireConfirmationMail,
		SubjectWireConfirmedMetrics,
		SubjectWireConfirmedLive,
		SubjectInvestmentFunded,
		SubjectFundTotalsRecomputed,
	}
}
