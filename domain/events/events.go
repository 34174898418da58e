package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeAdminAction           EventType = "admin_action"
	EventTypeWireConfirmationEmail EventType = "wire_confirmation_email"
	EventTypeWireConfirmedAnalytic EventType = "wire_confirmed_analytics"
	EventTypeWireConfirmedRealtime EventType = "wire_confirmed_realtime"
	EventTypeInvestmentFunded      EventType = "investment_funded"
	EventTypeFundTotalsRecomputed  EventType = "fund_totals_recomputed"
)

// Audit actions
const (
	AuditActionWireTransferConfirmed = "WIRE_TRANSFER_CONFIRMED"
	AuditActionFundTotalsRecomputed  = "FUND_TOTALS_RECOMPUTED"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// AdminActionEvent is an audit record of an administrative ledger action
type AdminActionEvent struct {
	TeamID       string         `json:"teamId"`
	ActorID      string         `json:"actorId"`
	Action       string         `json:"action"`
	ResourceType string         `json:"resourceType"`
	ResourceID   string         `json:"resourceId"`
	Details      map[string]any `json:"details"`
	OccurredAt   time.Time      `json:"occurredAt"`
}

func (e AdminActionEvent) Type() EventType {
	return EventTypeAdminAction
}

// WireConfirmationEmailEvent asks the notifier to email the LP about a received wire
type WireConfirmationEmailEvent struct {
	TeamID            string          `json:"teamId"`
	FundID            string          `json:"fundId"`
	InvestorID        string          `json:"investorId"`
	TransferID        string          `json:"transferId"`
	AmountReceived    decimal.Decimal `json:"amountReceived"`
	FundsReceivedDate string          `json:"fundsReceivedDate"`
	BankReference     *string         `json:"bankReference,omitempty"`
	ConfirmationNotes *string         `json:"confirmationNotes,omitempty"`
}

func (e WireConfirmationEmailEvent) Type() EventType {
	return EventTypeWireConfirmationEmail
}

// WireConfirmedAnalyticsEvent is the product analytics record of a confirmation
type WireConfirmedAnalyticsEvent struct {
	Event          string          `json:"event"`
	FundID         string          `json:"fundId"`
	TransferID     string          `json:"transferId"`
	AmountReceived decimal.Decimal `json:"amountReceived"`
	AmountVariance decimal.Decimal `json:"amountVariance"`
	Funded         bool            `json:"funded"`
}

func (e WireConfirmedAnalyticsEvent) Type() EventType {
	return EventTypeWireConfirmedAnalytic
}

// WireConfirmedRealtimeEvent is pushed to dashboards watching the fund
type WireConfirmedRealtimeEvent struct {
	Kind           string          `json:"type"`
	FundID         string          `json:"fundScope"`
	TransferID     string          `json:"transferId"`
	InvestorID     string          `json:"investorId"`
	AmountReceived decimal.Decimal `json:"amountReceived"`
}

func (e WireConfirmedRealtimeEvent) Type() EventType {
	return EventTypeWireConfirmedRealtime
}

// InvestmentFundedEvent fires when an investment reaches its commitment
type InvestmentFundedEvent struct {
	TeamID           string          `json:"teamId"`
	FundID           string          `json:"fundId"`
	InvestmentID     string          `json:"investmentId"`
	InvestorID       string          `json:"investorId"`
	CommitmentAmount decimal.Decimal `json:"commitmentAmount"`
	FundedAmount     decimal.Decimal `json:"fundedAmount"`
	PreviousStatus   string          `json:"previousStatus"`
}

func (e InvestmentFundedEvent) Type() EventType {
	return EventTypeInvestmentFunded
}

// FundTotalsRecomputedEvent reports a fund aggregate rebuilt outside the confirmation path
type FundTotalsRecomputedEvent struct {
	TeamID         string          `json:"teamId"`
	FundID         string          `json:"fundId"`
	TotalCommitted decimal.Decimal `json:"totalCommitted"`
	TotalInbound   decimal.Decimal `json:"totalInbound"`
	Drifted        bool            `json:"drifted"`
}

func (e FundTotalsRecomputedEvent) Type() EventType {
	return EventTypeFundTotalsRecomputed
}
