package application

import (
	"testing"

	"fundledger/domain/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayloadDigest(t *testing.T) {
	a, err := PayloadDigest(map[string]any{"amountReceived": "100.00", "transferId": "t-1"})
	require.NoError(t, err)
	b, err := PayloadDigest(map[string]any{"transferId": "t-1", "amountReceived": "100.00"})
	require.NoError(t, err)

	assert.Equal(t, a, b, "digest must not depend on key order")
	assert.Len(t, a, 64)

	c, err := PayloadDigest(map[string]any{"transferId": "t-1", "amountReceived": "100.01"})
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestAssertEventType(t *testing.T) {
	event := events.AdminActionEvent{Action: events.AuditActionWireTransferConfirmed}

	got, err := AssertEventType[events.AdminActionEvent](event, "AdminActionEvent")
	require.NoError(t, err)
	assert.Equal(t, event, got)

	_, err = AssertEventType[events.AdminActionEvent](events.InvestmentFundedEvent{}, "AdminActionEvent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "InvestmentFundedEvent")
	assert.Contains(t, err.Error(), "investment_funded")
}
