package application

import (
	"fundledger/domain/events"
)

// RegisterApplicationSubscriptions registers the in-process handlers for committed ledger events
func RegisterApplicationSubscriptions(registrar LocalEventRegistrar, uowFactory UnitOfWorkFactory) {
	auditHandler := NewAuditEventHandler(uowFactory)
	registrar.RegisterLocalHandler(events.EventTypeAdminAction, auditHandler.HandleAdminAction)
}
