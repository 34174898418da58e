package infrastructure

import (
	"context"

	"fundledger/application"
	"fundledger/database"
	"fundledger/domain/events"
	"fundledger/domain/interfaces"
	"fundledger/repository"
)

// UnitOfWorkFactory implements application.UnitOfWorkFactory.
// Every unit of work gets its own transactional publisher so events leave only after commit.
type UnitOfWorkFactory struct {
	repoFactory interface {
		CreateForTeamWithPublisher(teamID string, publisher interfaces.TransactionalEventPublisher) application.UnitOfWork
	}
	eventPublisher interfaces.EventPublisher
}

// NewUnitOfWorkFactory creates a new UnitOfWorkFactory. A nil publisher drops every event,
// including the ones local handlers would have written.
func NewUnitOfWorkFactory(db *database.DB, eventPublisher interfaces.EventPublisher) *UnitOfWorkFactory {
	if eventPublisher == nil {
		eventPublisher = NewNoopEventPublisher()
	}
	return &UnitOfWorkFactory{
		repoFactory:    repository.NewUnitOfWorkFactory(db),
		eventPublisher: eventPublisher,
	}
}

// RegisterLocalHandler registers an in-process handler with the underlying NATS publisher
func (f *UnitOfWorkFactory) RegisterLocalHandler(eventType events.EventType, handler func(ctx context.Context, event events.Event) error) {
	if natsPublisher, ok := f.eventPublisher.(*NATSEventPublisher); ok {
		natsPublisher.RegisterLocalHandler(eventType, handler)
	}
}

// CreateForTeam creates a new UnitOfWork scoped to a team
func (f *UnitOfWorkFactory) CreateForTeam(teamID string) application.UnitOfWork {
	return f.repoFactory.CreateForTeamWithPublisher(teamID, NewNATSTransactionalPublisher(f.eventPublisher))
}
