package infrastructure

import (
	"cardswap/application"
	"cardswap/database"
	"cardswap/domain/events"
	"cardswap/domain/interfaces"
	"cardswap/repository"

	log "github.com/sirupsen/logrus"
)

// localHandlerRegistrar is implemented by publishers that run in-process handlers
type localHandlerRegistrar interface {
	RegisterLocalHandler(eventType events.EventType, handler LocalEventHandler)
}

// UnitOfWorkFactory implements application.UnitOfWorkFactory.
// Every unit of work gets its own transactional publisher in front of the shared one.
type UnitOfWorkFactory struct {
	repoFactory interface {
		CreateWithPublisher(transactionalPublisher interfaces.TransactionalEventPublisher) application.UnitOfWork
	}
	eventPublisher interfaces.EventPublisher
}

// NewUnitOfWorkFactory creates a new UnitOfWorkFactory
func NewUnitOfWorkFactory(db *database.DB, eventPublisher interfaces.EventPublisher) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{
		repoFactory:    repository.NewUnitOfWorkFactory(db),
		eventPublisher: eventPublisher,
	}
}

// RegisterLocalHandler registers a handler that runs in-process whenever an event is flushed
func (f *UnitOfWorkFactory) RegisterLocalHandler(eventType events.EventType, handler LocalEventHandler) {
	registrar, ok := f.eventPublisher.(localHandlerRegistrar)
	if !ok {
		log.WithField("eventType", eventType).Warn("Event publisher does not support local handlers")
		return
	}
	registrar.RegisterLocalHandler(eventType, handler)
}

// Create creates a new UnitOfWork with a transactional event publisher
func (f *UnitOfWorkFactory) Create() application.UnitOfWork {
	return f.repoFactory.CreateWithPublisher(NewNATSTransactionalPublisher(f.eventPublisher))
}
