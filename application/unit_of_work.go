package application

import (
	"context"

	"cardswap/domain/interfaces"
)

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction. It is a no-op after Commit.
	Rollback() error

	// Repository getters
	UserRepository() interfaces.UserRepository
	ExpansionRepository() interfaces.ExpansionRepository
	MissingCardRepository() interfaces.MissingCardRepository
	TradeRepository() interfaces.TradeRepository
	TradeConfirmationRepository() interfaces.TradeConfirmationRepository
	EventBus() interfaces.EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// Create creates a new UnitOfWork with its own event buffer
	Create() UnitOfWork
}
