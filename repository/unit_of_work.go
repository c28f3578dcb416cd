package repository

import (
	"context"
	"errors"
	"fmt"

	"cardswap/application"
	"cardswap/database"
	"cardswap/domain/interfaces"

	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"
)

// unitOfWork implements the UnitOfWork interface
type unitOfWork struct {
	db                     *database.DB
	tx                     pgx.Tx
	ctx                    context.Context
	transactionalPublisher interfaces.TransactionalEventPublisher
	userRepo               interfaces.UserRepository
	expansionRepo          interfaces.ExpansionRepository
	missingCardRepo        interfaces.MissingCardRepository
	tradeRepo              interfaces.TradeRepository
	confirmationRepo       interfaces.TradeConfirmationRepository
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{
		db: db,
	}
}

// UnitOfWorkFactory creates transaction-bound units of work on one pool
type UnitOfWorkFactory struct {
	db *database.DB
}

// CreateWithPublisher creates a new UnitOfWork whose events are flushed on commit
func (f *UnitOfWorkFactory) CreateWithPublisher(transactionalPublisher interfaces.TransactionalEventPublisher) application.UnitOfWork {
	return &unitOfWork{
		db:                     f.db,
		transactionalPublisher: transactionalPublisher,
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	u.userRepo = newUserRepository(tx)
	u.expansionRepo = newExpansionRepository(tx)
	u.missingCardRepo = newMissingCardRepository(tx)
	u.tradeRepo = newTradeRepository(tx)
	u.confirmationRepo = newTradeConfirmationRepository(tx)

	return nil
}

// Commit commits the transaction
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	err := u.tx.Commit(u.ctx)
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.tx = nil

	// Events are best-effort once the transaction has committed
	if u.transactionalPublisher != nil {
		if err := u.transactionalPublisher.Flush(u.ctx); err != nil {
			log.WithError(err).Warn("Failed to flush events after commit")
		}
	}

	return nil
}

// Rollback rolls back the transaction
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	u.tx = nil

	if u.transactionalPublisher != nil {
		u.transactionalPublisher.Discard()
	}

	return nil
}

// UserRepository returns the user repository for this unit of work
func (u *unitOfWork) UserRepository() interfaces.UserRepository {
	if u.userRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.userRepo
}

// ExpansionRepository returns the expansion repository for this unit of work
func (u *unitOfWork) ExpansionRepository() interfaces.ExpansionRepository {
	if u.expansionRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.expansionRepo
}

// MissingCardRepository returns the missing card repository for this unit of work
func (u *unitOfWork) MissingCardRepository() interfaces.MissingCardRepository {
	if u.missingCardRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.missingCardRepo
}

// TradeRepository returns the trade repository for this unit of work
func (u *unitOfWork) TradeRepository() interfaces.TradeRepository {
	if u.tradeRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.tradeRepo
}

// TradeConfirmationRepository returns the confirmation repository for this unit of work
func (u *unitOfWork) TradeConfirmationRepository() interfaces.TradeConfirmationRepository {
	if u.confirmationRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.confirmationRepo
}

// EventBus returns the transactional event publisher for this unit of work
func (u *unitOfWork) EventBus() interfaces.EventPublisher {
	if u.transactionalPublisher == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.transactionalPublisher
}
