package interfaces

import (
	"context"
	"time"

	"cardswap/domain/entities"
	"cardswap/domain/events"
)

// UserRepository defines the interface for user data access and the trade-lock registry
type UserRepository interface {
	// GetByDiscordID retrieves a user, or nil if unknown
	GetByDiscordID(ctx context.Context, discordID int64) (*entities.User, error)

	// Upsert creates the user or refreshes their username
	Upsert(ctx context.Context, discordID int64, username string) (*entities.User, error)

	// TryAcquireTradeLock sets the in-trade flag if it is clear.
	// It returns false when the user is already in a trade.
	TryAcquireTradeLock(ctx context.Context, discordID int64) (bool, error)

	// ReleaseTradeLock clears the in-trade flag. Releasing a clear flag is a no-op.
	ReleaseTradeLock(ctx context.Context, discordID int64) error
}

// ExpansionRepository defines the interface for expansion metadata
type ExpansionRepository interface {
	// Upsert creates an expansion or updates its card total
	Upsert(ctx context.Context, expansion *entities.Expansion) error

	// GetByName retrieves an expansion by exact name, or nil if unknown
	GetByName(ctx context.Context, name string) (*entities.Expansion, error)

	// List returns all expansions ordered by name
	List(ctx context.Context) ([]*entities.Expansion, error)
}

// MissingCardRepository defines the interface for the card ledger
type MissingCardRepository interface {
	// IsMissing reports whether the card is in the user's missing set
	IsMissing(ctx context.Context, discordID int64, card entities.CardRef) (bool, error)

	// Add puts the card in the user's missing set. It returns false if it was already there.
	Add(ctx context.Context, discordID int64, card entities.CardRef) (bool, error)

	// Remove deletes the card from the user's missing set. It returns false if it was absent.
	Remove(ctx context.Context, discordID int64, card entities.CardRef) (bool, error)

	// ListByUser returns the user's missing cards, optionally restricted to one expansion
	ListByUser(ctx context.Context, discordID int64, expansion string) ([]*entities.MissingCard, error)

	// CountByUser returns the number of missing cards per expansion for the user
	CountByUser(ctx context.Context, discordID int64) (map[string]int, error)
}

// TradeRepository defines the interface for the trade record store
type TradeRepository interface {
	// Create inserts a new trade and sets its ID
	Create(ctx context.Context, trade *entities.Trade) error

	// GetByID retrieves a trade without locking it, or nil if unknown
	GetByID(ctx context.Context, id int64) (*entities.Trade, error)

	// GetByIDForUpdate retrieves and row-locks a trade until the transaction ends
	GetByIDForUpdate(ctx context.Context, id int64) (*entities.Trade, error)

	// GetPendingByProposerForUpdate row-locks the proposer's pending trade, or returns nil
	GetPendingByProposerForUpdate(ctx context.Context, proposerID int64) (*entities.Trade, error)

	// GetOpenByUser returns the pending or active trade the user is a party to, or nil
	GetOpenByUser(ctx context.Context, discordID int64) (*entities.Trade, error)

	// ListFulfillable returns pending trades of other users whose requested card
	// the given user owns, oldest first
	ListFulfillable(ctx context.Context, discordID int64, limit int) ([]*entities.Trade, error)

	// ListByUser returns the user's most recent trades in any status
	ListByUser(ctx context.Context, discordID int64, limit int) ([]*entities.Trade, error)

	// GetExpiredForUpdate row-locks open trades past their deadline, skipping rows locked elsewhere
	GetExpiredForUpdate(ctx context.Context, now time.Time, limit int) ([]*entities.Trade, error)

	// Update persists status, acceptor, offer and timestamps
	Update(ctx context.Context, trade *entities.Trade) error

	// UpdateMessageRefs persists the notification handles
	UpdateMessageRefs(ctx context.Context, trade *entities.Trade) error
}

// TradeConfirmationRepository defines the interface for the per-party confirmation set
type TradeConfirmationRepository interface {
	// Add records a confirmation. It returns false if the party had already confirmed.
	Add(ctx context.Context, tradeID, discordID int64) (bool, error)

	// ListByTrade returns the confirming parties in confirmation order
	ListByTrade(ctx context.Context, tradeID int64) ([]int64, error)
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	Publish(event events.Event) error
}

// TransactionalEventPublisher buffers events until the owning transaction commits
type TransactionalEventPublisher interface {
	EventPublisher

	// Flush publishes buffered events. Called after a successful commit.
	Flush(ctx context.Context) error

	// Discard drops buffered events. Called on rollback.
	Discard()
}
