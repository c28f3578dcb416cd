package interfaces

import (
	"context"

	"cardswap/domain/entities"
)

// MatchRequest identifies the pending trade to accept and the card offered for it.
// Exactly one of ProposerID and TradeID is set.
type MatchRequest struct {
	ProposerID *int64
	TradeID    *int64
	AcceptorID int64
	Offered    entities.CardRef
}

// ConfirmOutcome is the result of a confirmation
type ConfirmOutcome string

const (
	ConfirmWaitingForCounterparty ConfirmOutcome = "waiting_for_counterparty"
	ConfirmSettled                ConfirmOutcome = "settled"
)

// ConfirmResult carries the trade after a confirmation and whether it settled
type ConfirmResult struct {
	Trade   *entities.Trade
	Outcome ConfirmOutcome
}

// TradeService runs the trade state machine inside one unit of work
type TradeService interface {
	// Propose locks the proposer and opens a pending trade for a card they are missing
	Propose(ctx context.Context, proposerID int64, requested entities.CardRef) (*entities.Trade, error)

	// Match locks the acceptor and moves a pending trade to active
	Match(ctx context.Context, req MatchRequest) (*entities.Trade, error)

	// Confirm records a party's confirmation and settles on the second distinct one
	Confirm(ctx context.Context, tradeID, discordID int64) (*ConfirmResult, error)

	// Cancel cancels an open trade on behalf of a party and releases both locks
	Cancel(ctx context.Context, tradeID, discordID int64) (*entities.Trade, error)

	// Expire cancels a locked trade whose deadline has passed
	Expire(ctx context.Context, trade *entities.Trade) error

	// GetOpenTrade returns the user's pending or active trade, or nil
	GetOpenTrade(ctx context.Context, discordID int64) (*entities.Trade, error)

	// GetHistory returns the user's most recent trades
	GetHistory(ctx context.Context, discordID int64, limit int) ([]*entities.Trade, error)

	// ListOpenProposals returns pending trades the user could fulfil
	ListOpenProposals(ctx context.Context, discordID int64, limit int) ([]*entities.Trade, error)
}

// CardService manages expansions and the missing-card ledger
type CardService interface {
	// AddExpansion registers an expansion or updates its card total
	AddExpansion(ctx context.Context, name string, totalCards int) (*entities.Expansion, error)

	// ListExpansions returns every registered expansion
	ListExpansions(ctx context.Context) ([]*entities.Expansion, error)

	// AddMissing lists a card as missing for the user
	AddMissing(ctx context.Context, discordID int64, card entities.CardRef) (bool, error)

	// RemoveMissing removes a card from the user's missing list
	RemoveMissing(ctx context.Context, discordID int64, card entities.CardRef) (bool, error)

	// ListMissing returns the user's missing cards in an expansion
	ListMissing(ctx context.Context, discordID int64, expansion string) ([]*entities.MissingCard, error)

	// MissingSummary returns the user's missing card count per expansion
	MissingSummary(ctx context.Context, discordID int64) (map[string]int, error)

	// ResolveCard returns the card with the expansion's registered spelling
	ResolveCard(ctx context.Context, card entities.CardRef) (entities.CardRef, error)

	// SuggestExpansions returns registered expansion names that fuzzily match the query
	SuggestExpansions(ctx context.Context, query string, limit int) ([]string, error)
}

// UserService manages user records
type UserService interface {
	// GetOrCreateUser returns the user, creating them or refreshing their username
	GetOrCreateUser(ctx context.Context, discordID int64, username string) (*entities.User, error)
}
