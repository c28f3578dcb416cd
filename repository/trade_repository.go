package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cardswap/database"
	"cardswap/domain/entities"

	"github.com/jackc/pgx/v5"
)

const tradeColumns = `
	id, proposer_discord_id, acceptor_discord_id,
	requested_expansion, requested_card_number,
	offered_expansion, offered_card_number,
	status, cancel_reason,
	proposer_message_ref, acceptor_message_ref, offer_message_ref,
	created_at, matched_at, completed_at, cancelled_at, expires_at
`

// TradeRepository implements the TradeRepository interface
type TradeRepository struct {
	q Queryable
}

// NewTradeRepository creates a new trade repository on the pool
func NewTradeRepository(db *database.DB) *TradeRepository {
	return &TradeRepository{q: db.Pool}
}

func newTradeRepository(q Queryable) *TradeRepository {
	return &TradeRepository{q: q}
}

// Create inserts a pending trade and fills in its ID and creation time
func (r *TradeRepository) Create(ctx context.Context, trade *entities.Trade) error {
	query := `
		INSERT INTO trades (
			proposer_discord_id, requested_expansion, requested_card_number,
			status, expires_at
		) VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		trade.ProposerDiscordID,
		trade.Requested.Expansion,
		trade.Requested.CardNumber,
		trade.Status,
		trade.ExpiresAt,
	).Scan(&trade.ID, &trade.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create trade for %d: %w", trade.ProposerDiscordID, err)
	}

	return nil
}

// GetByID retrieves a trade by ID
func (r *TradeRepository) GetByID(ctx context.Context, id int64) (*entities.Trade, error) {
	query := `SELECT ` + tradeColumns + ` FROM trades WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetByIDForUpdate retrieves a trade by ID and holds its row lock until the transaction ends
func (r *TradeRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entities.Trade, error) {
	query := `SELECT ` + tradeColumns + ` FROM trades WHERE id = $1 FOR UPDATE`
	return r.getOne(ctx, query, id)
}

// GetPendingByProposerForUpdate row-locks the proposer's pending trade
func (r *TradeRepository) GetPendingByProposerForUpdate(ctx context.Context, proposerID int64) (*entities.Trade, error) {
	query := `
		SELECT ` + tradeColumns + `
		FROM trades
		WHERE proposer_discord_id = $1 AND status = 'pending'
		FOR UPDATE
	`
	return r.getOne(ctx, query, proposerID)
}

// GetOpenByUser returns the pending or active trade the user is a party to
func (r *TradeRepository) GetOpenByUser(ctx context.Context, discordID int64) (*entities.Trade, error) {
	query := `
		SELECT ` + tradeColumns + `
		FROM trades
		WHERE (proposer_discord_id = $1 OR acceptor_discord_id = $1)
		  AND status IN ('pending', 'active')
		ORDER BY created_at DESC
		LIMIT 1
	`
	return r.getOne(ctx, query, discordID)
}

// ListFulfillable returns other users' pending trades for cards the user does not list as missing
func (r *TradeRepository) ListFulfillable(ctx context.Context, discordID int64, limit int) ([]*entities.Trade, error) {
	query := `
		SELECT ` + tradeColumns + `
		FROM trades t
		WHERE t.status = 'pending'
		  AND t.proposer_discord_id <> $1
		  AND NOT EXISTS (
			SELECT 1 FROM missing_cards m
			WHERE m.discord_id = $1
			  AND m.expansion = t.requested_expansion
			  AND m.card_number = t.requested_card_number
		  )
		ORDER BY t.created_at
		LIMIT $2
	`
	return r.getMany(ctx, query, discordID, limit)
}

// ListByUser returns the user's most recent trades in any status
func (r *TradeRepository) ListByUser(ctx context.Context, discordID int64, limit int) ([]*entities.Trade, error) {
	query := `
		SELECT ` + tradeColumns + `
		FROM trades
		WHERE proposer_discord_id = $1 OR acceptor_discord_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`
	return r.getMany(ctx, query, discordID, limit)
}

// GetExpiredForUpdate row-locks open trades past their deadline.
// Rows already locked by a running operation are skipped and picked up on a later pass.
func (r *TradeRepository) GetExpiredForUpdate(ctx context.Context, now time.Time, limit int) ([]*entities.Trade, error) {
	query := `
		SELECT ` + tradeColumns + `
		FROM trades
		WHERE status IN ('pending', 'active') AND expires_at <= $1
		ORDER BY expires_at
		LIMIT $2
		FOR UPDATE SKIP LOCKED
	`
	return r.getMany(ctx, query, now, limit)
}

// Update persists the mutable lifecycle fields of a trade
func (r *TradeRepository) Update(ctx context.Context, trade *entities.Trade) error {
	var offeredExpansion, offeredCardNumber *string
	if trade.Offered != nil {
		offeredExpansion = &trade.Offered.Expansion
		offeredCardNumber = &trade.Offered.CardNumber
	}

	query := `
		UPDATE trades
		SET acceptor_discord_id = $2,
			offered_expansion = $3,
			offered_card_number = $4,
			status = $5,
			cancel_reason = $6,
			matched_at = $7,
			completed_at = $8,
			cancelled_at = $9,
			expires_at = $10
		WHERE id = $1
	`

	result, err := r.q.Exec(ctx, query,
		trade.ID,
		trade.AcceptorDiscordID,
		offeredExpansion,
		offeredCardNumber,
		trade.Status,
		trade.CancelReason,
		trade.MatchedAt,
		trade.CompletedAt,
		trade.CancelledAt,
		trade.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update trade %d: %w", trade.ID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("trade %d not found", trade.ID)
	}

	return nil
}

// UpdateMessageRefs persists the notification handles of a trade
func (r *TradeRepository) UpdateMessageRefs(ctx context.Context, trade *entities.Trade) error {
	query := `
		UPDATE trades
		SET proposer_message_ref = $2,
			acceptor_message_ref = $3,
			offer_message_ref = $4
		WHERE id = $1
	`

	result, err := r.q.Exec(ctx, query,
		trade.ID,
		trade.ProposerMessageRef,
		trade.AcceptorMessageRef,
		trade.OfferMessageRef,
	)
	if err != nil {
		return fmt.Errorf("failed to update message refs of trade %d: %w", trade.ID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("trade %d not found", trade.ID)
	}

	return nil
}

func (r *TradeRepository) getOne(ctx context.Context, query string, args ...any) (*entities.Trade, error) {
	trade, err := scanTrade(r.q.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trade: %w", err)
	}
	return trade, nil
}

func (r *TradeRepository) getMany(ctx context.Context, query string, args ...any) ([]*entities.Trade, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades: %w", err)
	}
	defer rows.Close()

	var trades []*entities.Trade
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}
		trades = append(trades, trade)
	}

	return trades, rows.Err()
}

// scanTrade reads one row selected with tradeColumns
func scanTrade(row pgx.Row) (*entities.Trade, error) {
	var trade entities.Trade
	var offeredExpansion, offeredCardNumber *string

	err := row.Scan(
		&trade.ID,
		&trade.ProposerDiscordID,
		&trade.AcceptorDiscordID,
		&trade.Requested.Expansion,
		&trade.Requested.CardNumber,
		&offeredExpansion,
		&offeredCardNumber,
		&trade.Status,
		&trade.CancelReason,
		&trade.ProposerMessageRef,
		&trade.AcceptorMessageRef,
		&trade.OfferMessageRef,
		&trade.CreatedAt,
		&trade.MatchedAt,
		&trade.CompletedAt,
		&trade.CancelledAt,
		&trade.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}

	if offeredExpansion != nil && offeredCardNumber != nil {
		trade.Offered = &entities.CardRef{Expansion: *offeredExpansion, CardNumber: *offeredCardNumber}
	}
	return &trade, nil
}
