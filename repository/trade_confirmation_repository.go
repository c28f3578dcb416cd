package repository

import (
	"context"
	"fmt"

	"cardswap/database"
)

// TradeConfirmationRepository implements the TradeConfirmationRepository interface.
// The primary key on (trade_id, discord_id) makes a repeated confirmation a no-op.
type TradeConfirmationRepository struct {
	q Queryable
}

// NewTradeConfirmationRepository creates a new confirmation repository on the pool
func NewTradeConfirmationRepository(db *database.DB) *TradeConfirmationRepository {
	return &TradeConfirmationRepository{q: db.Pool}
}

func newTradeConfirmationRepository(q Queryable) *TradeConfirmationRepository {
	return &TradeConfirmationRepository{q: q}
}

// Add records the party's confirmation, returning false if it was already recorded
func (r *TradeConfirmationRepository) Add(ctx context.Context, tradeID, discordID int64) (bool, error) {
	query := `
		INSERT INTO trade_confirmations (trade_id, discord_id)
		VALUES ($1, $2)
		ON CONFLICT (trade_id, discord_id) DO NOTHING
	`

	result, err := r.q.Exec(ctx, query, tradeID, discordID)
	if err != nil {
		return false, fmt.Errorf("failed to record confirmation of %d on trade %d: %w", discordID, tradeID, err)
	}
	return result.RowsAffected() == 1, nil
}

// ListByTrade returns the confirming parties in confirmation order
func (r *TradeConfirmationRepository) ListByTrade(ctx context.Context, tradeID int64) ([]int64, error) {
	query := `
		SELECT discord_id
		FROM trade_confirmations
		WHERE trade_id = $1
		ORDER BY confirmed_at, discord_id
	`

	rows, err := r.q.Query(ctx, query, tradeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list confirmations of trade %d: %w", tradeID, err)
	}
	defer rows.Close()

	var confirmedBy []int64
	for rows.Next() {
		var discordID int64
		if err := rows.Scan(&discordID); err != nil {
			return nil, fmt.Errorf("failed to scan confirmation: %w", err)
		}
		confirmedBy = append(confirmedBy, discordID)
	}

	return confirmedBy, rows.Err()
}
