package repository

import (
	"context"
	"fmt"

	"cardswap/database"
	"cardswap/domain/entities"
)

// MissingCardRepository implements the MissingCardRepository interface.
// A row means the user does not own the card.
type MissingCardRepository struct {
	q Queryable
}

// NewMissingCardRepository creates a new missing card repository on the pool
func NewMissingCardRepository(db *database.DB) *MissingCardRepository {
	return &MissingCardRepository{q: db.Pool}
}

func newMissingCardRepository(q Queryable) *MissingCardRepository {
	return &MissingCardRepository{q: q}
}

// IsMissing reports whether the user lists the card as missing
func (r *MissingCardRepository) IsMissing(ctx context.Context, discordID int64, card entities.CardRef) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM missing_cards
			WHERE discord_id = $1 AND expansion = $2 AND card_number = $3
		)
	`

	var missing bool
	if err := r.q.QueryRow(ctx, query, discordID, card.Expansion, card.CardNumber).Scan(&missing); err != nil {
		return false, fmt.Errorf("failed to check missing card %s for %d: %w", card, discordID, err)
	}
	return missing, nil
}

// Add inserts the entry. It returns false if the entry already existed.
func (r *MissingCardRepository) Add(ctx context.Context, discordID int64, card entities.CardRef) (bool, error) {
	query := `
		INSERT INTO missing_cards (discord_id, expansion, card_number)
		VALUES ($1, $2, $3)
		ON CONFLICT (discord_id, expansion, card_number) DO NOTHING
	`

	result, err := r.q.Exec(ctx, query, discordID, card.Expansion, card.CardNumber)
	if err != nil {
		return false, fmt.Errorf("failed to add missing card %s for %d: %w", card, discordID, err)
	}
	return result.RowsAffected() == 1, nil
}

// Remove deletes the entry. It returns false if there was nothing to delete.
func (r *MissingCardRepository) Remove(ctx context.Context, discordID int64, card entities.CardRef) (bool, error) {
	query := `
		DELETE FROM missing_cards
		WHERE discord_id = $1 AND expansion = $2 AND card_number = $3
	`

	result, err := r.q.Exec(ctx, query, discordID, card.Expansion, card.CardNumber)
	if err != nil {
		return false, fmt.Errorf("failed to remove missing card %s for %d: %w", card, discordID, err)
	}
	return result.RowsAffected() > 0, nil
}

// ListByUser returns the user's missing cards in one expansion.
// Numeric collector numbers sort numerically, the rest alphabetically after them.
func (r *MissingCardRepository) ListByUser(ctx context.Context, discordID int64, expansion string) ([]*entities.MissingCard, error) {
	query := `
		SELECT discord_id, expansion, card_number, created_at
		FROM missing_cards
		WHERE discord_id = $1 AND expansion = $2
		ORDER BY
			CASE WHEN card_number ~ '^[0-9]+$' THEN card_number::INT END NULLS LAST,
			card_number
	`

	rows, err := r.q.Query(ctx, query, discordID, expansion)
	if err != nil {
		return nil, fmt.Errorf("failed to list missing cards for %d: %w", discordID, err)
	}
	defer rows.Close()

	var cards []*entities.MissingCard
	for rows.Next() {
		var card entities.MissingCard
		if err := rows.Scan(&card.DiscordID, &card.Card.Expansion, &card.Card.CardNumber, &card.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan missing card: %w", err)
		}
		cards = append(cards, &card)
	}

	return cards, rows.Err()
}

// CountByUser returns the number of missing cards per expansion
func (r *MissingCardRepository) CountByUser(ctx context.Context, discordID int64) (map[string]int, error) {
	query := `
		SELECT expansion, COUNT(*)
		FROM missing_cards
		WHERE discord_id = $1
		GROUP BY expansion
	`

	rows, err := r.q.Query(ctx, query, discordID)
	if err != nil {
		return nil, fmt.Errorf("failed to count missing cards for %d: %w", discordID, err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var expansion string
		var count int
		if err := rows.Scan(&expansion, &count); err != nil {
			return nil, fmt.Errorf("failed to scan missing card count: %w", err)
		}
		counts[expansion] = count
	}

	return counts, rows.Err()
}
