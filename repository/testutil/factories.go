package testutil

import (
	"context"
	"sync"
	"testing"

	"cardswap/database"
	"cardswap/domain/entities"
	"cardswap/domain/events"

	"github.com/stretchr/testify/require"
)

// SeedUser inserts a user with the trade lock clear
func SeedUser(t *testing.T, db *database.DB, discordID int64, username string) {
	t.Helper()
	_, err := db.Exec(context.Background(),
		`INSERT INTO users (discord_id, username) VALUES ($1, $2)`, discordID, username)
	require.NoError(t, err)
}

// SeedExpansion registers an expansion
func SeedExpansion(t *testing.T, db *database.DB, name string, totalCards int) {
	t.Helper()
	_, err := db.Exec(context.Background(),
		`INSERT INTO expansions (name, total_cards) VALUES ($1, $2)`, name, totalCards)
	require.NoError(t, err)
}

// SeedMissing lists the cards as missing for the user
func SeedMissing(t *testing.T, db *database.DB, discordID int64, cards ...entities.CardRef) {
	t.Helper()
	for _, card := range cards {
		_, err := db.Exec(context.Background(),
			`INSERT INTO missing_cards (discord_id, expansion, card_number) VALUES ($1, $2, $3)`,
			discordID, card.Expansion, card.CardNumber)
		require.NoError(t, err)
	}
}

// IsMissing reads the ledger directly
func IsMissing(t *testing.T, db *database.DB, discordID int64, card entities.CardRef) bool {
	t.Helper()
	var missing bool
	err := db.QueryRow(context.Background(),
		`SELECT EXISTS (SELECT 1 FROM missing_cards WHERE discord_id = $1 AND expansion = $2 AND card_number = $3)`,
		discordID, card.Expansion, card.CardNumber).Scan(&missing)
	require.NoError(t, err)
	return missing
}

// InTrade reads the trade-lock flag directly
func InTrade(t *testing.T, db *database.DB, discordID int64) bool {
	t.Helper()
	var inTrade bool
	err := db.QueryRow(context.Background(),
		`SELECT in_trade FROM users WHERE discord_id = $1`, discordID).Scan(&inTrade)
	require.NoError(t, err)
	return inTrade
}

// RecordingPublisher is a transactional publisher that keeps flushed events in memory
type RecordingPublisher struct {
	mu        sync.Mutex
	pending   []events.Event
	Published []events.Event
}

func (p *RecordingPublisher) Publish(event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = append(p.pending, event)
	return nil
}

func (p *RecordingPublisher) Flush(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Published = append(p.Published, p.pending...)
	p.pending = nil
	return nil
}

func (p *RecordingPublisher) Discard() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = nil
}

// Types returns the event types published so far
func (p *RecordingPublisher) Types() []events.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]events.EventType, 0, len(p.Published))
	for _, event := range p.Published {
		types = append(types, event.Type())
	}
	return types
}
