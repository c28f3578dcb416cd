package entities

import (
	"fmt"
	"time"
)

// Expansion is a named card set with a fixed number of collector numbers
type Expansion struct {
	Name       string    `db:"name"`
	TotalCards int       `db:"total_cards"`
	CreatedAt  time.Time `db:"created_at"`
}

// ContainsCard reports whether a numeric collector number belongs to the set.
// Non-numeric numbers (promos, secret rares) are always accepted.
func (e *Expansion) ContainsCard(card CardRef) bool {
	n, ok := card.Number()
	if !ok {
		return true
	}
	return n >= 1 && n <= e.TotalCards
}

// ValidateCard returns an error describing why the card is outside the set
func (e *Expansion) ValidateCard(card CardRef) error {
	if !e.ContainsCard(card) {
		return fmt.Errorf("card number %s is outside %s (1-%d)", card.CardNumber, e.Name, e.TotalCards)
	}
	return nil
}
