package entities

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// MaxCardNumberLength bounds the printed collector number of a card
const MaxCardNumberLength = 16

// CardRef identifies a card by expansion and collector number
type CardRef struct {
	Expansion  string `json:"expansion"`
	CardNumber string `json:"card_number"`
}

// NewCardRef trims, canonicalises and validates the raw user input for a card
func NewCardRef(expansion, cardNumber string) (CardRef, error) {
	ref := CardRef{
		Expansion:  strings.TrimSpace(expansion),
		CardNumber: strings.TrimSpace(cardNumber),
	}.Canonical()
	if err := ref.Validate(); err != nil {
		return CardRef{}, err
	}
	return ref, nil
}

// Validate checks that both parts are present and the number is alphanumeric
func (c CardRef) Validate() error {
	if c.Expansion == "" {
		return fmt.Errorf("expansion is required")
	}
	if c.CardNumber == "" {
		return fmt.Errorf("card number is required")
	}
	if len(c.CardNumber) > MaxCardNumberLength {
		return fmt.Errorf("card number %q is longer than %d characters", c.CardNumber, MaxCardNumberLength)
	}
	for _, r := range c.CardNumber {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' {
			return fmt.Errorf("card number %q contains invalid character %q", c.CardNumber, r)
		}
	}
	return nil
}

// Canonical drops leading zeros from purely numeric card numbers so "007" and "7"
// share one ledger key. Other numbers are returned unchanged.
func (c CardRef) Canonical() CardRef {
	if c.CardNumber == "" || strings.TrimLeft(c.CardNumber, "0123456789") != "" {
		return c
	}
	trimmed := strings.TrimLeft(c.CardNumber, "0")
	if trimmed == "" {
		trimmed = "0"
	}
	c.CardNumber = trimmed
	return c
}

// Number returns the numeric collector number, if the card has one
func (c CardRef) Number() (int, bool) {
	n, err := strconv.Atoi(c.CardNumber)
	if err != nil {
		return 0, false
	}
	return n, true
}

// String renders the card as "Expansion #Number"
func (c CardRef) String() string {
	return fmt.Sprintf("%s #%s", c.Expansion, c.CardNumber)
}

// MissingCard is a ledger entry: the user does not own this card.
// Absence of an entry means the card is presumed owned.
type MissingCard struct {
	DiscordID int64     `db:"discord_id"`
	Card      CardRef   `db:"-"`
	CreatedAt time.Time `db:"created_at"`
}
