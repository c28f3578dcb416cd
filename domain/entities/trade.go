package entities

import (
	"fmt"
	"slices"
	"time"
)

// TradeStatus is the lifecycle phase of a trade
type TradeStatus string

const (
	TradeStatusPending   TradeStatus = "pending"   // proposed, waiting for an offer
	TradeStatusActive    TradeStatus = "active"    // matched, waiting for both confirmations
	TradeStatusCompleted TradeStatus = "completed" // settled
	TradeStatusCancelled TradeStatus = "cancelled" // cancelled by a party or expired
)

// CancelReason records why a trade was cancelled
type CancelReason string

const (
	CancelReasonUser    CancelReason = "user"
	CancelReasonExpired CancelReason = "expired"
)

// RequiredConfirmations is the number of distinct parties that must confirm before settlement
const RequiredConfirmations = 2

// Trade is a one-for-one card swap between a proposer and an acceptor.
// The proposer asks for Requested; the acceptor gives Offered in return.
type Trade struct {
	ID                 int64         `db:"id"`
	ProposerDiscordID  int64         `db:"proposer_discord_id"`
	AcceptorDiscordID  *int64        `db:"acceptor_discord_id"`
	Requested          CardRef       `db:"-"`
	Offered            *CardRef      `db:"-"`
	Status             TradeStatus   `db:"status"`
	CancelReason       *CancelReason `db:"cancel_reason"`
	ConfirmedBy        []int64       `db:"-"`
	ProposerMessageRef *string       `db:"proposer_message_ref"`
	AcceptorMessageRef *string       `db:"acceptor_message_ref"`
	OfferMessageRef    *string       `db:"offer_message_ref"`
	CreatedAt          time.Time     `db:"created_at"`
	MatchedAt          *time.Time    `db:"matched_at"`
	CompletedAt        *time.Time    `db:"completed_at"`
	CancelledAt        *time.Time    `db:"cancelled_at"`
	ExpiresAt          time.Time     `db:"expires_at"`
}

// NewTrade creates a pending trade that expires after ttl
func NewTrade(proposerID int64, requested CardRef, now time.Time, ttl time.Duration) *Trade {
	return &Trade{
		ProposerDiscordID: proposerID,
		Requested:         requested,
		Status:            TradeStatusPending,
		CreatedAt:         now,
		ExpiresAt:         now.Add(ttl),
	}
}

// IsOpen reports whether the trade still holds its parties' trade locks
func (t *Trade) IsOpen() bool {
	return t.Status == TradeStatusPending || t.Status == TradeStatusActive
}

// IsExpired reports whether an open trade has outlived its deadline
func (t *Trade) IsExpired(now time.Time) bool {
	return t.IsOpen() && !now.Before(t.ExpiresAt)
}

// IsParty reports whether the user is the proposer or the acceptor
func (t *Trade) IsParty(discordID int64) bool {
	if t.ProposerDiscordID == discordID {
		return true
	}
	return t.AcceptorDiscordID != nil && *t.AcceptorDiscordID == discordID
}

// Counterparty returns the other party of the trade, if there is one
func (t *Trade) Counterparty(discordID int64) (int64, bool) {
	if t.AcceptorDiscordID == nil {
		return 0, false
	}
	switch discordID {
	case t.ProposerDiscordID:
		return *t.AcceptorDiscordID, true
	case *t.AcceptorDiscordID:
		return t.ProposerDiscordID, true
	}
	return 0, false
}

// Parties returns the locked parties in ascending Discord ID order
func (t *Trade) Parties() []int64 {
	parties := []int64{t.ProposerDiscordID}
	if t.AcceptorDiscordID != nil {
		parties = append(parties, *t.AcceptorDiscordID)
	}
	slices.Sort(parties)
	return parties
}

// Match moves a pending trade to active with the acceptor's offer.
// The deadline restarts so both parties get the full TTL to confirm.
func (t *Trade) Match(acceptorID int64, offered CardRef, now time.Time) error {
	if t.Status != TradeStatusPending {
		return fmt.Errorf("cannot match trade %d in status %s", t.ID, t.Status)
	}
	t.ExpiresAt = now.Add(t.ExpiresAt.Sub(t.CreatedAt))
	t.AcceptorDiscordID = &acceptorID
	t.Offered = &offered
	t.Status = TradeStatusActive
	t.MatchedAt = &now
	return nil
}

// RecordConfirmation adds a party to the confirmation set.
// It returns false when the party had already confirmed.
func (t *Trade) RecordConfirmation(discordID int64) bool {
	if t.HasConfirmed(discordID) {
		return false
	}
	t.ConfirmedBy = append(t.ConfirmedBy, discordID)
	return true
}

// HasConfirmed reports whether the party has confirmed
func (t *Trade) HasConfirmed(discordID int64) bool {
	return slices.Contains(t.ConfirmedBy, discordID)
}

// Confirmations returns the number of distinct parties that confirmed
func (t *Trade) Confirmations() int {
	return len(t.ConfirmedBy)
}

// ReadyToSettle reports whether both parties have confirmed an active trade
func (t *Trade) ReadyToSettle() bool {
	return t.Status == TradeStatusActive && t.Confirmations() >= RequiredConfirmations
}

// Complete marks an active, fully confirmed trade as settled
func (t *Trade) Complete(now time.Time) error {
	if !t.ReadyToSettle() {
		return fmt.Errorf("trade %d is not ready to settle (status %s, %d confirmations)", t.ID, t.Status, t.Confirmations())
	}
	t.Status = TradeStatusCompleted
	t.CompletedAt = &now
	return nil
}

// Cancel marks an open trade as cancelled
func (t *Trade) Cancel(reason CancelReason, now time.Time) error {
	if !t.IsOpen() {
		return fmt.Errorf("cannot cancel trade %d in status %s", t.ID, t.Status)
	}
	t.Status = TradeStatusCancelled
	t.CancelReason = &reason
	t.CancelledAt = &now
	return nil
}

// MessageRefFor returns the stored notification handle for a party
func (t *Trade) MessageRefFor(discordID int64) *string {
	if discordID == t.ProposerDiscordID {
		return t.ProposerMessageRef
	}
	if t.AcceptorDiscordID != nil && discordID == *t.AcceptorDiscordID {
		return t.AcceptorMessageRef
	}
	return nil
}

// SetMessageRefFor stores a notification handle for a party
func (t *Trade) SetMessageRefFor(discordID int64, ref string) {
	if discordID == t.ProposerDiscordID {
		t.ProposerMessageRef = &ref
		return
	}
	if t.AcceptorDiscordID != nil && discordID == *t.AcceptorDiscordID {
		t.AcceptorMessageRef = &ref
	}
}
