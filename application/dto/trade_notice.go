package dto

import (
	"fmt"
	"time"
)

// NoticeKind selects how a trade notice is rendered
type NoticeKind string

const (
	NoticeProposed    NoticeKind = "proposed"     // private note to the proposer
	NoticeOfferOpen   NoticeKind = "offer_open"   // public listing in the trade channel
	NoticeOfferTaken  NoticeKind = "offer_taken"  // public listing after a match
	NoticeOfferClosed NoticeKind = "offer_closed" // public listing after cancel or expiry
	NoticeMatched     NoticeKind = "matched"
	NoticeConfirmed   NoticeKind = "confirmed"
	NoticeCompleted   NoticeKind = "completed"
	NoticeCancelled   NoticeKind = "cancelled"
)

// TradeNoticeDTO carries everything needed to render one trade message
type TradeNoticeDTO struct {
	Kind NoticeKind

	// Trade information
	TradeID      int64
	Status       string
	ProposerID   int64
	AcceptorID   *int64 // nil while pending
	Requested    CardDTO
	Offered      *CardDTO // nil while pending
	ConfirmedBy  []int64
	CancelReason string // user or expired, empty unless cancelled
	ExpiresAt    time.Time

	// Recipient is the user the notice is addressed to, 0 for the trade channel
	Recipient int64
}

// CardDTO is a card reference for display
type CardDTO struct {
	Expansion  string
	CardNumber string
}

func (c CardDTO) String() string {
	return fmt.Sprintf("%s #%s", c.Expansion, c.CardNumber)
}

// HasConfirmed reports whether the user's confirmation is recorded
func (n TradeNoticeDTO) HasConfirmed(discordID int64) bool {
	for _, id := range n.ConfirmedBy {
		if id == discordID {
			return true
		}
	}
	return false
}
