package events

import "time"

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeTradeProposed      EventType = "trade_proposed"
	EventTypeTradeMatched       EventType = "trade_matched"
	EventTypeTradeConfirmed     EventType = "trade_confirmed"
	EventTypeTradeCompleted     EventType = "trade_completed"
	EventTypeTradeCancelled     EventType = "trade_cancelled"
	EventTypeMissingCardAdded   EventType = "missing_card_added"
	EventTypeMissingCardRemoved EventType = "missing_card_removed"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// TradeProposedEvent is published when a proposer opens a trade
type TradeProposedEvent struct {
	TradeID            int64     `json:"trade_id"`
	ProposerID         int64     `json:"proposer_id"`
	RequestedExpansion string    `json:"requested_expansion"`
	RequestedCard      string    `json:"requested_card"`
	ExpiresAt          time.Time `json:"expires_at"`
}

func (e TradeProposedEvent) Type() EventType {
	return EventTypeTradeProposed
}

// TradeMatchedEvent is published when an acceptor's offer moves the trade to active
type TradeMatchedEvent struct {
	TradeID          int64  `json:"trade_id"`
	ProposerID       int64  `json:"proposer_id"`
	AcceptorID       int64  `json:"acceptor_id"`
	OfferedExpansion string `json:"offered_expansion"`
	OfferedCard      string `json:"offered_card"`
}

func (e TradeMatchedEvent) Type() EventType {
	return EventTypeTradeMatched
}

// TradeConfirmedEvent is published for the first confirmation of an active trade
type TradeConfirmedEvent struct {
	TradeID       int64 `json:"trade_id"`
	ConfirmedBy   int64 `json:"confirmed_by"`
	Confirmations int   `json:"confirmations"`
}

func (e TradeConfirmedEvent) Type() EventType {
	return EventTypeTradeConfirmed
}

// TradeCompletedEvent is published once, when settlement commits
type TradeCompletedEvent struct {
	TradeID    int64         `json:"trade_id"`
	ProposerID int64         `json:"proposer_id"`
	AcceptorID int64         `json:"acceptor_id"`
	Duration   time.Duration `json:"duration"` // proposal to settlement
}

func (e TradeCompletedEvent) Type() EventType {
	return EventTypeTradeCompleted
}

// TradeCancelledEvent is published when a party cancels or the trade expires
type TradeCancelledEvent struct {
	TradeID     int64  `json:"trade_id"`
	CancelledBy *int64 `json:"cancelled_by,omitempty"` // nil when expired
	Reason      string `json:"reason"`
	FromStatus  string `json:"from_status"`
}

func (e TradeCancelledEvent) Type() EventType {
	return EventTypeTradeCancelled
}

// MissingCardAddedEvent is published when a user lists a card as missing
type MissingCardAddedEvent struct {
	DiscordID  int64  `json:"discord_id"`
	Expansion  string `json:"expansion"`
	CardNumber string `json:"card_number"`
}

func (e MissingCardAddedEvent) Type() EventType {
	return EventTypeMissingCardAdded
}

// MissingCardRemovedEvent is published when a card leaves a user's missing list
type MissingCardRemovedEvent struct {
	DiscordID  int64  `json:"discord_id"`
	Expansion  string `json:"expansion"`
	CardNumber string `json:"card_number"`
	ViaTrade   bool   `json:"via_trade"`
}

func (e MissingCardRemovedEvent) Type() EventType {
	return EventTypeMissingCardRemoved
}
