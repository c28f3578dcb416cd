package dto

import (
	"slices"

	"cardswap/domain/entities"
)

// TradeToNoticeDTO converts a trade into a notice for one recipient
func TradeToNoticeDTO(trade *entities.Trade, kind NoticeKind, recipient int64) TradeNoticeDTO {
	notice := TradeNoticeDTO{
		Kind:        kind,
		TradeID:     trade.ID,
		Status:      string(trade.Status),
		ProposerID:  trade.ProposerDiscordID,
		AcceptorID:  trade.AcceptorDiscordID,
		Requested:   cardToDTO(trade.Requested),
		ConfirmedBy: slices.Clone(trade.ConfirmedBy),
		ExpiresAt:   trade.ExpiresAt,
		Recipient:   recipient,
	}

	if trade.Offered != nil {
		offered := cardToDTO(*trade.Offered)
		notice.Offered = &offered
	}
	if trade.CancelReason != nil {
		notice.CancelReason = string(*trade.CancelReason)
	}

	return notice
}

// PartyNoticeKind picks the private notice kind matching the trade's status
func PartyNoticeKind(trade *entities.Trade) NoticeKind {
	switch trade.Status {
	case entities.TradeStatusPending:
		return NoticeProposed
	case entities.TradeStatusCompleted:
		return NoticeCompleted
	case entities.TradeStatusCancelled:
		return NoticeCancelled
	}
	if len(trade.ConfirmedBy) > 0 {
		return NoticeConfirmed
	}
	return NoticeMatched
}

// OfferNoticeKind picks the public listing kind matching the trade's status
func OfferNoticeKind(trade *entities.Trade) NoticeKind {
	switch trade.Status {
	case entities.TradeStatusPending:
		return NoticeOfferOpen
	case entities.TradeStatusCancelled:
		if trade.MatchedAt == nil {
			return NoticeOfferClosed
		}
	}
	return NoticeOfferTaken
}

func cardToDTO(card entities.CardRef) CardDTO {
	return CardDTO{Expansion: card.Expansion, CardNumber: card.CardNumber}
}
