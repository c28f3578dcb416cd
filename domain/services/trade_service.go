package services

import (
	"context"
	"fmt"
	"time"

	"cardswap/domain/entities"
	"cardswap/domain/errs"
	"cardswap/domain/events"
	"cardswap/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

type tradeService struct {
	userRepo         interfaces.UserRepository
	missingCardRepo  interfaces.MissingCardRepository
	tradeRepo        interfaces.TradeRepository
	confirmationRepo interfaces.TradeConfirmationRepository
	eventPublisher   interfaces.EventPublisher
	tradeTTL         time.Duration
}

// NewTradeService creates a trade service bound to the repositories of one unit of work.
// Every method assumes it runs inside that unit's transaction: a returned error
// must roll the transaction back, which also undoes any trade lock taken.
func NewTradeService(
	userRepo interfaces.UserRepository,
	missingCardRepo interfaces.MissingCardRepository,
	tradeRepo interfaces.TradeRepository,
	confirmationRepo interfaces.TradeConfirmationRepository,
	eventPublisher interfaces.EventPublisher,
	tradeTTL time.Duration,
) interfaces.TradeService {
	return &tradeService{
		userRepo:         userRepo,
		missingCardRepo:  missingCardRepo,
		tradeRepo:        tradeRepo,
		confirmationRepo: confirmationRepo,
		eventPublisher:   eventPublisher,
		tradeTTL:         tradeTTL,
	}
}

// Propose opens a pending trade asking for a card the proposer is missing
func (s *tradeService) Propose(ctx context.Context, proposerID int64, requested entities.CardRef) (*entities.Trade, error) {
	acquired, err := s.userRepo.TryAcquireTradeLock(ctx, proposerID)
	if err != nil {
		return nil, errs.Storage("acquire proposer trade lock", err)
	}
	if !acquired {
		return nil, errs.ErrAlreadyInTrade
	}

	missing, err := s.missingCardRepo.IsMissing(ctx, proposerID, requested)
	if err != nil {
		return nil, errs.Storage("check proposer missing card", err)
	}
	if !missing {
		return nil, fmt.Errorf("%w: %s", errs.ErrNotMissing, requested)
	}

	trade := entities.NewTrade(proposerID, requested, time.Now(), s.tradeTTL)
	if err := s.tradeRepo.Create(ctx, trade); err != nil {
		return nil, errs.Storage("create trade", err)
	}

	s.publish(events.TradeProposedEvent{
		TradeID:            trade.ID,
		ProposerID:         proposerID,
		RequestedExpansion: requested.Expansion,
		RequestedCard:      requested.CardNumber,
		ExpiresAt:          trade.ExpiresAt,
	})

	return trade, nil
}

// Match accepts a pending trade. Guards run in a fixed order so the first
// failing one decides the error: self trade, acceptor lock, acceptor owns the
// card, pending trade exists, proposer is not missing the card.
// The trade row is locked before the acceptor's user row.
func (s *tradeService) Match(ctx context.Context, req interfaces.MatchRequest) (*entities.Trade, error) {
	if (req.ProposerID == nil) == (req.TradeID == nil) {
		return nil, errs.BadRequest("match needs exactly one of proposer or trade id")
	}

	trade, err := s.lockTargetTrade(ctx, req)
	if err != nil {
		return nil, err
	}

	var proposerID int64
	switch {
	case req.ProposerID != nil:
		proposerID = *req.ProposerID
	case trade != nil:
		proposerID = trade.ProposerDiscordID
	}
	if trade != nil && trade.Status != entities.TradeStatusPending {
		trade = nil
	}

	if proposerID != 0 && proposerID == req.AcceptorID {
		return nil, errs.ErrSelfTrade
	}

	acquired, err := s.userRepo.TryAcquireTradeLock(ctx, req.AcceptorID)
	if err != nil {
		return nil, errs.Storage("acquire acceptor trade lock", err)
	}
	if !acquired {
		return nil, errs.ErrAlreadyInTrade
	}

	acceptorMissing, err := s.missingCardRepo.IsMissing(ctx, req.AcceptorID, req.Offered)
	if err != nil {
		return nil, errs.Storage("check acceptor missing card", err)
	}
	if acceptorMissing {
		return nil, fmt.Errorf("%w: %s", errs.ErrAcceptorMissingCard, req.Offered)
	}

	if trade == nil {
		return nil, errs.ErrNoActiveProposal
	}

	proposerMissing, err := s.missingCardRepo.IsMissing(ctx, trade.ProposerDiscordID, req.Offered)
	if err != nil {
		return nil, errs.Storage("check proposer missing card", err)
	}
	if proposerMissing {
		return nil, fmt.Errorf("%w: %s", errs.ErrProposerMissingOfferedCard, req.Offered)
	}

	if err := trade.Match(req.AcceptorID, req.Offered, time.Now()); err != nil {
		return nil, fmt.Errorf("failed to match trade: %w", err)
	}
	if err := s.tradeRepo.Update(ctx, trade); err != nil {
		return nil, errs.Storage("update matched trade", err)
	}

	s.publish(events.TradeMatchedEvent{
		TradeID:          trade.ID,
		ProposerID:       trade.ProposerDiscordID,
		AcceptorID:       req.AcceptorID,
		OfferedExpansion: req.Offered.Expansion,
		OfferedCard:      req.Offered.CardNumber,
	})

	return trade, nil
}

// lockTargetTrade returns the trade addressed by the request, or nil. A trade named
// by id is returned in any status so its proposer is known for the self-trade check.
func (s *tradeService) lockTargetTrade(ctx context.Context, req interfaces.MatchRequest) (*entities.Trade, error) {
	if req.TradeID != nil {
		trade, err := s.tradeRepo.GetByIDForUpdate(ctx, *req.TradeID)
		if err != nil {
			return nil, errs.Storage("lock trade", err)
		}
		return trade, nil
	}

	trade, err := s.tradeRepo.GetPendingByProposerForUpdate(ctx, *req.ProposerID)
	if err != nil {
		return nil, errs.Storage("lock pending trade", err)
	}
	return trade, nil
}

// Confirm records a confirmation. The second distinct party settles the trade:
// the requested card leaves the proposer's missing list, the offered card leaves
// the acceptor's, the trade completes and both locks are released.
func (s *tradeService) Confirm(ctx context.Context, tradeID, discordID int64) (*interfaces.ConfirmResult, error) {
	trade, err := s.tradeRepo.GetByIDForUpdate(ctx, tradeID)
	if err != nil {
		return nil, errs.Storage("lock trade", err)
	}
	if trade == nil || trade.Status != entities.TradeStatusActive {
		return nil, errs.ErrUnknownTrade
	}
	if !trade.IsParty(discordID) {
		return nil, errs.ErrNotAParty
	}

	added, err := s.confirmationRepo.Add(ctx, tradeID, discordID)
	if err != nil {
		return nil, errs.Storage("record confirmation", err)
	}

	confirmedBy, err := s.confirmationRepo.ListByTrade(ctx, tradeID)
	if err != nil {
		return nil, errs.Storage("list confirmations", err)
	}
	trade.ConfirmedBy = confirmedBy

	if !trade.ReadyToSettle() {
		if added {
			s.publish(events.TradeConfirmedEvent{
				TradeID:       tradeID,
				ConfirmedBy:   discordID,
				Confirmations: trade.Confirmations(),
			})
		}
		return &interfaces.ConfirmResult{Trade: trade, Outcome: interfaces.ConfirmWaitingForCounterparty}, nil
	}

	if err := s.settle(ctx, trade); err != nil {
		return nil, err
	}
	return &interfaces.ConfirmResult{Trade: trade, Outcome: interfaces.ConfirmSettled}, nil
}

func (s *tradeService) settle(ctx context.Context, trade *entities.Trade) error {
	acceptorID := *trade.AcceptorDiscordID

	removedRequested, err := s.missingCardRepo.Remove(ctx, trade.ProposerDiscordID, trade.Requested)
	if err != nil {
		return errs.Storage("remove requested card from proposer", err)
	}
	removedOffered, err := s.missingCardRepo.Remove(ctx, acceptorID, *trade.Offered)
	if err != nil {
		return errs.Storage("remove offered card from acceptor", err)
	}

	now := time.Now()
	if err := trade.Complete(now); err != nil {
		return fmt.Errorf("failed to complete trade: %w", err)
	}
	if err := s.tradeRepo.Update(ctx, trade); err != nil {
		return errs.Storage("update completed trade", err)
	}
	if err := s.releaseLocks(ctx, trade); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"trade_id":          trade.ID,
		"proposer":          trade.ProposerDiscordID,
		"acceptor":          acceptorID,
		"requested_removed": removedRequested,
		"offered_removed":   removedOffered,
	}).Info("Trade settled")

	if removedRequested {
		s.publish(events.MissingCardRemovedEvent{
			DiscordID:  trade.ProposerDiscordID,
			Expansion:  trade.Requested.Expansion,
			CardNumber: trade.Requested.CardNumber,
			ViaTrade:   true,
		})
	}
	if removedOffered {
		s.publish(events.MissingCardRemovedEvent{
			DiscordID:  acceptorID,
			Expansion:  trade.Offered.Expansion,
			CardNumber: trade.Offered.CardNumber,
			ViaTrade:   true,
		})
	}
	s.publish(events.TradeCompletedEvent{
		TradeID:    trade.ID,
		ProposerID: trade.ProposerDiscordID,
		AcceptorID: acceptorID,
		Duration:   now.Sub(trade.CreatedAt),
	})
	return nil
}

// Cancel cancels a pending or active trade for one of its parties
func (s *tradeService) Cancel(ctx context.Context, tradeID, discordID int64) (*entities.Trade, error) {
	trade, err := s.tradeRepo.GetByIDForUpdate(ctx, tradeID)
	if err != nil {
		return nil, errs.Storage("lock trade", err)
	}
	if trade == nil || !trade.IsOpen() {
		return nil, errs.ErrUnknownTrade
	}
	if !trade.IsParty(discordID) {
		return nil, errs.ErrNotAParty
	}

	if err := s.cancel(ctx, trade, entities.CancelReasonUser, &discordID); err != nil {
		return nil, err
	}
	return trade, nil
}

// Expire cancels a trade whose deadline has passed. The caller must hold the row lock.
func (s *tradeService) Expire(ctx context.Context, trade *entities.Trade) error {
	if !trade.IsExpired(time.Now()) {
		return fmt.Errorf("trade %d is not expired", trade.ID)
	}
	return s.cancel(ctx, trade, entities.CancelReasonExpired, nil)
}

func (s *tradeService) cancel(ctx context.Context, trade *entities.Trade, reason entities.CancelReason, cancelledBy *int64) error {
	fromStatus := trade.Status
	if err := trade.Cancel(reason, time.Now()); err != nil {
		return fmt.Errorf("failed to cancel trade: %w", err)
	}
	if err := s.tradeRepo.Update(ctx, trade); err != nil {
		return errs.Storage("update cancelled trade", err)
	}
	if err := s.releaseLocks(ctx, trade); err != nil {
		return err
	}

	s.publish(events.TradeCancelledEvent{
		TradeID:     trade.ID,
		CancelledBy: cancelledBy,
		Reason:      string(reason),
		FromStatus:  string(fromStatus),
	})
	return nil
}

// releaseLocks clears the in-trade flag of every party in ascending ID order
func (s *tradeService) releaseLocks(ctx context.Context, trade *entities.Trade) error {
	for _, party := range trade.Parties() {
		if err := s.userRepo.ReleaseTradeLock(ctx, party); err != nil {
			return errs.Storage(fmt.Sprintf("release trade lock of %d", party), err)
		}
	}
	return nil
}

// GetOpenTrade returns the user's pending or active trade with its confirmations
func (s *tradeService) GetOpenTrade(ctx context.Context, discordID int64) (*entities.Trade, error) {
	trade, err := s.tradeRepo.GetOpenByUser(ctx, discordID)
	if err != nil {
		return nil, errs.Storage("get open trade", err)
	}
	if trade == nil {
		return nil, nil
	}
	if trade.Status == entities.TradeStatusActive {
		confirmedBy, err := s.confirmationRepo.ListByTrade(ctx, trade.ID)
		if err != nil {
			return nil, errs.Storage("list confirmations", err)
		}
		trade.ConfirmedBy = confirmedBy
	}
	return trade, nil
}

// GetHistory returns the user's most recent trades
func (s *tradeService) GetHistory(ctx context.Context, discordID int64, limit int) ([]*entities.Trade, error) {
	trades, err := s.tradeRepo.ListByUser(ctx, discordID, limit)
	if err != nil {
		return nil, errs.Storage("list trade history", err)
	}
	return trades, nil
}

// ListOpenProposals returns pending trades of other users that the user could fulfil
func (s *tradeService) ListOpenProposals(ctx context.Context, discordID int64, limit int) ([]*entities.Trade, error) {
	trades, err := s.tradeRepo.ListFulfillable(ctx, discordID, limit)
	if err != nil {
		return nil, errs.Storage("list open proposals", err)
	}
	return trades, nil
}

// publish queues an event; a publish failure never fails the transition
func (s *tradeService) publish(event events.Event) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(event); err != nil {
		log.WithFields(log.Fields{
			"eventType": event.Type(),
			"error":     err,
		}).Error("Failed to publish trade event")
	}
}
