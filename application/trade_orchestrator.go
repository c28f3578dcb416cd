package application

import (
	"context"
	"fmt"
	"time"

	"cardswap/application/dto"
	"cardswap/domain/entities"
	"cardswap/domain/errs"
	"cardswap/domain/interfaces"
	"cardswap/domain/services"

	log "github.com/sirupsen/logrus"
)

// Caller identifies the Discord user behind an operation
type Caller struct {
	DiscordID int64
	Username  string
}

// MatchTarget addresses the pending trade an offer is made on.
// Exactly one field must be set.
type MatchTarget struct {
	ProposerID *int64
	TradeID    *int64
}

// TradeOrchestrator runs each trade operation as one serializable unit:
// a single transaction with retry on conflict, followed by notification delivery.
// Notifications are never sent from inside a transaction.
type TradeOrchestrator struct {
	uowFactory   UnitOfWorkFactory
	notifier     TradeNotifier
	tradeTTL     time.Duration
	historyLimit int
}

// NewTradeOrchestrator creates a new trade orchestrator. notifier may be nil.
func NewTradeOrchestrator(uowFactory UnitOfWorkFactory, notifier TradeNotifier, tradeTTL time.Duration, historyLimit int) *TradeOrchestrator {
	return &TradeOrchestrator{
		uowFactory:   uowFactory,
		notifier:     notifier,
		tradeTTL:     tradeTTL,
		historyLimit: historyLimit,
	}
}

// SetNotifier attaches the notifier once the Discord session exists
func (o *TradeOrchestrator) SetNotifier(notifier TradeNotifier) {
	o.notifier = notifier
}

// Propose opens a pending trade for a card the caller is missing
func (o *TradeOrchestrator) Propose(ctx context.Context, caller Caller, requested entities.CardRef) (*entities.Trade, error) {
	if err := o.ensureUser(ctx, caller); err != nil {
		return nil, err
	}

	var trade *entities.Trade
	err := o.withTransaction(ctx, "propose", func(uow UnitOfWork) error {
		card, err := o.cardService(uow).ResolveCard(ctx, requested)
		if err != nil {
			return err
		}
		trade, err = o.tradeService(uow).Propose(ctx, caller.DiscordID, card)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"trade_id": trade.ID,
		"proposer": caller.DiscordID,
		"card":     trade.Requested.String(),
	}).Info("Trade proposed")

	o.syncMessages(ctx, trade)
	return trade, nil
}

// Match offers a card on a pending trade, making the caller its acceptor
func (o *TradeOrchestrator) Match(ctx context.Context, caller Caller, target MatchTarget, offered entities.CardRef) (*entities.Trade, error) {
	if err := o.ensureUser(ctx, caller); err != nil {
		return nil, err
	}

	var trade *entities.Trade
	err := o.withTransaction(ctx, "match", func(uow UnitOfWork) error {
		card, err := o.cardService(uow).ResolveCard(ctx, offered)
		if err != nil {
			return err
		}
		trade, err = o.tradeService(uow).Match(ctx, interfaces.MatchRequest{
			ProposerID: target.ProposerID,
			TradeID:    target.TradeID,
			AcceptorID: caller.DiscordID,
			Offered:    card,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"trade_id": trade.ID,
		"acceptor": caller.DiscordID,
		"offered":  trade.Offered.String(),
	}).Info("Trade matched")

	o.syncMessages(ctx, trade)
	return trade, nil
}

// Confirm records the caller's confirmation and settles the trade once both parties confirmed
func (o *TradeOrchestrator) Confirm(ctx context.Context, caller Caller, tradeID int64) (*interfaces.ConfirmResult, error) {
	var result *interfaces.ConfirmResult
	err := o.withTransaction(ctx, "confirm", func(uow UnitOfWork) error {
		var err error
		result, err = o.tradeService(uow).Confirm(ctx, tradeID, caller.DiscordID)
		return err
	})
	if err != nil {
		return nil, err
	}

	o.syncMessages(ctx, result.Trade)
	return result, nil
}

// Cancel cancels an open trade of the caller. A nil tradeID cancels the caller's open trade.
func (o *TradeOrchestrator) Cancel(ctx context.Context, caller Caller, tradeID *int64) (*entities.Trade, error) {
	var trade *entities.Trade
	err := o.withTransaction(ctx, "cancel", func(uow UnitOfWork) error {
		tradeService := o.tradeService(uow)

		id := tradeID
		if id == nil {
			open, err := tradeService.GetOpenTrade(ctx, caller.DiscordID)
			if err != nil {
				return err
			}
			if open == nil {
				return errs.ErrUnknownTrade
			}
			id = &open.ID
		}

		var err error
		trade, err = tradeService.Cancel(ctx, *id, caller.DiscordID)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"trade_id":     trade.ID,
		"cancelled_by": caller.DiscordID,
	}).Info("Trade cancelled")

	o.syncMessages(ctx, trade)
	return trade, nil
}

// ExpireTrades cancels up to limit open trades whose deadline has passed, one transaction each.
// It returns the number of trades expired.
func (o *TradeOrchestrator) ExpireTrades(ctx context.Context, limit int) (int, error) {
	expired := 0
	for expired < limit {
		var trade *entities.Trade
		err := o.withTransaction(ctx, "expire", func(uow UnitOfWork) error {
			trade = nil
			candidates, err := uow.TradeRepository().GetExpiredForUpdate(ctx, time.Now(), 1)
			if err != nil {
				return errs.Storage("find expired trades", err)
			}
			if len(candidates) == 0 {
				return nil
			}
			trade = candidates[0]
			return o.tradeService(uow).Expire(ctx, trade)
		})
		if err != nil {
			return expired, err
		}
		if trade == nil {
			break
		}

		expired++
		log.WithField("trade_id", trade.ID).Info("Trade expired")
		o.syncMessages(ctx, trade)
	}
	return expired, nil
}

// Status returns the caller's open trade, or nil
func (o *TradeOrchestrator) Status(ctx context.Context, discordID int64) (*entities.Trade, error) {
	var trade *entities.Trade
	err := o.withTransaction(ctx, "status", func(uow UnitOfWork) error {
		var err error
		trade, err = o.tradeService(uow).GetOpenTrade(ctx, discordID)
		return err
	})
	return trade, err
}

// History returns the caller's most recent trades
func (o *TradeOrchestrator) History(ctx context.Context, discordID int64) ([]*entities.Trade, error) {
	var trades []*entities.Trade
	err := o.withTransaction(ctx, "history", func(uow UnitOfWork) error {
		var err error
		trades, err = o.tradeService(uow).GetHistory(ctx, discordID, o.historyLimit)
		return err
	})
	return trades, err
}

// OpenProposals returns pending trades the caller could fulfil
func (o *TradeOrchestrator) OpenProposals(ctx context.Context, discordID int64) ([]*entities.Trade, error) {
	var trades []*entities.Trade
	err := o.withTransaction(ctx, "open proposals", func(uow UnitOfWork) error {
		var err error
		trades, err = o.tradeService(uow).ListOpenProposals(ctx, discordID, o.historyLimit)
		return err
	})
	return trades, err
}

// ensureUser records the caller before any trade lock is taken on their row
func (o *TradeOrchestrator) ensureUser(ctx context.Context, caller Caller) error {
	return o.withTransaction(ctx, "ensure user", func(uow UnitOfWork) error {
		_, err := services.NewUserService(uow.UserRepository()).GetOrCreateUser(ctx, caller.DiscordID, caller.Username)
		return err
	})
}

// withTransaction runs fn in a fresh unit of work, retrying the whole unit on serialization conflicts
func (o *TradeOrchestrator) withTransaction(ctx context.Context, name string, fn func(uow UnitOfWork) error) error {
	return withRetry(ctx, name, func() error {
		uow := o.uowFactory.Create()
		if err := uow.Begin(ctx); err != nil {
			return errs.Storage("begin transaction", err)
		}
		defer uow.Rollback()

		if err := fn(uow); err != nil {
			return err
		}
		if err := uow.Commit(); err != nil {
			return errs.Storage("commit transaction", err)
		}
		return nil
	})
}

func (o *TradeOrchestrator) tradeService(uow UnitOfWork) interfaces.TradeService {
	return services.NewTradeService(
		uow.UserRepository(),
		uow.MissingCardRepository(),
		uow.TradeRepository(),
		uow.TradeConfirmationRepository(),
		uow.EventBus(),
		o.tradeTTL,
	)
}

func (o *TradeOrchestrator) cardService(uow UnitOfWork) interfaces.CardService {
	return services.NewCardService(uow.ExpansionRepository(), uow.MissingCardRepository(), uow.EventBus())
}

// syncMessages brings every message of the trade in line with its state.
// Existing messages are edited; a party without one gets a fresh message.
// New handles are stored afterwards. Delivery failures are logged, never returned.
func (o *TradeOrchestrator) syncMessages(ctx context.Context, trade *entities.Trade) {
	if o.notifier == nil {
		return
	}

	update := messageRefUpdate{replaced: make(map[int64]*string)}
	for _, party := range trade.Parties() {
		notice := dto.TradeToNoticeDTO(trade, dto.PartyNoticeKind(trade), party)

		previous := trade.MessageRefFor(party)
		if previous != nil {
			err := o.notifier.Edit(ctx, *previous, notice)
			if err == nil {
				continue
			}
			log.WithFields(log.Fields{
				"trade_id": trade.ID,
				"user":     party,
				"error":    err,
			}).Warn("Failed to edit trade message, sending a new one")
		}

		handle, err := o.notifier.Notify(ctx, party, notice)
		if err != nil {
			log.WithFields(log.Fields{
				"trade_id": trade.ID,
				"user":     party,
				"error":    err,
			}).Error("Failed to notify trade party")
			continue
		}
		trade.SetMessageRefFor(party, handle)
		update.replaced[party] = previous
	}

	offer := dto.TradeToNoticeDTO(trade, dto.OfferNoticeKind(trade), 0)
	switch {
	case trade.OfferMessageRef != nil:
		if err := o.notifier.Edit(ctx, *trade.OfferMessageRef, offer); err != nil {
			log.WithFields(log.Fields{
				"trade_id": trade.ID,
				"error":    err,
			}).Warn("Failed to update trade listing")
		}
	case trade.Status == entities.TradeStatusPending:
		handle, err := o.notifier.Broadcast(ctx, offer)
		if err != nil {
			log.WithFields(log.Fields{
				"trade_id": trade.ID,
				"error":    err,
			}).Error("Failed to post trade listing")
		} else if handle != "" {
			trade.OfferMessageRef = &handle
			update.offerPosted = true
		}
	}

	if update.changed() {
		o.storeMessageRefs(ctx, trade, update)
	}
}

// messageRefUpdate records the handles syncMessages created. replaced maps a party
// to the handle its new message supersedes, nil when there was none.
type messageRefUpdate struct {
	replaced    map[int64]*string
	offerPosted bool
}

func (u messageRefUpdate) changed() bool {
	return len(u.replaced) > 0 || u.offerPosted
}

// storeMessageRefs persists handles created by syncMessages. If the trade moved on while
// the messages were being sent, the new messages are brought up to date once more.
func (o *TradeOrchestrator) storeMessageRefs(ctx context.Context, trade *entities.Trade, update messageRefUpdate) {
	var current *entities.Trade
	err := o.withTransaction(ctx, "store message refs", func(uow UnitOfWork) error {
		var err error
		current, err = uow.TradeRepository().GetByIDForUpdate(ctx, trade.ID)
		if err != nil {
			return errs.Storage("lock trade", err)
		}
		if current == nil {
			return fmt.Errorf("trade %d disappeared", trade.ID)
		}

		mergeMessageRefs(current, trade, update)
		if err := uow.TradeRepository().UpdateMessageRefs(ctx, current); err != nil {
			return errs.Storage("store message refs", err)
		}

		if current.Status == entities.TradeStatusActive {
			confirmedBy, err := uow.TradeConfirmationRepository().ListByTrade(ctx, current.ID)
			if err != nil {
				return errs.Storage("list confirmations", err)
			}
			current.ConfirmedBy = confirmedBy
		}
		return nil
	})
	if err != nil {
		log.WithFields(log.Fields{
			"trade_id": trade.ID,
			"error":    err,
		}).Error("Failed to store trade message refs")
		return
	}

	if current.Status != trade.Status || len(current.ConfirmedBy) != len(trade.ConfirmedBy) {
		o.syncMessages(ctx, current)
	}
}

// mergeMessageRefs copies the handles named by update from src into dst. A stored
// handle is only overwritten while it is still the one the new message superseded.
func mergeMessageRefs(dst, src *entities.Trade, update messageRefUpdate) {
	for party, previous := range update.replaced {
		if !dst.IsParty(party) {
			continue
		}
		ref := src.MessageRefFor(party)
		if ref == nil {
			continue
		}
		stored := dst.MessageRefFor(party)
		if stored != nil && (previous == nil || *stored != *previous) {
			continue
		}
		dst.SetMessageRefFor(party, *ref)
	}

	if update.offerPosted && dst.OfferMessageRef == nil {
		dst.OfferMessageRef = src.OfferMessageRef
	}
}
