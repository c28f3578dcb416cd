package trades

import (
	"context"
	"fmt"

	"cardswap/application"
	"cardswap/bot/common"
	"cardswap/domain/entities"
	"cardswap/domain/errs"
	"cardswap/domain/interfaces"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// commandOptions indexes subcommand options by name
type commandOptions map[string]*discordgo.ApplicationCommandInteractionDataOption

func optionMap(options []*discordgo.ApplicationCommandInteractionDataOption) commandOptions {
	m := make(commandOptions, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}

func (o commandOptions) tradeID() *int64 {
	opt, ok := o["trade_id"]
	if !ok {
		return nil
	}
	id := opt.IntValue()
	return &id
}

func (o commandOptions) card() (entities.CardRef, error) {
	var expansion, number string
	if opt, ok := o["expansion"]; ok {
		expansion = opt.StringValue()
	}
	if opt, ok := o["card"]; ok {
		number = opt.StringValue()
	}
	return ParseCardInput(expansion, number)
}

// begin defers an ephemeral reply and identifies the caller
func begin(s *discordgo.Session, i *discordgo.InteractionCreate) (application.Caller, bool) {
	if err := common.DeferResponse(s, i, true); err != nil {
		log.Errorf("Failed to defer response: %v", err)
		return application.Caller{}, false
	}

	caller, err := common.CallerFromInteraction(i)
	if err != nil {
		common.HandleError(s, i, err, true)
		return application.Caller{}, false
	}
	return caller, true
}

func followUpEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) {
	if _, err := common.FollowUpWithEmbed(s, i, embed, nil, true); err != nil {
		log.Errorf("Failed to send follow-up: %v", err)
	}
}

func followUpSuccess(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	if err := common.FollowUpWithSuccess(s, i, message, true); err != nil {
		log.Errorf("Failed to send follow-up: %v", err)
	}
}

// handlePropose handles /trade propose
func (f *Feature) handlePropose(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	card, err := optionMap(options).card()
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	caller, ok := begin(s, i)
	if !ok {
		return
	}

	trade, err := f.orchestrator.Propose(context.Background(), caller, card)
	if err != nil {
		common.HandleError(s, i, err, true)
		return
	}

	followUpSuccess(s, i, fmt.Sprintf("Trade #%d opened for %s. I'll message you when someone makes an offer.", trade.ID, trade.Requested))
}

// handleOffer handles /trade offer, addressed either by proposer or by trade ID
func (f *Feature) handleOffer(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	opts := optionMap(options)

	card, err := opts.card()
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	var target application.MatchTarget
	if opt, ok := opts["proposer"]; ok {
		proposerID, err := common.ParseUserID(opt.UserValue(nil).ID)
		if err != nil {
			common.HandleError(s, i, errs.BadRequest("invalid user option"), false)
			return
		}
		target.ProposerID = &proposerID
	}
	target.TradeID = opts.tradeID()

	if (target.ProposerID == nil) == (target.TradeID == nil) {
		common.HandleError(s, i, common.NewBadRequestError("Pick either a proposer or a trade ID.", "offer target ambiguous"), false)
		return
	}

	caller, ok := begin(s, i)
	if !ok {
		return
	}
	f.match(s, i, caller, target, card)
}

// handleOfferModalSubmit answers a listing's offer button
func (f *Feature) handleOfferModalSubmit(s *discordgo.Session, i *discordgo.InteractionCreate) {
	tradeID, card, err := ParseOfferModal(i.ModalSubmitData())
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	caller, ok := begin(s, i)
	if !ok {
		return
	}
	f.match(s, i, caller, application.MatchTarget{TradeID: &tradeID}, card)
}

func (f *Feature) match(s *discordgo.Session, i *discordgo.InteractionCreate, caller application.Caller, target application.MatchTarget, card entities.CardRef) {
	trade, err := f.orchestrator.Match(context.Background(), caller, target, card)
	if err != nil {
		common.HandleError(s, i, err, true)
		return
	}

	followUpSuccess(s, i, fmt.Sprintf("You offered %s for %s on trade #%d. Check your DMs to confirm once the cards are exchanged.",
		*trade.Offered, trade.Requested, trade.ID))
}

// handleConfirm handles /trade confirm
func (f *Feature) handleConfirm(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	f.confirm(s, i, optionMap(options).tradeID())
}

func (f *Feature) confirm(s *discordgo.Session, i *discordgo.InteractionCreate, tradeID *int64) {
	caller, ok := begin(s, i)
	if !ok {
		return
	}
	ctx := context.Background()

	if tradeID == nil {
		open, err := f.orchestrator.Status(ctx, caller.DiscordID)
		if err != nil {
			common.HandleError(s, i, err, true)
			return
		}
		if open == nil {
			common.HandleError(s, i, errs.ErrUnknownTrade, true)
			return
		}
		tradeID = &open.ID
	}

	result, err := f.orchestrator.Confirm(ctx, caller, *tradeID)
	if err != nil {
		common.HandleError(s, i, err, true)
		return
	}

	if result.Outcome == interfaces.ConfirmSettled {
		followUpSuccess(s, i, fmt.Sprintf("Trade #%d is complete. Your missing list has been updated.", result.Trade.ID))
		return
	}
	followUpSuccess(s, i, fmt.Sprintf("Confirmed trade #%d. Waiting for the other party.", result.Trade.ID))
}

// handleCancel handles /trade cancel
func (f *Feature) handleCancel(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	f.cancel(s, i, optionMap(options).tradeID())
}

func (f *Feature) cancel(s *discordgo.Session, i *discordgo.InteractionCreate, tradeID *int64) {
	caller, ok := begin(s, i)
	if !ok {
		return
	}

	trade, err := f.orchestrator.Cancel(context.Background(), caller, tradeID)
	if err != nil {
		common.HandleError(s, i, err, true)
		return
	}

	followUpSuccess(s, i, fmt.Sprintf("Trade #%d cancelled.", trade.ID))
}

// handleStatus handles /trade status
func (f *Feature) handleStatus(s *discordgo.Session, i *discordgo.InteractionCreate) {
	caller, ok := begin(s, i)
	if !ok {
		return
	}

	trade, err := f.orchestrator.Status(context.Background(), caller.DiscordID)
	if err != nil {
		common.HandleError(s, i, err, true)
		return
	}
	followUpEmbed(s, i, CreateStatusEmbed(trade, caller.DiscordID))
}

// handleHistory handles /trade history
func (f *Feature) handleHistory(s *discordgo.Session, i *discordgo.InteractionCreate) {
	caller, ok := begin(s, i)
	if !ok {
		return
	}

	trades, err := f.orchestrator.History(context.Background(), caller.DiscordID)
	if err != nil {
		common.HandleError(s, i, err, true)
		return
	}
	followUpEmbed(s, i, CreateHistoryEmbed(trades, caller.DiscordID))
}

// handleOpenProposals handles /trade open
func (f *Feature) handleOpenProposals(s *discordgo.Session, i *discordgo.InteractionCreate) {
	caller, ok := begin(s, i)
	if !ok {
		return
	}

	trades, err := f.orchestrator.OpenProposals(context.Background(), caller.DiscordID)
	if err != nil {
		common.HandleError(s, i, err, true)
		return
	}
	if len(trades) > common.MaxListedTrades {
		trades = trades[:common.MaxListedTrades]
	}
	followUpEmbed(s, i, CreateOpenProposalsEmbed(trades))
}
