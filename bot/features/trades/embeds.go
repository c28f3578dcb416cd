package trades

import (
	"fmt"
	"strings"

	"cardswap/application/dto"
	"cardswap/bot/common"
	"cardswap/domain/entities"

	"github.com/bwmarrin/discordgo"
)

// CreateNoticeEmbed renders a trade notice for a party or for the trade channel
func CreateNoticeEmbed(notice dto.TradeNoticeDTO) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:  fmt.Sprintf("Trade #%d", notice.TradeID),
		Fields: tradeFields(notice),
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Trade ID: %d", notice.TradeID),
		},
	}

	switch notice.Kind {
	case dto.NoticeProposed:
		embed.Color = common.ColorPrimary
		embed.Description = fmt.Sprintf("Your request for %s is listed. You'll hear from me when someone offers a card in return.\nExpires %s.",
			common.FormatCard(notice.Requested), common.FormatDiscordTimestamp(notice.ExpiresAt, "R"))

	case dto.NoticeOfferOpen:
		embed.Color = common.ColorInfo
		embed.Title = fmt.Sprintf("Trade #%d - looking for %s", notice.TradeID, notice.Requested)
		embed.Description = fmt.Sprintf("%s is missing %s. Have a spare? Make an offer below.\nExpires %s.",
			common.GetUserMention(notice.ProposerID), common.FormatCard(notice.Requested),
			common.FormatDiscordTimestamp(notice.ExpiresAt, "R"))

	case dto.NoticeOfferTaken:
		embed.Color = common.ColorMuted
		embed.Description = "This request has been answered."

	case dto.NoticeOfferClosed:
		embed.Color = common.ColorMuted
		embed.Description = fmt.Sprintf("This request %s.", closedVerb(notice.CancelReason))

	case dto.NoticeMatched, dto.NoticeConfirmed:
		embed.Color = common.ColorWarning
		embed.Description = matchedDescription(notice)

	case dto.NoticeCompleted:
		embed.Color = common.ColorSuccess
		embed.Description = completedDescription(notice)

	case dto.NoticeCancelled:
		embed.Color = common.ColorDanger
		embed.Description = fmt.Sprintf("This trade %s. No cards changed hands.", closedVerb(notice.CancelReason))
	}

	return embed
}

func tradeFields(notice dto.TradeNoticeDTO) []*discordgo.MessageEmbedField {
	fields := []*discordgo.MessageEmbedField{
		{
			Name:   "Requested",
			Value:  fmt.Sprintf("%s for %s", common.FormatCard(notice.Requested), common.GetUserMention(notice.ProposerID)),
			Inline: true,
		},
	}

	if notice.Offered != nil && notice.AcceptorID != nil {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   "Offered",
			Value:  fmt.Sprintf("%s for %s", common.FormatCard(*notice.Offered), common.GetUserMention(*notice.AcceptorID)),
			Inline: true,
		})
	}

	if notice.Kind == dto.NoticeMatched || notice.Kind == dto.NoticeConfirmed {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   "Confirmations",
			Value:  confirmationLine(notice),
			Inline: false,
		})
	}

	return fields
}

func matchedDescription(notice dto.TradeNoticeDTO) string {
	if notice.AcceptorID == nil || notice.Offered == nil {
		return "Waiting for both parties to confirm."
	}

	var receive dto.CardDTO
	var counterparty int64
	if notice.Recipient == notice.ProposerID {
		receive, counterparty = notice.Requested, *notice.AcceptorID
	} else {
		receive, counterparty = *notice.Offered, notice.ProposerID
	}

	if notice.HasConfirmed(notice.Recipient) {
		return fmt.Sprintf("You confirmed. Waiting for %s.", common.GetUserMention(counterparty))
	}
	return fmt.Sprintf("%s will send you %s. Confirm once you have exchanged cards.",
		common.GetUserMention(counterparty), common.FormatCard(receive))
}

func completedDescription(notice dto.TradeNoticeDTO) string {
	if notice.Offered == nil || notice.AcceptorID == nil {
		return "Trade complete."
	}
	return fmt.Sprintf("Trade complete! %s received %s and %s received %s. Your missing lists have been updated.",
		common.GetUserMention(notice.ProposerID), common.FormatCard(notice.Requested),
		common.GetUserMention(*notice.AcceptorID), common.FormatCard(*notice.Offered))
}

func confirmationLine(notice dto.TradeNoticeDTO) string {
	parties := []int64{notice.ProposerID}
	if notice.AcceptorID != nil {
		parties = append(parties, *notice.AcceptorID)
	}

	lines := make([]string, 0, len(parties))
	for _, party := range parties {
		mark := "⏳"
		if notice.HasConfirmed(party) {
			mark = "✅"
		}
		lines = append(lines, fmt.Sprintf("%s %s", mark, common.GetUserMention(party)))
	}
	return strings.Join(lines, "\n")
}

func closedVerb(reason string) string {
	if reason == string(entities.CancelReasonExpired) {
		return "expired"
	}
	return "was cancelled"
}

// CreateStatusEmbed shows the caller's open trade
func CreateStatusEmbed(trade *entities.Trade, viewer int64) *discordgo.MessageEmbed {
	if trade == nil {
		return &discordgo.MessageEmbed{
			Title:       "No open trade",
			Color:       common.ColorMuted,
			Description: "Use `/trade propose` to ask for a card you're missing.",
		}
	}
	return CreateNoticeEmbed(dto.TradeToNoticeDTO(trade, dto.PartyNoticeKind(trade), viewer))
}

// CreateHistoryEmbed lists the caller's recent trades
func CreateHistoryEmbed(trades []*entities.Trade, viewer int64) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "Your trades",
		Color: common.ColorPrimary,
	}
	if len(trades) == 0 {
		embed.Description = "You haven't traded yet."
		return embed
	}

	lines := make([]string, 0, len(trades))
	for _, trade := range trades {
		lines = append(lines, historyLine(trade, viewer))
	}
	embed.Description = strings.Join(lines, "\n")
	return embed
}

func historyLine(trade *entities.Trade, viewer int64) string {
	line := fmt.Sprintf("`#%d` %s %s", trade.ID, statusIcon(trade.Status), trade.Requested)
	if trade.Offered != nil {
		line += fmt.Sprintf(" ⇄ %s", *trade.Offered)
	}
	if counterparty, ok := trade.Counterparty(viewer); ok {
		line += " with " + common.GetUserMention(counterparty)
	}
	return line + " " + common.FormatDiscordTimestamp(trade.CreatedAt, "d")
}

func statusIcon(status entities.TradeStatus) string {
	switch status {
	case entities.TradeStatusPending:
		return "🕓"
	case entities.TradeStatusActive:
		return "🤝"
	case entities.TradeStatusCompleted:
		return "✅"
	default:
		return "✖️"
	}
}

// CreateOpenProposalsEmbed lists pending requests the viewer could fulfil
func CreateOpenProposalsEmbed(trades []*entities.Trade) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "Open requests you can answer",
		Color: common.ColorInfo,
	}
	if len(trades) == 0 {
		embed.Description = "Nobody is looking for a card you have right now."
		return embed
	}

	lines := make([]string, 0, len(trades))
	for _, trade := range trades {
		lines = append(lines, fmt.Sprintf("`#%d` %s wants %s, expires %s",
			trade.ID, common.GetUserMention(trade.ProposerDiscordID), trade.Requested,
			common.FormatDiscordTimestamp(trade.ExpiresAt, "R")))
	}
	embed.Description = strings.Join(lines, "\n")
	embed.Footer = &discordgo.MessageEmbedFooter{Text: "Answer with /trade offer"}
	return embed
}
