package common

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// EnforceTradeChannel answers commands issued outside the designated channel with a pointer to it.
// It returns false when the interaction must not be processed. DMs and an empty channel ID pass.
func EnforceTradeChannel(s *discordgo.Session, i *discordgo.InteractionCreate, tradeChannelID string) bool {
	if !RequiresRedirect(i, tradeChannelID) {
		return true
	}

	RespondWithError(s, i, fmt.Sprintf("Trading happens in <#%s>. Please use the command there.", tradeChannelID))
	return false
}

// RequiresRedirect reports whether a guild interaction happened outside the trade channel
func RequiresRedirect(i *discordgo.InteractionCreate, tradeChannelID string) bool {
	if tradeChannelID == "" || i.GuildID == "" {
		return false
	}
	return i.ChannelID != tradeChannelID
}
