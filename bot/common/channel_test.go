package common

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

func TestRequiresRedirect(t *testing.T) {
	interaction := func(guildID, channelID string) *discordgo.InteractionCreate {
		return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{GuildID: guildID, ChannelID: channelID}}
	}

	tests := []struct {
		name           string
		interaction    *discordgo.InteractionCreate
		tradeChannelID string
		want           bool
	}{
		{"no restriction configured", interaction("g1", "general"), "", false},
		{"direct message", interaction("", "dm"), "trades", false},
		{"inside trade channel", interaction("g1", "trades"), "trades", false},
		{"other guild channel", interaction("g1", "general"), "trades", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RequiresRedirect(tt.interaction, tt.tradeChannelID))
		})
	}
}
