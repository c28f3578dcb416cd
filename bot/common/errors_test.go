package common

import (
	"errors"
	"fmt"
	"testing"

	"cardswap/domain/errs"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

func TestUserMessageFor(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantRejection bool
		wantContains  string
	}{
		{"wrapped rejection", fmt.Errorf("match: %w", errs.ErrSelfTrade), true, "yourself"},
		{"bad request", errs.BadRequest("custom id %q", "x"), true, "couldn't be understood"},
		{"user error", NewUserError("Pick a smaller number.", "number too large"), true, "smaller number"},
		{"bad card input", NewBadRequestError("Invalid card: card number is required.", "invalid card"), true, "card number is required"},
		{"storage failure", errs.Storage("lock trade", errors.New("conn reset")), false, GenericErrorMessage},
		{"system error", NewSystemError(errors.New("boom"), "crashed"), false, GenericErrorMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			message, rejection := UserMessageFor(tt.err)
			assert.Equal(t, tt.wantRejection, rejection)
			assert.Contains(t, message, tt.wantContains)
		})
	}
}

func TestWithSuggestions(t *testing.T) {
	assert.Equal(t, "Unknown expansion.", WithSuggestions("Unknown expansion.", nil))
	assert.Equal(t,
		"Unknown expansion. Did you mean **Genesis**, **Genetic Apex**?",
		WithSuggestions("Unknown expansion.", []string{"Genesis", "Genetic Apex"}),
	)
}

func TestRequiresRedirect_Assertions(t *testing.T) {
	interaction := func(guildID, channelID string) *discordgo.InteractionCreate {
		return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{GuildID: guildID, ChannelID: channelID}}
	}

	assert.False(t, RequiresRedirect(interaction("g", "other"), ""), "no designated channel")
	assert.False(t, RequiresRedirect(interaction("g", "trades"), "trades"))
	assert.False(t, RequiresRedirect(interaction("", "dm"), "trades"), "DMs are always allowed")
	assert.True(t, RequiresRedirect(interaction("g", "general"), "trades"))
}

func TestCallerFromInteraction(t *testing.T) {
	guild := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Member: &discordgo.Member{User: &discordgo.User{ID: "100", Username: "alice"}},
	}}
	caller, err := CallerFromInteraction(guild)
	assert.NoError(t, err)
	assert.Equal(t, int64(100), caller.DiscordID)
	assert.Equal(t, "alice", caller.Username)

	dm := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		User: &discordgo.User{ID: "200", Username: "bob"},
	}}
	caller, err = CallerFromInteraction(dm)
	assert.NoError(t, err)
	assert.Equal(t, int64(200), caller.DiscordID)

	broken := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		User: &discordgo.User{ID: "not-a-number"},
	}}
	_, err = CallerFromInteraction(broken)
	assert.ErrorIs(t, err, errs.ErrBadRequest)
}
