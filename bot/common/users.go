package common

import (
	"fmt"
	"strconv"

	"cardswap/application"
	"cardswap/domain/errs"

	"github.com/bwmarrin/discordgo"
)

// InteractionUser returns the invoking user for guild and DM interactions alike
func InteractionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

// InteractionUserID returns the invoking user's ID, or "" when unknown
func InteractionUserID(i *discordgo.InteractionCreate) string {
	if user := InteractionUser(i); user != nil {
		return user.ID
	}
	return ""
}

// InteractionName describes the interaction for logs
func InteractionName(i *discordgo.InteractionCreate) string {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		return "/" + i.ApplicationCommandData().Name
	case discordgo.InteractionMessageComponent:
		return i.MessageComponentData().CustomID
	case discordgo.InteractionModalSubmit:
		return i.ModalSubmitData().CustomID
	default:
		return fmt.Sprintf("interaction-%d", i.Type)
	}
}

// CallerFromInteraction identifies the user behind an interaction
func CallerFromInteraction(i *discordgo.InteractionCreate) (application.Caller, error) {
	user := InteractionUser(i)
	if user == nil {
		return application.Caller{}, errs.BadRequest("interaction has no user")
	}

	discordID, err := ParseUserID(user.ID)
	if err != nil {
		return application.Caller{}, errs.BadRequest("invalid user id %q", user.ID)
	}
	return application.Caller{DiscordID: discordID, Username: user.Username}, nil
}

// ParseUserID converts a Discord snowflake string to int64
func ParseUserID(userID string) (int64, error) {
	return strconv.ParseInt(userID, 10, 64)
}

// FormatUserID converts a Discord ID to its snowflake string
func FormatUserID(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

// GetUserMention returns a Discord mention for a user ID
func GetUserMention(userID int64) string {
	return fmt.Sprintf("<@%d>", userID)
}
