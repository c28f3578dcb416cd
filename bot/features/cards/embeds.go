package cards

import (
	"fmt"
	"strings"

	"cardswap/bot/common"
	"cardswap/domain/entities"

	"github.com/bwmarrin/discordgo"
)

// CreateWelcomeEmbed greets a user and shows what they are missing
func CreateWelcomeEmbed(username string, summary map[string]int) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: fmt.Sprintf("Welcome, %s!", username),
		Color: common.ColorPrimary,
		Description: "List the cards you're missing with `/missing add`, then ask for one with `/trade propose`. " +
			"Anyone with a spare can answer with a card you already own.",
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:  "Missing cards",
				Value: common.FormatMissingSummary(summary),
			},
		},
	}
}

// CreateExpansionListEmbed lists the registered expansions
func CreateExpansionListEmbed(expansions []*entities.Expansion) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "Expansions",
		Color: common.ColorInfo,
	}
	if len(expansions) == 0 {
		embed.Description = "No expansions yet. Add one with `/expansion add`."
		return embed
	}

	lines := make([]string, len(expansions))
	for i, expansion := range expansions {
		lines[i] = fmt.Sprintf("**%s**: %d cards", expansion.Name, expansion.TotalCards)
	}
	embed.Description = strings.Join(lines, "\n")
	return embed
}

// CreateMissingSummaryEmbed shows missing counts per expansion
func CreateMissingSummaryEmbed(summary map[string]int) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "Your missing cards",
		Color:       common.ColorInfo,
		Description: common.FormatMissingSummary(summary),
		Footer: &discordgo.MessageEmbedFooter{
			Text: "Use /missing list <expansion> for the card numbers",
		},
	}
}

// CreateMissingListEmbed lists the missing card numbers of one expansion
func CreateMissingListEmbed(expansion string, missing []*entities.MissingCard) *discordgo.MessageEmbed {
	numbers := make([]string, len(missing))
	for i, card := range missing {
		numbers[i] = card.Card.CardNumber
		expansion = card.Card.Expansion
	}

	return &discordgo.MessageEmbed{
		Title: fmt.Sprintf("Missing from %s", expansion),
		Color: common.ColorInfo,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:  fmt.Sprintf("%d cards", len(missing)),
				Value: common.FormatCardNumbers(numbers, common.MaxEmbedFieldValue),
			},
		},
	}
}
