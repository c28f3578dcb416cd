package bot

import (
	"fmt"

	"cardswap/domain/entities"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

func cardOptions(expansionDescription, cardDescription string) []*discordgo.ApplicationCommandOption {
	return []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "expansion",
			Description: expansionDescription,
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "card",
			Description: cardDescription,
			Required:    true,
			MaxLength:   entities.MaxCardNumberLength,
		},
	}
}

func tradeIDOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        "trade_id",
		Description: description,
		Required:    false,
	}
}

// commandDefinitions returns every slash command the bot serves
func commandDefinitions() []*discordgo.ApplicationCommand {
	minTotal := float64(1)

	return []*discordgo.ApplicationCommand{
		{
			Name:        "start",
			Description: "Register with the card swap bot",
		},
		{
			Name:        "expansion",
			Description: "Manage card expansions",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "add",
					Description: "Register an expansion or update its card count",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "name",
							Description: "Expansion name",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "total",
							Description: "Number of cards in the expansion",
							Required:    true,
							MinValue:    &minTotal,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "list",
					Description: "List registered expansions",
				},
			},
		},
		{
			Name:        "missing",
			Description: "Manage the cards you are missing",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "add",
					Description: "Add a card to your missing list",
					Options:     cardOptions("Expansion of the card", "Card number"),
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "remove",
					Description: "Remove a card from your missing list",
					Options:     cardOptions("Expansion of the card", "Card number"),
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "list",
					Description: "Show your missing cards",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "expansion",
							Description: "Only list this expansion",
							Required:    false,
						},
					},
				},
			},
		},
		{
			Name:        "trade",
			Description: "Swap cards with other collectors",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "propose",
					Description: "Ask for a card you are missing",
					Options:     cardOptions("Expansion of the card you want", "Number of the card you want"),
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "offer",
					Description: "Offer a card in return for someone's request",
					Options: append(cardOptions("Expansion of the card you give", "Number of the card you give"),
						&discordgo.ApplicationCommandOption{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "proposer",
							Description: "User whose request you answer",
							Required:    false,
						},
						tradeIDOption("Trade you answer"),
					),
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "confirm",
					Description: "Confirm you exchanged the cards",
					Options:     []*discordgo.ApplicationCommandOption{tradeIDOption("Trade to confirm, defaults to your open trade")},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "cancel",
					Description: "Cancel your open trade",
					Options:     []*discordgo.ApplicationCommandOption{tradeIDOption("Trade to cancel, defaults to your open trade")},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "status",
					Description: "Show your open trade",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "history",
					Description: "Show your recent trades",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "open",
					Description: "List requests you could answer",
				},
			},
		},
	}
}

// registerCommands registers all slash commands with Discord
func (b *Bot) registerCommands() error {
	appID := b.session.State.User.ID

	for _, cmd := range commandDefinitions() {
		if _, err := b.session.ApplicationCommandCreate(appID, b.config.GuildID, cmd); err != nil {
			return fmt.Errorf("cannot create '%s' command: %w", cmd.Name, err)
		}
	}

	log.WithField("guild_id", b.config.GuildID).Info("Slash commands registered")
	return nil
}
