package cards

import (
	"context"
	"fmt"

	"cardswap/application"
	"cardswap/bot/common"
	"cardswap/domain/entities"
	"cardswap/domain/interfaces"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

type commandOptions map[string]*discordgo.ApplicationCommandInteractionDataOption

func optionMap(options []*discordgo.ApplicationCommandInteractionDataOption) commandOptions {
	m := make(commandOptions, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}

func (o commandOptions) str(name string) string {
	if opt, ok := o[name]; ok {
		return opt.StringValue()
	}
	return ""
}

func (o commandOptions) card() (entities.CardRef, error) {
	card, err := entities.NewCardRef(o.str("expansion"), o.str("card"))
	if err != nil {
		return entities.CardRef{}, common.NewBadRequestError(fmt.Sprintf("Invalid card: %v.", err), "invalid card input")
	}
	return card, nil
}

func (f *Feature) handleExpansionAdd(s *discordgo.Session, i *discordgo.InteractionCreate, opts commandOptions) {
	caller, err := common.CallerFromInteraction(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	var total int
	if opt, ok := opts["total"]; ok {
		total = int(opt.IntValue())
	}

	var expansion *entities.Expansion
	err = f.withCardService(context.Background(), caller, func(ctx context.Context, cards interfaces.CardService) error {
		var err error
		expansion, err = cards.AddExpansion(ctx, opts.str("name"), total)
		return err
	})
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	log.WithFields(log.Fields{
		"expansion":   expansion.Name,
		"total_cards": expansion.TotalCards,
		"user_id":     caller.DiscordID,
	}).Info("Expansion saved")

	if err := common.RespondWithSuccess(s, i, fmt.Sprintf("Expansion **%s** has %d cards.", expansion.Name, expansion.TotalCards), false); err != nil {
		log.Errorf("Failed to respond: %v", err)
	}
}

func (f *Feature) handleExpansionList(s *discordgo.Session, i *discordgo.InteractionCreate) {
	caller, err := common.CallerFromInteraction(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	var expansions []*entities.Expansion
	err = f.withCardService(context.Background(), caller, func(ctx context.Context, cards interfaces.CardService) error {
		var err error
		expansions, err = cards.ListExpansions(ctx)
		return err
	})
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	if err := common.RespondWithEmbed(s, i, CreateExpansionListEmbed(expansions), nil, true); err != nil {
		log.Errorf("Failed to respond: %v", err)
	}
}

func (f *Feature) handleMissingAdd(s *discordgo.Session, i *discordgo.InteractionCreate, opts commandOptions) {
	f.updateMissing(s, i, opts, true)
}

func (f *Feature) handleMissingRemove(s *discordgo.Session, i *discordgo.InteractionCreate, opts commandOptions) {
	f.updateMissing(s, i, opts, false)
}

func (f *Feature) updateMissing(s *discordgo.Session, i *discordgo.InteractionCreate, opts commandOptions, add bool) {
	caller, err := common.CallerFromInteraction(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	card, err := opts.card()
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	message, err := f.setMissing(context.Background(), caller, card, add)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	if err := common.RespondWithSuccess(s, i, message, true); err != nil {
		log.Errorf("Failed to respond: %v", err)
	}
}

// setMissing adds or removes a ledger entry and describes the outcome
func (f *Feature) setMissing(ctx context.Context, caller application.Caller, card entities.CardRef, add bool) (string, error) {
	var changed bool
	err := f.withCardService(ctx, caller, func(ctx context.Context, cards interfaces.CardService) error {
		var err error
		if add {
			changed, err = cards.AddMissing(ctx, caller.DiscordID, card)
		} else {
			changed, err = cards.RemoveMissing(ctx, caller.DiscordID, card)
		}
		return err
	})
	if err != nil {
		return "", f.withSuggestions(ctx, err, card.Expansion)
	}

	switch {
	case add && changed:
		return fmt.Sprintf("Added %s to your missing list.", card), nil
	case add:
		return fmt.Sprintf("%s is already on your missing list.", card), nil
	case changed:
		return fmt.Sprintf("Removed %s from your missing list.", card), nil
	default:
		return fmt.Sprintf("%s wasn't on your missing list.", card), nil
	}
}

func (f *Feature) handleMissingList(s *discordgo.Session, i *discordgo.InteractionCreate, opts commandOptions) {
	caller, err := common.CallerFromInteraction(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}
	ctx := context.Background()
	expansion := opts.str("expansion")

	var embed *discordgo.MessageEmbed
	err = f.withCardService(ctx, caller, func(ctx context.Context, cards interfaces.CardService) error {
		if expansion == "" {
			summary, err := cards.MissingSummary(ctx, caller.DiscordID)
			if err != nil {
				return err
			}
			embed = CreateMissingSummaryEmbed(summary)
			return nil
		}

		missing, err := cards.ListMissing(ctx, caller.DiscordID, expansion)
		if err != nil {
			return err
		}
		embed = CreateMissingListEmbed(expansion, missing)
		return nil
	})
	if err != nil {
		common.HandleError(s, i, f.withSuggestions(ctx, err, expansion), false)
		return
	}

	if err := common.RespondWithEmbed(s, i, embed, nil, true); err != nil {
		log.Errorf("Failed to respond: %v", err)
	}
}
