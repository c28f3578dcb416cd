package cards

import (
	"context"
	"errors"
	"fmt"

	"cardswap/application"
	"cardswap/bot/common"
	"cardswap/domain/errs"
	"cardswap/domain/interfaces"
	"cardswap/domain/services"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Feature handles registration and the missing-card ledger commands
type Feature struct {
	uowFactory application.UnitOfWorkFactory
}

// NewFeature creates a new cards feature instance
func NewFeature(uowFactory application.UnitOfWorkFactory) *Feature {
	return &Feature{
		uowFactory: uowFactory,
	}
}

// HandleStartCommand handles /start
func (f *Feature) HandleStartCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	caller, err := common.CallerFromInteraction(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	var summary map[string]int
	err = f.withCardService(context.Background(), caller, func(ctx context.Context, cards interfaces.CardService) error {
		var err error
		summary, err = cards.MissingSummary(ctx, caller.DiscordID)
		return err
	})
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	if err := common.RespondWithEmbed(s, i, CreateWelcomeEmbed(caller.Username, summary), nil, true); err != nil {
		log.Errorf("Failed to send welcome message: %v", err)
	}
}

// HandleExpansionCommand handles /expansion add|list
func (f *Feature) HandleExpansionCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	sub, ok := subcommand(s, i)
	if !ok {
		return
	}

	switch sub.Name {
	case "add":
		f.handleExpansionAdd(s, i, optionMap(sub.Options))
	case "list":
		f.handleExpansionList(s, i)
	default:
		common.RespondWithError(s, i, "Unknown expansion subcommand")
	}
}

// HandleMissingCommand handles /missing add|remove|list
func (f *Feature) HandleMissingCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	sub, ok := subcommand(s, i)
	if !ok {
		return
	}

	switch sub.Name {
	case "add":
		f.handleMissingAdd(s, i, optionMap(sub.Options))
	case "remove":
		f.handleMissingRemove(s, i, optionMap(sub.Options))
	case "list":
		f.handleMissingList(s, i, optionMap(sub.Options))
	default:
		common.RespondWithError(s, i, "Unknown missing subcommand")
	}
}

func subcommand(s *discordgo.Session, i *discordgo.InteractionCreate) (*discordgo.ApplicationCommandInteractionDataOption, bool) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		common.RespondWithError(s, i, "Please choose a subcommand")
		return nil, false
	}
	return options[0], true
}

// withCardService runs fn in one transaction after recording the caller
func (f *Feature) withCardService(ctx context.Context, caller application.Caller, fn func(ctx context.Context, cards interfaces.CardService) error) error {
	uow := f.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return errs.Storage("begin transaction", err)
	}
	defer uow.Rollback()

	userService := services.NewUserService(uow.UserRepository())
	if _, err := userService.GetOrCreateUser(ctx, caller.DiscordID, caller.Username); err != nil {
		return err
	}

	cardService := services.NewCardService(uow.ExpansionRepository(), uow.MissingCardRepository(), uow.EventBus())
	if err := fn(ctx, cardService); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return errs.Storage("commit transaction", err)
	}
	return nil
}

// withSuggestions turns an unknown expansion error into a message naming close matches
func (f *Feature) withSuggestions(ctx context.Context, err error, query string) error {
	if !errors.Is(err, errs.ErrUnknownExpansion) {
		return err
	}

	uow := f.uowFactory.Create()
	if beginErr := uow.Begin(ctx); beginErr != nil {
		return err
	}
	defer uow.Rollback()

	suggestions, suggestErr := services.NewCardService(uow.ExpansionRepository(), uow.MissingCardRepository(), nil).
		SuggestExpansions(ctx, query, common.MaxSuggestions)
	if suggestErr != nil {
		log.WithError(suggestErr).Warn("Failed to suggest expansions")
	}

	return &common.BotError{
		UserMessage: common.WithSuggestions(fmt.Sprintf("Unknown expansion **%s**.", query), suggestions),
		LogMessage:  "unknown expansion",
		Ephemeral:   true,
		Err:         err,
	}
}
