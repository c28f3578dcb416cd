package trades

import (
	"context"

	"cardswap/application"
	"cardswap/bot/common"
	"cardswap/domain/entities"
	"cardswap/domain/interfaces"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Orchestrator is the trade protocol as seen by the Discord layer
type Orchestrator interface {
	Propose(ctx context.Context, caller application.Caller, requested entities.CardRef) (*entities.Trade, error)
	Match(ctx context.Context, caller application.Caller, target application.MatchTarget, offered entities.CardRef) (*entities.Trade, error)
	Confirm(ctx context.Context, caller application.Caller, tradeID int64) (*interfaces.ConfirmResult, error)
	Cancel(ctx context.Context, caller application.Caller, tradeID *int64) (*entities.Trade, error)
	Status(ctx context.Context, discordID int64) (*entities.Trade, error)
	History(ctx context.Context, discordID int64) ([]*entities.Trade, error)
	OpenProposals(ctx context.Context, discordID int64) ([]*entities.Trade, error)
}

// Feature represents the trade feature
type Feature struct {
	orchestrator Orchestrator
}

// NewFeature creates a new trade feature instance
func NewFeature(orchestrator Orchestrator) *Feature {
	return &Feature{
		orchestrator: orchestrator,
	}
}

// HandleCommand handles the /trade command and its subcommands
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		common.RespondWithError(s, i, "Please choose a trade subcommand")
		return
	}

	sub := options[0]
	switch sub.Name {
	case "propose":
		f.handlePropose(s, i, sub.Options)
	case "offer":
		f.handleOffer(s, i, sub.Options)
	case "confirm":
		f.handleConfirm(s, i, sub.Options)
	case "cancel":
		f.handleCancel(s, i, sub.Options)
	case "status":
		f.handleStatus(s, i)
	case "history":
		f.handleHistory(s, i)
	case "open":
		f.handleOpenProposals(s, i)
	default:
		log.Warnf("Unknown trade subcommand: %s", sub.Name)
		common.RespondWithError(s, i, "Unknown trade subcommand")
	}
}

// HandleInteraction handles trade buttons and modals
func (f *Feature) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionMessageComponent:
		f.handleComponentInteraction(s, i)
	case discordgo.InteractionModalSubmit:
		f.handleOfferModalSubmit(s, i)
	default:
		log.Warnf("Unknown interaction type in trades: %v", i.Type)
	}
}

func (f *Feature) handleComponentInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	action, tradeID, err := ParseCustomID(i.MessageComponentData().CustomID)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	switch action {
	case ActionOffer:
		if err := common.RespondWithModal(s, i, CreateOfferModal(tradeID)); err != nil {
			log.Errorf("Failed to open offer modal: %v", err)
		}
	case ActionConfirm:
		f.confirm(s, i, &tradeID)
	case ActionCancel:
		f.cancel(s, i, &tradeID)
	default:
		common.RespondWithError(s, i, "Unknown trade interaction")
	}
}
