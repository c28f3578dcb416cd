package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cardswap/application"
	"cardswap/bot/common"
	"cardswap/bot/features/cards"
	"cardswap/bot/features/trades"
	"cardswap/infrastructure/observability"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Config holds bot configuration
type Config struct {
	Token               string
	GuildID             string
	TradeChannelID      string
	TradeExpiryInterval time.Duration
	Debug               bool
}

// Bot manages the Discord session and all feature modules
type Bot struct {
	// Core components
	config       Config
	session      *discordgo.Session
	orchestrator *application.TradeOrchestrator
	userResolver *UserResolver

	// Feature modules
	trades *trades.Feature
	cards  *cards.Feature

	// Worker cleanup functions
	stopExpiryWorker func()
}

// New creates a new bot instance with all features and attaches the Discord notifier to the orchestrator
func New(config Config, uowFactory application.UnitOfWorkFactory, orchestrator *application.TradeOrchestrator) (*Bot, error) {
	// Create Discord session
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsDirectMessages

	userResolver := NewUserResolver(dg)

	bot := &Bot{
		config:       config,
		session:      dg,
		orchestrator: orchestrator,
		userResolver: userResolver,
	}

	orchestrator.SetNotifier(trades.NewNotifier(dg, config.TradeChannelID, userResolver))

	// Create feature modules
	bot.trades = trades.NewFeature(orchestrator)
	bot.cards = cards.NewFeature(uowFactory)

	// Register handlers
	dg.AddHandler(bot.handleCommands)
	dg.AddHandler(bot.handleInteractions)

	// Open websocket connection
	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	// Register slash commands with Discord
	if err := bot.registerCommands(); err != nil {
		dg.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	// Start background workers
	bot.stopExpiryWorker = StartTradeExpirationWorker(context.Background(), orchestrator, config.TradeExpiryInterval)
	log.Info("Background workers started")

	return bot, nil
}

// Close gracefully shuts down the bot
func (b *Bot) Close() error {
	// Stop background workers
	if b.stopExpiryWorker != nil {
		b.stopExpiryWorker()
	}
	log.Info("Background workers stopped")

	return b.session.Close()
}

// GetSession returns the Discord session
func (b *Bot) GetSession() *discordgo.Session {
	return b.session
}

// handleCommands routes slash commands to appropriate handlers
func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	b.logInteraction(i)
	observability.GetMetrics().RecordInteraction(observability.InteractionTypeCommand)

	if !common.EnforceTradeChannel(s, i, b.config.TradeChannelID) {
		return
	}

	switch i.ApplicationCommandData().Name {
	case "start":
		b.cards.HandleStartCommand(s, i)
	case "expansion":
		b.cards.HandleExpansionCommand(s, i)
	case "missing":
		b.cards.HandleMissingCommand(s, i)
	case "trade":
		b.trades.HandleCommand(s, i)
	}
}

// handleInteractions routes component interactions to appropriate features
func (b *Bot) handleInteractions(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionMessageComponent:
		b.logInteraction(i)
		observability.GetMetrics().RecordInteraction(observability.InteractionTypeComponent)
		b.routeInteraction(s, i, i.MessageComponentData().CustomID)

	case discordgo.InteractionModalSubmit:
		b.logInteraction(i)
		observability.GetMetrics().RecordInteraction(observability.InteractionTypeModal)
		b.routeInteraction(s, i, i.ModalSubmitData().CustomID)
	}
}

// routeInteraction routes button and modal interactions by custom ID prefix
func (b *Bot) routeInteraction(s *discordgo.Session, i *discordgo.InteractionCreate, customID string) {
	switch {
	case strings.HasPrefix(customID, trades.CustomIDPrefix):
		b.trades.HandleInteraction(s, i)
	default:
		log.Warnf("Unhandled interaction custom ID: %s", customID)
	}
}

// logInteraction records every interaction when running in debug mode
func (b *Bot) logInteraction(i *discordgo.InteractionCreate) {
	if !b.config.Debug {
		return
	}
	log.WithFields(log.Fields{
		"user_id":     common.InteractionUserID(i),
		"channel_id":  i.ChannelID,
		"guild_id":    i.GuildID,
		"interaction": common.InteractionName(i),
	}).Info("Interaction received")
}
