package cmd

import (
	"context"
	"fmt"
	"time"

	"cardswap/application"
	"cardswap/bot"
	"cardswap/config"
	"cardswap/database"
	"cardswap/domain/interfaces"
	"cardswap/infrastructure"
	"cardswap/infrastructure/observability"

	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	// Load configuration
	cfg := config.Get()
	ConfigureLogging(cfg)
	log.Info("Starting cardswap bot...")

	// Initialize database connection
	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Info("Database connection established successfully")

	if cfg.AutoMigrate {
		log.Info("Running database migrations...")
		if err := database.RunMigrationsWithURL(cfg.GetDatabaseURL()); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	// Initialize event publishing
	eventPublisher, natsClient, err := setupEventPublisher(ctx, cfg)
	if err != nil {
		return err
	}
	if natsClient != nil {
		defer func() {
			if err := natsClient.Close(); err != nil {
				log.WithError(err).Warn("Error closing NATS connection")
			}
		}()
	}

	// Initialize metrics
	if err := observability.InitializeGlobalMetrics(ctx, cfg); err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}

	// Initialize unit of work factory
	uowFactory := infrastructure.NewUnitOfWorkFactory(db, eventPublisher)
	for eventType, handler := range observability.TradeEventHandlers(observability.GetMetrics()) {
		uowFactory.RegisterLocalHandler(eventType, handler)
	}
	log.Info("Unit of work factory initialized successfully")

	orchestrator := application.NewTradeOrchestrator(uowFactory, nil, cfg.TradeTTL, cfg.TradeHistoryLimit)

	// Initialize Discord bot
	log.Info("Initializing Discord bot...")
	botConfig := bot.Config{
		Token:               cfg.DiscordToken,
		GuildID:             cfg.GuildID,
		TradeChannelID:      cfg.TradeChannelID,
		TradeExpiryInterval: cfg.TradeExpiryInterval,
		Debug:               cfg.IsDebug(),
	}
	discordBot, err := bot.New(botConfig, uowFactory, orchestrator)
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}
	log.Info("Discord bot initialized successfully")

	// Wait for context cancellation
	log.Infof("Bot is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	// Cleanup resources
	log.Info("Shutting down bot...")

	if err := discordBot.Close(); err != nil {
		log.Errorf("Error closing Discord bot: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := observability.ShutdownGlobalMetrics(shutdownCtx); err != nil {
		log.Errorf("Error shutting down metrics: %v", err)
	}

	log.Info("Shutdown completed")
	return nil
}

// setupEventPublisher connects to NATS when enabled, otherwise events only reach local handlers
func setupEventPublisher(ctx context.Context, cfg *config.Config) (interfaces.EventPublisher, *infrastructure.NATSClient, error) {
	if !cfg.NATSEnabled {
		log.Info("NATS disabled, events are handled in-process only")
		return infrastructure.NewNoopEventPublisher(), nil, nil
	}

	log.Infof("Connecting to NATS at %s...", cfg.NATSServers)
	natsClient := infrastructure.NewNATSClient(cfg.NATSServers)

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := natsClient.Connect(connectCtx); err != nil {
		return nil, nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	publisher := infrastructure.NewNATSEventPublisher(natsClient, infrastructure.NewEventSubjectMapper())
	if err := publisher.EnsureEventStream(natsClient); err != nil {
		natsClient.Close()
		return nil, nil, fmt.Errorf("failed to ensure event stream: %w", err)
	}

	log.Info("NATS event publisher initialized successfully")
	return publisher, natsClient, nil
}
