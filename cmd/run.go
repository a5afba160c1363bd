package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"scrimbot/application"
	"scrimbot/config"
	"scrimbot/database"
	"scrimbot/domain/entities"
	"scrimbot/infrastructure"
	"scrimbot/repository"

	"github.com/bwmarrin/discordgo"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Println("Starting scrimbot...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Println("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Database connection established successfully")

	// Initialize unit of work factory
	uowFactory := repository.NewUnitOfWorkFactory(db)

	// Initialize Discord session
	log.Println("Connecting to Discord...")
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return fmt.Errorf("failed to create Discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages
	if err := session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}
	log.Println("Discord connection established successfully")

	validator := infrastructure.NewDiscordResourceValidator(session)
	provisioner := infrastructure.NewDiscordGuildProvisioner(session, cfg)
	notifier := infrastructure.NewDiscordNotifier(session)

	// Wire the timer sweeper and its event handlers
	sweeper := application.NewTimerSweeper(uowFactory)
	sweeper.Register(entities.TimerEventScrimOpen, application.NewScrimOpenHandler(notifier).HandleOpen)
	sweeper.Register(entities.TimerEventAutoclean, application.NewAutocleanHandler(notifier).HandleAutoclean)

	// Fire timers that came due while the process was down before accepting
	// any new control requests
	log.Println("Recovering pending timers...")
	if err := sweeper.RecoverPending(ctx); err != nil {
		return fmt.Errorf("failed to recover pending timers: %w", err)
	}
	stopSweeper := sweeper.Start(ctx)

	lifecycle := application.NewScrimLifecycle(uowFactory, validator, provisioner, sweeper)

	// Initialize NATS and the control-channel gateway
	log.Println("Connecting to NATS...")
	natsClient := infrastructure.NewNATSClient(cfg.NATSServers)
	if err := natsClient.Connect(); err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}
	gateway := infrastructure.NewRequestGateway(natsClient, lifecycle)
	if err := gateway.Start(); err != nil {
		return fmt.Errorf("failed to start request gateway: %w", err)
	}

	// Wait for context cancellation
	log.Printf("Scrimbot is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	// Cleanup resources
	log.Println("Shutting down...")

	if err := natsClient.Close(); err != nil {
		log.Printf("Error closing NATS connection: %v", err)
	}

	stopSweeper()

	if err := session.Close(); err != nil {
		log.Printf("Error closing Discord session: %v", err)
	}

	// Give cleanup operations time to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Close database connection
	log.Println("Closing database connection...")
	db.Close()

	select {
	case <-shutdownCtx.Done():
		log.Println("Shutdown timeout exceeded")
	case <-time.After(1 * time.Second):
		log.Println("Shutdown completed")
	}

	return nil
}
