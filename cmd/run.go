package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"drawhouse/application"
	"drawhouse/config"
	"drawhouse/database"
	"drawhouse/repository"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Println("Starting drawhouse...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Println("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Database connection established successfully")

	// Initialize unit of work factory and application facade
	uowFactory := repository.NewUnitOfWorkFactory(db)
	app := application.NewApp(uowFactory)

	// Seed settings so the first slot creation never races defaults
	if _, err := app.GetSettings(ctx); err != nil {
		return fmt.Errorf("failed to initialize settings: %w", err)
	}

	// Start the slot lifecycle worker
	worker := application.NewSlotWorker(uowFactory, cfg.SchedulerInterval)
	stopWorker := worker.Start(ctx)

	// Wait for context cancellation
	log.Printf("Drawhouse is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	// Cleanup resources
	log.Println("Shutting down...")
	stopWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

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
