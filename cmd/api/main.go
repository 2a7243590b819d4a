package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/crebito-ledger/internal/api"
	"github.com/crebito-ledger/internal/api/service"
	"github.com/crebito-ledger/internal/config"
	"github.com/crebito-ledger/internal/data/mongo"
	"github.com/crebito-ledger/internal/data/postgres"
	"github.com/crebito-ledger/internal/feed"
	"github.com/crebito-ledger/internal/logger"
	"github.com/crebito-ledger/internal/platform/messaging/producers"
	"github.com/crebito-ledger/internal/platform/metrics"
	"github.com/crebito-ledger/internal/platform/persistence"
)

func main() {
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	cfg, err := config.LoadConfig("api")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)

	log.Info("Starting ledger API",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
	)

	metrics.Init()

	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	feedProducer, err := producers.NewMovementFeedProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize movement feed producer", "error", err)
		os.Exit(1)
	}

	// Repositories
	ledgerRepo := postgres.NewLedgerRepository(log, postgresDB)
	archiveRepo := mongo.NewArchiveRepository(log, mongoDB.Database())

	// Services
	ledgerService := service.NewLedgerService(log, &cfg.Ledger, ledgerRepo)
	statementService := service.NewStatementService(log, &cfg.Ledger, ledgerRepo)
	archiveService := service.NewArchiveService(log, &cfg.Ledger, archiveRepo)

	server := api.NewServer(log, cfg, ledgerService, statementService, archiveService)

	feedPoller := feed.NewPoller(log, &cfg.Feed, ledgerRepo, feedProducer)

	errChan := make(chan error, 1)
	var wg sync.WaitGroup

	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		feedPoller.Run(appCtx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	cancelAppCtx()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	log.Info("Starting graceful shutdown...")

	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	// Let the poller finish its in-flight batch before closing the producer.
	wg.Wait()

	if err = feedProducer.Close(); err != nil {
		log.Error("Error closing movement feed producer", "error", err)
	}

	postgresDB.Close()

	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	}
	log.Info("Server shutdown completed")
}
