package main

import (
	"context"
	"marketplace/config"
	"marketplace/di"
	"marketplace/helper"
	"marketplace/shared/logger"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/rs/zerolog/log"
)

// @title Marketplace API
// @version 1.0
// @description Bookings, escrow payments and auctions for the service marketplace.
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Get()

	logger.InitLogger()

	logger.SetLogLevel(cfg)

	if cfg.DB.Postgres.AutoMigrate {
		if err := helper.Up(cfg); err != nil {
			log.Fatal().Err(err).Msg("Failed to run migrations")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := di.InitializeApp()

	var workers sync.WaitGroup

	workers.Add(1)

	go func() {
		defer workers.Done()

		app.Consumer.Run(ctx)
	}()

	app.Scheduler.Start(ctx)

	app.HTTP.Serve(ctx)

	app.Scheduler.Stop()
	app.Hub.Close()
	workers.Wait()
	app.Publisher.Wait()

	if err := app.Kafka.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close Kafka client")
	}

	if err := app.Otel.Shutdown(context.Background()); err != nil {
		log.Error().Err(err).Msg("Failed to shut down tracer")
	}

	log.Info().Msg("Shutdown complete.")
}
