package main

import (
	"context"
	"marketplace/config"
	"marketplace/di"
	"marketplace/shared/logger"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
)

func main() {
	cfg := config.Get()

	batch := pflag.IntP("batch", "b", cfg.Reconcile.BatchSize, "maximum pending payments polled per pass")
	once := pflag.Bool("once", false, "run a single pass and exit")
	interval := pflag.Duration("interval", time.Duration(cfg.Reconcile.IntervalSeconds)*time.Second, "pause between passes")
	pflag.Parse()

	cfg.Reconcile.BatchSize = *batch
	cfg.Reconcile.IntervalSeconds = int(interval.Seconds())

	logger.InitLogger()

	logger.SetLogLevel(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reconciler := di.InitializeReconciler()

	defer func() {
		reconciler.Publisher.Wait()

		if err := reconciler.Kafka.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close Kafka client")
		}

		if err := reconciler.Otel.Shutdown(context.Background()); err != nil {
			log.Error().Err(err).Msg("Failed to shut down tracer")
		}
	}()

	if *once {
		reconciler.Scheduler.RunOnce(ctx)

		return
	}

	reconciler.Scheduler.Start(ctx)

	<-ctx.Done()

	reconciler.Scheduler.Stop()
}
