// Package jobs runs the periodic background work of the API process.
package jobs

import (
	"context"
	"marketplace/config"
	"marketplace/infras/otel"
	"marketplace/internal/domains/payment/service"
	"marketplace/shared/constant"
	"marketplace/shared/logger"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const defaultInterval = time.Minute

// Scheduler drives payment reconciliation on a fixed interval.
type Scheduler struct {
	payments service.Payment
	otel     otel.Otel
	log      zerolog.Logger
	interval time.Duration
	batch    int
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewScheduler(payments service.Payment, cfg *config.Config, otel otel.Otel) *Scheduler {
	interval := time.Duration(cfg.Reconcile.IntervalSeconds) * time.Second
	if interval <= 0 {
		interval = defaultInterval
	}

	return &Scheduler{
		payments: payments,
		otel:     otel,
		log:      logger.Component("reconcile"),
		interval: interval,
		batch:    cfg.Reconcile.BatchSize,
		stopChan: make(chan struct{}),
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	s.log.Info().Dur("interval", s.interval).Int("batch", s.batch).Msg("starting reconcile scheduler")

	s.wg.Add(1)

	go s.run(ctx)
}

// RunOnce performs a single reconcile pass on the caller's goroutine.
func (s *Scheduler) RunOnce(ctx context.Context) {
	s.reconcile(ctx)
}

// Stop signals the loop and waits for a running pass to finish.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.log.Info().Msg("stopping reconcile scheduler")
		close(s.stopChan)
	})

	s.wg.Wait()
}

func (s *Scheduler) run(ctx context.Context) {
	defer s.wg.Done()

	s.reconcile(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.reconcile(ctx)
		case <-s.stopChan:
			s.log.Info().Msg("reconcile scheduler stopped")

			return
		case <-ctx.Done():
			s.log.Info().Msg("reconcile scheduler cancelled")

			return
		}
	}
}

func (s *Scheduler) reconcile(ctx context.Context) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelJobScopeName, constant.OtelJobScopeName+".reconcile")
	defer scope.End()

	report, err := s.payments.Reconcile(ctx, s.batch)
	if err != nil {
		scope.TraceError(err)
		s.log.Error().Err(err).Msg("payment reconciliation failed")

		return
	}

	scope.SetAttributes(map[string]any{
		"reconcile.recovered":    report.Recovered,
		"reconcile.polled":       report.Polled,
		"reconcile.transitioned": report.Transitioned,
		"reconcile.errors":       report.Errors,
	})

	s.log.Info().
		Int("recovered", report.Recovered).
		Int("polled", report.Polled).
		Int("transitioned", report.Transitioned).
		Int("errors", report.Errors).
		Msg("payment reconciliation completed")
}
