package jobs_test

import (
	"context"
	"errors"
	"marketplace/config"
	otelMocks "marketplace/infras/otel/mocks"
	"marketplace/internal/domains/payment/model/dto"
	"marketplace/internal/domains/payment/service/mocks"
	"marketplace/internal/jobs"
	"testing"
	"time"

	"go.uber.org/mock/gomock"
)

func TestScheduler_RunsImmediatelyAndStops(t *testing.T) {
	ctrl := gomock.NewController(t)

	cfg := &config.Config{}
	cfg.Reconcile.IntervalSeconds = 3600
	cfg.Reconcile.BatchSize = 25

	done := make(chan struct{})

	payments := mocks.NewMockPayment(ctrl)
	payments.EXPECT().Reconcile(gomock.Any(), 25).
		DoAndReturn(func(context.Context, int) (dto.ReconcileReport, error) {
			close(done)

			return dto.ReconcileReport{Polled: 2, Transitioned: 1}, nil
		})

	scheduler := jobs.NewScheduler(payments, cfg, otelMocks.NewOtel())
	scheduler.Start(context.Background())

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reconcile was not run on start")
	}

	scheduler.Stop()
	scheduler.Stop()
}

func TestScheduler_ErrorKeepsLoopAlive(t *testing.T) {
	ctrl := gomock.NewController(t)

	cfg := &config.Config{}
	cfg.Reconcile.IntervalSeconds = 3600

	done := make(chan struct{})

	payments := mocks.NewMockPayment(ctrl)
	payments.EXPECT().Reconcile(gomock.Any(), 0).
		DoAndReturn(func(context.Context, int) (dto.ReconcileReport, error) {
			close(done)

			return dto.ReconcileReport{}, errors.New("database unavailable")
		})

	ctx, cancel := context.WithCancel(context.Background())

	scheduler := jobs.NewScheduler(payments, cfg, otelMocks.NewOtel())
	scheduler.Start(ctx)

	<-done
	cancel()

	scheduler.Stop()
}

func TestScheduler_RunOnce(t *testing.T) {
	ctrl := gomock.NewController(t)

	cfg := &config.Config{}
	cfg.Reconcile.BatchSize = 5

	payments := mocks.NewMockPayment(ctrl)
	payments.EXPECT().Reconcile(gomock.Any(), 5).Return(dto.ReconcileReport{Recovered: 1}, nil)

	jobs.NewScheduler(payments, cfg, otelMocks.NewOtel()).RunOnce(context.Background())
}
