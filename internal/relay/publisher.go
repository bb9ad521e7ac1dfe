package relay

//go:generate go run go.uber.org/mock/mockgen -source=./publisher.go -destination=./mocks/publisher_mock.go -package=mocks

import (
	"context"
	"encoding/json"
	"marketplace/config"
	"marketplace/infras/kafka"
	"marketplace/infras/otel"
	"marketplace/shared"
	"marketplace/shared/cache"
	"marketplace/shared/constant"
	"marketplace/shared/timezone"
	"sync"

	"github.com/rs/zerolog/log"
)

// Publisher announces a committed change. It never fails the caller.
type Publisher interface {
	Publish(ctx context.Context, table, id, op string, row any)
	// Wait blocks until every in-flight hint has been handled.
	Wait()
}

type publisherImpl struct {
	kafka kafka.Client
	cache cache.RedisCache
	cfg   *config.Config
	otel  otel.Otel
	wg    sync.WaitGroup
}

func NewPublisher(client kafka.Client, redisCache cache.RedisCache, cfg *config.Config, otel otel.Otel) Publisher {
	return &publisherImpl{
		kafka: client,
		cache: redisCache,
		cfg:   cfg,
		otel:  otel,
	}
}

func (p *publisherImpl) Publish(ctx context.Context, table, id, op string, row any) {
	event := ChangeEvent{
		Table:      table,
		ID:         id,
		Op:         op,
		OccurredAt: timezone.Now(),
	}

	if row != nil {
		raw, err := json.Marshal(row)
		if err != nil {
			log.Warn().Err(err).Str("table", table).Str("id", id).Msg("failed to encode change row, sending bare hint")
		} else {
			event.Row = raw
		}
	}

	p.wg.Add(1)

	go func() {
		defer p.wg.Done()

		p.publish(context.WithoutCancel(ctx), event)
	}()
}

func (p *publisherImpl) publish(ctx context.Context, event ChangeEvent) {
	ctx, scope := p.otel.NewScope(ctx, constant.OtelEventScopeName, constant.OtelEventScopeName+".relay.Publish")
	defer scope.End()

	scope.SetAttributes(map[string]any{"table": event.Table, "id": event.ID, "op": event.Op})

	if prefix, id, ok := cacheTarget(event); ok {
		shared.InvalidateCaches(ctx, p.cache, prefix, id)
	}

	if !p.cfg.Relay.Enable {
		return
	}

	err := p.kafka.SendMessages(ctx, Topic(p.cfg), kafka.Message{Key: event.ID, Value: event})
	if err != nil {
		scope.TraceError(err)
		log.Warn().Err(err).Str("table", event.Table).Str("id", event.ID).Msg("failed to publish change hint")
	}
}

func (p *publisherImpl) Wait() {
	p.wg.Wait()
}
