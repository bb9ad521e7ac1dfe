package relay

import (
	"context"
	"fmt"
	"marketplace/config"
	"marketplace/infras/kafka"
	"marketplace/infras/otel"
	"marketplace/shared"
	"marketplace/shared/cache"
	"marketplace/shared/constant"

	"github.com/rs/zerolog/log"
	kafkaGo "github.com/segmentio/kafka-go"
)

// Consumer applies hints from other instances: cache invalidation and local fan-out.
// It never writes authoritative state.
type Consumer struct {
	kafka kafka.Client
	cache cache.RedisCache
	hub   *Hub
	cfg   *config.Config
	otel  otel.Otel
}

func NewConsumer(client kafka.Client, redisCache cache.RedisCache, hub *Hub, cfg *config.Config, otel otel.Otel) *Consumer {
	return &Consumer{
		kafka: client,
		cache: redisCache,
		hub:   hub,
		cfg:   cfg,
		otel:  otel,
	}
}

// Run blocks until ctx is done.
func (c *Consumer) Run(ctx context.Context) {
	if !c.cfg.Relay.Enable {
		log.Info().Msg("change relay disabled, consumer not started")

		return
	}

	log.Info().Str("topic", Topic(c.cfg)).Msg("change relay consumer started")

	c.kafka.Consume(ctx, c.cfg.Kafka.ConsumerGroup, Topic(c.cfg), c.Handle)
}

func (c *Consumer) Handle(ctx context.Context, message kafkaGo.Message) (err error) {
	ctx, scope := c.otel.NewScope(ctx, constant.OtelEventScopeName, constant.OtelEventScopeName+".relay.Handle")
	defer scope.End()
	defer scope.TraceIfError(err)

	event, err := kafka.Decode[ChangeEvent](message)
	if err != nil {
		return fmt.Errorf("failed to decode change hint: %w", err)
	}

	scope.SetAttributes(map[string]any{"table": event.Table, "id": event.ID, "op": event.Op})

	if prefix, id, ok := cacheTarget(event); ok {
		shared.InvalidateCaches(ctx, c.cache, prefix, id)
	}

	delivered := c.hub.Broadcast(event)

	log.Debug().Str("table", event.Table).Str("id", event.ID).Int("subscribers", delivered).Msg("change hint relayed")

	return nil
}
