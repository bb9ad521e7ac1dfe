package relay_test

import (
	"context"
	"marketplace/config"
	kafkaMocks "marketplace/infras/kafka/mocks"
	otelMocks "marketplace/infras/otel/mocks"
	"marketplace/internal/relay"
	cacheMocks "marketplace/shared/cache/mocks"
	"testing"

	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestConsumer_Handle(t *testing.T) {
	ctrl := gomock.NewController(t)

	redisCache := cacheMocks.NewMockRedisCache(ctrl)
	redisCache.EXPECT().Delete(gomock.Any(), "auction:a-1").Return(nil)
	redisCache.EXPECT().Clear(gomock.Any(), "auction:list:*").Return(nil)

	cfg := &config.Config{}
	hub := relay.NewHub(cfg)

	ch, cancel := hub.Subscribe(relay.Filter{Table: "auctions", ID: "a-1"})
	defer cancel()

	consumer := relay.NewConsumer(kafkaMocks.NewMockClient(ctrl), redisCache, hub, cfg, otelMocks.NewOtel())

	err := consumer.Handle(context.Background(), kafkaGo.Message{
		Value: []byte(`{"table":"auctions","id":"a-1","op":"UPDATE","occurred_at":"2026-01-02T10:00:00Z"}`),
	})

	require.NoError(t, err)

	event := <-ch
	assert.Equal(t, relay.OpUpdate, event.Op)
}

func TestConsumer_HandleMalformed(t *testing.T) {
	ctrl := gomock.NewController(t)

	consumer := relay.NewConsumer(kafkaMocks.NewMockClient(ctrl), cacheMocks.NewMockRedisCache(ctrl), relay.NewHub(&config.Config{}), &config.Config{}, otelMocks.NewOtel())

	err := consumer.Handle(context.Background(), kafkaGo.Message{Value: []byte(`{"table":`)})

	assert.Error(t, err)
}

func TestConsumer_RunDisabled(t *testing.T) {
	ctrl := gomock.NewController(t)

	// Consume must not be called.
	client := kafkaMocks.NewMockClient(ctrl)

	consumer := relay.NewConsumer(client, cacheMocks.NewMockRedisCache(ctrl), relay.NewHub(&config.Config{}), &config.Config{}, otelMocks.NewOtel())

	consumer.Run(context.Background())
}

func TestConsumer_RunEnabled(t *testing.T) {
	ctrl := gomock.NewController(t)

	cfg := &config.Config{}
	cfg.Relay.Enable = true
	cfg.Kafka.ConsumerGroup = "marketplace-api"

	client := kafkaMocks.NewMockClient(ctrl)
	client.EXPECT().Consume(gomock.Any(), "marketplace-api", "changes", gomock.Any())

	consumer := relay.NewConsumer(client, cacheMocks.NewMockRedisCache(ctrl), relay.NewHub(cfg), cfg, otelMocks.NewOtel())

	consumer.Run(context.Background())
}
