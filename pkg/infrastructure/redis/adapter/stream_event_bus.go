package adapter

import (
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/redis/go-redis/v9"

	"github.com/mateusmacedo/go-parking/pkg/application"
	"github.com/mateusmacedo/go-parking/pkg/domain"
	watermillAdapter "github.com/mateusmacedo/go-parking/pkg/infrastructure/watermill/adapter"
)

type StreamConfig struct {
	ConsumerGroup string
	Consumer      string
}

// NewRedisStreamEventBus publica e consome eventos em Redis Streams, um stream por evento.
func NewRedisStreamEventBus[E domain.Event[D], D any](client redis.UniversalClient, cfg StreamConfig, logger application.AppLogger) (*watermillAdapter.WatermillEventBus[E, D], error) {
	wmLogger := watermillAdapter.NewWatermillLoggerAdapter(logger)

	publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
		Client: client,
	}, wmLogger)
	if err != nil {
		return nil, err
	}

	subscriber, err := redisstream.NewSubscriber(redisstream.SubscriberConfig{
		Client:        client,
		ConsumerGroup: cfg.ConsumerGroup,
		Consumer:      cfg.Consumer,
	}, wmLogger)
	if err != nil {
		_ = publisher.Close()
		return nil, err
	}

	return watermillAdapter.NewWatermillEventBus[E, D](publisher, subscriber, logger), nil
}
