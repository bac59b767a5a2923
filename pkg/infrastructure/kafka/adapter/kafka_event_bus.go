package adapter

import (
	"github.com/Shopify/sarama"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"

	"github.com/mateusmacedo/go-parking/pkg/application"
	"github.com/mateusmacedo/go-parking/pkg/domain"
	watermillAdapter "github.com/mateusmacedo/go-parking/pkg/infrastructure/watermill/adapter"
)

type Config struct {
	Brokers       []string
	ConsumerGroup string
	ClientID      string
}

func newSaramaSubscriberConfig(clientID string) *sarama.Config {
	saramaConfig := kafka.DefaultSaramaSubscriberConfig()
	saramaConfig.Version = sarama.V1_0_0_0
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	saramaConfig.Consumer.Return.Errors = true
	if clientID != "" {
		saramaConfig.ClientID = clientID
	}
	return saramaConfig
}

// NewKafkaEventBus publica cada evento no tópico de mesmo nome. Os tópicos são criados
// com uma partição na primeira assinatura.
func NewKafkaEventBus[E domain.Event[D], D any](cfg Config, logger application.AppLogger) (*watermillAdapter.WatermillEventBus[E, D], error) {
	wmLogger := watermillAdapter.NewWatermillLoggerAdapter(logger)
	marshaler := kafka.DefaultMarshaler{}

	publisher, err := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers:   cfg.Brokers,
		Marshaler: marshaler,
	}, wmLogger)
	if err != nil {
		return nil, err
	}

	subscriber, err := kafka.NewSubscriber(kafka.SubscriberConfig{
		Brokers:               cfg.Brokers,
		Unmarshaler:           marshaler,
		ConsumerGroup:         cfg.ConsumerGroup,
		OverwriteSaramaConfig: newSaramaSubscriberConfig(cfg.ClientID),
		InitializeTopicDetails: &sarama.TopicDetail{
			NumPartitions:     1,
			ReplicationFactor: 1,
		},
	}, wmLogger)
	if err != nil {
		_ = publisher.Close()
		return nil, err
	}

	return watermillAdapter.NewWatermillEventBus[E, D](publisher, subscriber, logger), nil
}
