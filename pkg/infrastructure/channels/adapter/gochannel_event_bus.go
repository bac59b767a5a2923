package adapter

import (
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/mateusmacedo/go-parking/pkg/application"
	"github.com/mateusmacedo/go-parking/pkg/domain"
	watermillAdapter "github.com/mateusmacedo/go-parking/pkg/infrastructure/watermill/adapter"
)

// NewGoChannelEventBus cria um barramento de eventos em memória sobre o pub/sub gochannel
// do watermill. Mensagens não sobrevivem ao processo.
func NewGoChannelEventBus[E domain.Event[D], D any](logger application.AppLogger) *watermillAdapter.WatermillEventBus[E, D] {
	pubSub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 64,
	}, watermillAdapter.NewWatermillLoggerAdapter(logger))

	return watermillAdapter.NewWatermillEventBus[E, D](pubSub, pubSub, logger)
}
