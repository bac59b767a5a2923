package adapter

import (
	"context"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/mateusmacedo/go-parking/pkg/application"
	"github.com/mateusmacedo/go-parking/pkg/domain"
)

const eventNameMetadataKey = "event_name"

// WatermillEventBus publica eventos como mensagens JSON em um tópico com o nome do evento
// e os entrega aos handlers a partir de uma assinatura do mesmo tópico. Cada tópico é
// consumido por uma única goroutine, preservando a ordem de entrega.
type WatermillEventBus[E domain.Event[D], D any] struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	logger     application.AppLogger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu         sync.RWMutex
	handlers   map[string][]application.EventHandler[E, D]
	subscribed map[string]struct{}
}

func NewWatermillEventBus[E domain.Event[D], D any](publisher message.Publisher, subscriber message.Subscriber, logger application.AppLogger) *WatermillEventBus[E, D] {
	ctx, cancel := context.WithCancel(context.Background())
	return &WatermillEventBus[E, D]{
		publisher:  publisher,
		subscriber: subscriber,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
		handlers:   make(map[string][]application.EventHandler[E, D]),
		subscribed: make(map[string]struct{}),
	}
}

func (bus *WatermillEventBus[E, D]) RegisterHandler(eventName string, handler application.EventHandler[E, D]) {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	bus.handlers[eventName] = append(bus.handlers[eventName], handler)
	if _, ok := bus.subscribed[eventName]; ok {
		return
	}

	messages, err := bus.subscriber.Subscribe(bus.ctx, eventName)
	if err != nil {
		application.LogError(bus.ctx, bus.logger, "error subscribing to event", err, map[string]interface{}{
			"event_name": eventName,
		})
		return
	}
	bus.subscribed[eventName] = struct{}{}

	bus.wg.Add(1)
	go func() {
		defer bus.wg.Done()
		for msg := range messages {
			bus.deliver(eventName, msg)
		}
	}()
}

func (bus *WatermillEventBus[E, D]) Publish(ctx context.Context, event E) error {
	eventName := event.EventName()

	payload, err := application.MarshalPayload(event.Payload())
	if err != nil {
		application.LogError(ctx, bus.logger, "error marshalling event payload", err, map[string]interface{}{
			"event_name": eventName,
		})
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set(eventNameMetadataKey, eventName)
	msg.SetContext(ctx)

	if err := bus.publisher.Publish(eventName, msg); err != nil {
		application.LogError(ctx, bus.logger, "error publishing event", err, map[string]interface{}{
			"event_name": eventName,
		})
		return err
	}

	application.LogInfo(ctx, bus.logger, "event published", map[string]interface{}{
		"event_name": eventName,
		"message_id": msg.UUID,
	})
	return nil
}

// Close encerra as assinaturas, aguarda os consumidores e fecha o publisher.
func (bus *WatermillEventBus[E, D]) Close() error {
	bus.cancel()
	subErr := bus.subscriber.Close()
	bus.wg.Wait()
	if err := bus.publisher.Close(); err != nil {
		return err
	}
	return subErr
}

// deliver confirma mensagens que nunca poderão ser processadas (payload inválido) e
// devolve (Nack) as que falharam em algum handler, para nova tentativa.
func (bus *WatermillEventBus[E, D]) deliver(eventName string, msg *message.Message) {
	ctx := msg.Context()
	fields := map[string]interface{}{
		"event_name": eventName,
		"message_id": msg.UUID,
	}

	payload, err := application.UnmarshalPayload[D](msg.Payload)
	if err != nil {
		application.LogError(ctx, bus.logger, "error unmarshalling event payload", err, fields)
		msg.Ack()
		return
	}

	event, ok := interface{}(&dynamicEvent[D]{eventName: eventName, payload: payload}).(E)
	if !ok {
		application.LogError(ctx, bus.logger, "error casting event", nil, fields)
		msg.Ack()
		return
	}

	bus.mu.RLock()
	handlers := append([]application.EventHandler[E, D](nil), bus.handlers[eventName]...)
	bus.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler.Handle(ctx, event); err != nil {
			application.LogError(ctx, bus.logger, "error handling event", err, fields)
			msg.Nack()
			return
		}
	}

	application.LogDebug(ctx, bus.logger, "event handled", fields)
	msg.Ack()
}

type dynamicEvent[D any] struct {
	eventName string
	payload   D
}

func (e *dynamicEvent[D]) EventName() string {
	return e.eventName
}

func (e *dynamicEvent[D]) Payload() D {
	return e.payload
}
