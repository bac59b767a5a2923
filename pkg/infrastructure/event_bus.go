package infrastructure

import (
	"context"
	"errors"
	"sync"

	"github.com/mateusmacedo/go-parking/pkg/application"
	"github.com/mateusmacedo/go-parking/pkg/domain"
)

// simpleEventBus entrega eventos em memória, executando cada handler em sua própria goroutine.
type simpleEventBus[E domain.Event[T], T any] struct {
	handlers map[string][]application.EventHandler[E, T]
	mu       sync.RWMutex
	logger   application.AppLogger
}

func NewSimpleEventBus[E domain.Event[T], T any](logger application.AppLogger) application.EventBus[E, T] {
	return &simpleEventBus[E, T]{
		handlers: make(map[string][]application.EventHandler[E, T]),
		logger:   logger,
	}
}

func (bus *simpleEventBus[E, T]) RegisterHandler(eventName string, handler application.EventHandler[E, T]) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.handlers[eventName] = append(bus.handlers[eventName], handler)
}

// Publish aguarda todos os handlers e retorna os erros agregados.
// Sem handlers registrados a publicação é considerada bem-sucedida.
func (bus *simpleEventBus[E, T]) Publish(ctx context.Context, event E) error {
	bus.mu.RLock()
	handlers := append([]application.EventHandler[E, T](nil), bus.handlers[event.EventName()]...)
	bus.mu.RUnlock()

	if len(handlers) == 0 {
		application.LogInfo(ctx, bus.logger, "no handler registered for event", map[string]interface{}{
			"event_name": event.EventName(),
		})
		return nil
	}

	var wg sync.WaitGroup
	errChan := make(chan error, len(handlers))
	done := make(chan struct{})

	for _, handler := range handlers {
		wg.Add(1)
		go func(h application.EventHandler[E, T]) {
			defer wg.Done()
			if err := h.Handle(ctx, event); err != nil {
				errChan <- err
			}
		}(handler)
	}

	go func() {
		wg.Wait()
		close(errChan)
		close(done)
	}()

	select {
	case <-ctx.Done():
		application.LogError(ctx, bus.logger, "error publishing event", ctx.Err(), map[string]interface{}{
			"event_name": event.EventName(),
		})
		return ctx.Err()
	case <-done:
		return bus.collectErrors(ctx, event.EventName(), errChan)
	}
}

func (bus *simpleEventBus[E, T]) collectErrors(ctx context.Context, eventName string, errChan <-chan error) error {
	var errs []error
	for err := range errChan {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		application.LogError(ctx, bus.logger, "error publishing event", err, map[string]interface{}{
			"event_name": eventName,
		})
		return err
	}

	application.LogInfo(ctx, bus.logger, "event published", map[string]interface{}{
		"event_name": eventName,
	})
	return nil
}
