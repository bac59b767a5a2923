package infrastructure

import (
	"context"
	"errors"
	"sync"

	"github.com/mateusmacedo/go-parking/pkg/application"
	"github.com/mateusmacedo/go-parking/pkg/domain"
)

var ErrNoQueryHandler = errors.New("no handler registered for query")

type simpleQueryBus[Q domain.Query[D], D any, R any] struct {
	handlers map[string]application.QueryHandler[Q, D, R]
	mu       sync.RWMutex
	logger   application.AppLogger
}

func NewSimpleQueryBus[Q domain.Query[D], D any, R any](logger application.AppLogger) application.QueryBus[Q, D, R] {
	return &simpleQueryBus[Q, D, R]{
		handlers: make(map[string]application.QueryHandler[Q, D, R]),
		logger:   logger,
	}
}

func (bus *simpleQueryBus[Q, D, R]) RegisterHandler(queryName string, handler application.QueryHandler[Q, D, R]) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.handlers[queryName] = handler
}

// Dispatch executa o handler em uma goroutine para respeitar o cancelamento do contexto
// mesmo quando o handler bloqueia.
func (bus *simpleQueryBus[Q, D, R]) Dispatch(ctx context.Context, query Q) (R, error) {
	bus.mu.RLock()
	handler, found := bus.handlers[query.QueryName()]
	bus.mu.RUnlock()

	var zero R
	if !found {
		application.LogError(ctx, bus.logger, "query dispatch failed", ErrNoQueryHandler, map[string]interface{}{
			"query_name": query.QueryName(),
		})
		return zero, ErrNoQueryHandler
	}

	type outcome struct {
		result R
		err    error
	}
	done := make(chan outcome, 1)

	go func() {
		result, err := handler.Handle(ctx, query)
		done <- outcome{result: result, err: err}
	}()

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case out := <-done:
		if out.err != nil {
			return zero, out.err
		}
		return out.result, nil
	}
}
