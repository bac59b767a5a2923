package adapter

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/mateusmacedo/go-parking/pkg/application"
)

// watermillLoggerAdapter redireciona os logs internos do watermill para o AppLogger.
type watermillLoggerAdapter struct {
	appLogger application.AppLogger
	fields    watermill.LogFields
}

func NewWatermillLoggerAdapter(appLogger application.AppLogger) watermill.LoggerAdapter {
	return &watermillLoggerAdapter{
		appLogger: appLogger,
		fields:    watermill.LogFields{},
	}
}

func (a *watermillLoggerAdapter) Error(msg string, err error, fields watermill.LogFields) {
	application.LogError(context.Background(), a.appLogger, msg, err, a.merge(fields))
}

func (a *watermillLoggerAdapter) Info(msg string, fields watermill.LogFields) {
	application.LogInfo(context.Background(), a.appLogger, msg, a.merge(fields))
}

func (a *watermillLoggerAdapter) Debug(msg string, fields watermill.LogFields) {
	application.LogDebug(context.Background(), a.appLogger, msg, a.merge(fields))
}

func (a *watermillLoggerAdapter) Trace(msg string, fields watermill.LogFields) {
	application.LogTrace(context.Background(), a.appLogger, msg, a.merge(fields))
}

func (a *watermillLoggerAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &watermillLoggerAdapter{
		appLogger: a.appLogger,
		fields:    a.fields.Add(fields),
	}
}

func (a *watermillLoggerAdapter) merge(fields watermill.LogFields) map[string]interface{} {
	return a.fields.Add(fields)
}
