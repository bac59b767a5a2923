package adapter

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mateusmacedo/go-parking/pkg/application"
)

type requestIDKey struct{}

// WithRequestID anexa ao contexto o identificador que será incluído em cada linha de log.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

type zapAppLoggerAdapter struct {
	zapLogger *zap.Logger
}

// NewZapAppLogger cria o logger de produção em JSON. level aceita os nomes do zap
// ("debug", "info", ...); vazio mantém "info".
func NewZapAppLogger(appName, level string) (application.AppLogger, error) {
	config := zap.NewProductionConfig()
	config.InitialFields = map[string]interface{}{"app": appName}
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if level != "" {
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return nil, err
		}
		config.Level = lvl
	}

	zapLogger, err := config.Build()
	if err != nil {
		return nil, err
	}

	return NewAppLoggerFromZap(zapLogger), nil
}

// NewAppLoggerFromZap adapta um *zap.Logger já configurado.
func NewAppLoggerFromZap(zapLogger *zap.Logger) application.AppLogger {
	return &zapAppLoggerAdapter{zapLogger: zapLogger.WithOptions(zap.AddCallerSkip(1))}
}

// NewNopAppLogger descarta todas as mensagens; usado em testes.
func NewNopAppLogger() application.AppLogger {
	return NewAppLoggerFromZap(zap.NewNop())
}

func (l *zapAppLoggerAdapter) Info(ctx context.Context, msg string, fields map[string]interface{}) {
	l.zapLogger.Info(msg, convertFields(ctx, fields)...)
}

func (l *zapAppLoggerAdapter) Debug(ctx context.Context, msg string, fields map[string]interface{}) {
	l.zapLogger.Debug(msg, convertFields(ctx, fields)...)
}

func (l *zapAppLoggerAdapter) Error(ctx context.Context, msg string, fields map[string]interface{}) {
	l.zapLogger.Error(msg, convertFields(ctx, fields)...)
}

// zap não tem nível trace.
func (l *zapAppLoggerAdapter) Trace(ctx context.Context, msg string, fields map[string]interface{}) {
	l.zapLogger.Debug(msg, convertFields(ctx, fields)...)
}

func convertFields(ctx context.Context, fields map[string]interface{}) []zap.Field {
	zapFields := make([]zap.Field, 0, len(fields)+1)

	if ctx != nil {
		if requestID, ok := ctx.Value(requestIDKey{}).(string); ok {
			zapFields = append(zapFields, zap.String("requestID", requestID))
		}
	}

	for k, v := range fields {
		zapFields = append(zapFields, zap.Any(k, v))
	}
	return zapFields
}
