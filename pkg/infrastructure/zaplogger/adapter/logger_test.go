package adapter

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapAppLogger(t *testing.T) {
	t.Parallel()

	t.Run("request id from context is logged", func(t *testing.T) {
		t.Parallel()
		core, logs := observer.New(zapcore.DebugLevel)
		logger := NewAppLoggerFromZap(zap.New(core))

		logger.Info(WithRequestID(context.Background(), "req-42"), "ticket closed", map[string]interface{}{"ticket_id": "t-1"})

		entries := logs.All()
		if len(entries) != 1 {
			t.Fatalf("expected 1 entry, got %d", len(entries))
		}
		fields := entries[0].ContextMap()
		if fields["requestID"] != "req-42" || fields["ticket_id"] != "t-1" {
			t.Fatalf("unexpected fields %v", fields)
		}
	})

	t.Run("no request id without one in context", func(t *testing.T) {
		t.Parallel()
		core, logs := observer.New(zapcore.DebugLevel)
		logger := NewAppLoggerFromZap(zap.New(core))

		logger.Error(context.Background(), "failed", nil)

		if _, ok := logs.All()[0].ContextMap()["requestID"]; ok {
			t.Fatalf("expected no requestID field")
		}
	})

	t.Run("trace is written at debug level", func(t *testing.T) {
		t.Parallel()
		core, logs := observer.New(zapcore.DebugLevel)
		logger := NewAppLoggerFromZap(zap.New(core))

		logger.Trace(context.Background(), "tracing", nil)

		if entries := logs.FilterLevelExact(zapcore.DebugLevel).All(); len(entries) != 1 {
			t.Fatalf("expected 1 debug entry, got %d", len(entries))
		}
	})

	t.Run("invalid level is rejected", func(t *testing.T) {
		t.Parallel()
		if _, err := NewZapAppLogger("parking", "loud"); err == nil {
			t.Fatalf("expected error for unknown level")
		}
	})
}
