package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"simpletodos/pkg/trace"
)

func TestNewLogger_Level(t *testing.T) {
	l := NewLogger("warn")
	if l.Core().Enabled(zapcore.InfoLevel) {
		t.Fatalf("info must be disabled at warn level")
	}
	if !NewLogger("bogus").Core().Enabled(zapcore.InfoLevel) {
		t.Fatalf("unknown level should fall back to info")
	}
}

func TestWithTrace(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	WithTrace(trace.WithContext(context.Background(), "t-1"), base).Info("with")
	WithTrace(context.Background(), base).Info("without")

	entries := logs.All()
	if got := entries[0].ContextMap()["trace_id"]; got != "t-1" {
		t.Fatalf("expected trace_id t-1, got %v", got)
	}
	if _, ok := entries[1].ContextMap()["trace_id"]; ok {
		t.Fatalf("expected no trace_id field")
	}
}
