package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
)

func TestLogContext_AccumulatesFields(t *testing.T) {
	lc := NewLogContext()
	ctx := WithLogContext(context.Background(), lc)

	SetOperation(ctx, "dispatch_action")
	AddToContext(ctx, zap.Bool(FieldChanged, true), zap.Int64(FieldEnvVersion, 3))

	fields := GetLogContext(ctx).Fields()
	if len(fields) != 3 {
		t.Fatalf("expected 3 fields, got %d", len(fields))
	}
	if fields[0].Key != FieldOperation {
		t.Fatalf("expected first field %q, got %q", FieldOperation, fields[0].Key)
	}
}

func TestLogContext_NilSafe(t *testing.T) {
	var lc *LogContext
	lc.AddField(zap.String("k", "v"))
	if lc.Fields() != nil {
		t.Fatalf("expected nil fields from nil context")
	}

	// no log context attached: must not panic
	AddToContext(context.Background(), zap.String("k", "v"))
	var nilCtx context.Context
	if GetLogContext(nilCtx) != nil {
		t.Fatalf("expected nil log context for nil ctx")
	}
}

func TestCorrelationID(t *testing.T) {
	ctx := WithCorrelationID(context.Background(), "abc")
	if got := GetCorrelationID(ctx); got != "abc" {
		t.Fatalf("expected abc, got %s", got)
	}
	if got := GetCorrelationID(context.Background()); got != "" {
		t.Fatalf("expected empty correlation id, got %s", got)
	}
}
