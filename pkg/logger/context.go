package logger

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

type contextKey string

const (
	logContextKey  contextKey = "log_context"
	correlationKey contextKey = "correlation_id"
)

// LocalsKey is the fiber locals key holding the request LogContext.
const LocalsKey = string(logContextKey)

const (
	FieldRequestID     = "request_id"
	FieldOperation     = "operation"
	FieldCorrelationID = "correlation_id"
	FieldActionType    = "action_type"
	FieldEnvVersion    = "env_version"
	FieldChanged       = "changed"
	FieldETag          = "etag"

	FieldPollName     = "poll_name"
	FieldPollInterval = "poll_interval"
	FieldFetchCount   = "fetch_count"
	FieldFailedCount  = "failed_count"
)

// LogContext collects fields during a request; the canonical logger
// middleware emits them in a single entry when the request completes.
type LogContext struct {
	mu     sync.RWMutex
	fields []zap.Field
}

func NewLogContext() *LogContext {
	return &LogContext{
		fields: make([]zap.Field, 0, 10),
	}
}

func (lc *LogContext) AddField(field zap.Field) {
	lc.AddFields(field)
}

func (lc *LogContext) AddFields(fields ...zap.Field) {
	if lc == nil {
		return
	}
	lc.mu.Lock()
	defer lc.mu.Unlock()
	lc.fields = append(lc.fields, fields...)
}

// Fields returns a copy of the collected fields.
func (lc *LogContext) Fields() []zap.Field {
	if lc == nil {
		return nil
	}
	lc.mu.RLock()
	defer lc.mu.RUnlock()

	result := make([]zap.Field, len(lc.fields))
	copy(result, lc.fields)
	return result
}

func WithLogContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, logContextKey, lc)
}

func GetLogContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(logContextKey).(*LogContext)
	return lc
}

// AddToContext is a no-op when ctx carries no LogContext.
func AddToContext(ctx context.Context, fields ...zap.Field) {
	GetLogContext(ctx).AddFields(fields...)
}

// SetOperation names the operation a request performs.
func SetOperation(ctx context.Context, name string) {
	AddToContext(ctx, zap.String(FieldOperation, name))
}

func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey, id)
}

func GetCorrelationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(correlationKey).(string)
	return id
}
