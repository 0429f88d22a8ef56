package logger

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type CanonicalLogger struct {
	l *zap.Logger
}

// NewLoggerFromEnv builds a logger from LOG_FORMAT and LOG_LEVEL.
//   - LOG_FORMAT "console" or "development": colored console output
//   - LOG_FORMAT "json" or "production" (default): structured JSON
//   - LOG_LEVEL debug, info (default), warn or error
//
// Every entry carries the component field.
func NewLoggerFromEnv(component string) (*CanonicalLogger, error) {
	return New(component, os.Getenv("LOG_FORMAT"), os.Getenv("LOG_LEVEL"))
}

func New(component, format, level string) (*CanonicalLogger, error) {
	var cfg zap.Config
	switch strings.ToLower(format) {
	case "console", "development":
		cfg = zap.NewDevelopmentConfig()
	case "", "json", "production":
		cfg = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("unknown LOG_FORMAT %q", format)
	}

	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	// skip the wrapper frame so caller points at the calling code
	zapLogger, err := cfg.Build(
		zap.AddCallerSkip(1),
		zap.Fields(zap.String("component", component)),
	)
	if err != nil {
		return nil, err
	}

	return &CanonicalLogger{
		l: zapLogger,
	}, nil
}

// NewNop returns a logger that discards everything, for tests.
func NewNop() *CanonicalLogger {
	return &CanonicalLogger{l: zap.NewNop()}
}

func (c *CanonicalLogger) Sync() {
	_ = c.l.Sync()
}

func (c *CanonicalLogger) Info(msg string, fields ...zap.Field) {
	c.l.Info(msg, fields...)
}

func (c *CanonicalLogger) Debug(msg string, fields ...zap.Field) {
	c.l.Debug(msg, fields...)
}

func (c *CanonicalLogger) Warn(msg string, fields ...zap.Field) {
	c.l.Warn(msg, fields...)
}

func (c *CanonicalLogger) Error(msg string, fields ...zap.Field) {
	c.l.Error(msg, fields...)
}

func (c *CanonicalLogger) Fatal(msg string, fields ...zap.Field) {
	c.l.Fatal(msg, fields...)
}

func (c *CanonicalLogger) Enabled(level zapcore.Level) bool {
	return c.l.Core().Enabled(level)
}

func (c *CanonicalLogger) WithError(err error) *CanonicalLogger {
	return &CanonicalLogger{l: c.l.With(zap.Error(err))}
}

func (c *CanonicalLogger) WithActionType(t string) *CanonicalLogger {
	return &CanonicalLogger{l: c.l.With(zap.String(FieldActionType, t))}
}

func (c *CanonicalLogger) WithEnvVersion(v int64) *CanonicalLogger {
	return &CanonicalLogger{l: c.l.With(zap.Int64(FieldEnvVersion, v))}
}

func (c *CanonicalLogger) HTTPError(method, path string, status int, err error) {
	fields := []zap.Field{zap.String("method", method), zap.String("path", path), zap.Int("status", status), zap.Error(err)}
	if status >= 500 {
		c.l.Error("http_error", fields...)
		return
	}
	c.l.Info("http_client_error", fields...)
}
