package utils

import (
	"context"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type contextKey string

const (
	correlationIDKey contextKey = "correlation_id"
	userIDKey        contextKey = "user_id"
)

// Logger wraps zap with request context awareness: correlation ID and
// user ID travel in the context and are attached to every entry.
type Logger struct {
	zl      *zap.Logger
	service string
}

var defaultLogger = mustLogger("invomaker")

func mustLogger(service string) *Logger {
	level := zapcore.InfoLevel
	if os.Getenv("LOG_LEVEL") == "debug" {
		level = zapcore.DebugLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(os.Stdout),
		level,
	)

	return &Logger{
		zl:      zap.New(core).With(zap.String("service", service)),
		service: service,
	}
}

func NewLogger(service string) *Logger {
	return mustLogger(service)
}

func (l *Logger) Debug(ctx context.Context, message string, fields ...map[string]interface{}) {
	l.zl.Debug(message, l.zapFields(ctx, fields)...)
}

func (l *Logger) Info(ctx context.Context, message string, fields ...map[string]interface{}) {
	l.zl.Info(message, l.zapFields(ctx, fields)...)
}

func (l *Logger) Warn(ctx context.Context, message string, fields ...map[string]interface{}) {
	l.zl.Warn(message, l.zapFields(ctx, fields)...)
}

func (l *Logger) Error(ctx context.Context, message string, fields ...map[string]interface{}) {
	l.zl.Error(message, l.zapFields(ctx, fields)...)
}

func (l *Logger) zapFields(ctx context.Context, fields []map[string]interface{}) []zap.Field {
	out := make([]zap.Field, 0, 4)

	if id := GetCorrelationID(ctx); id != "" {
		out = append(out, zap.String("correlation_id", id))
	}
	if id := GetUserID(ctx); id != "" {
		out = append(out, zap.String("user_id", id))
	}
	if len(fields) > 0 {
		for k, v := range fields[0] {
			out = append(out, zap.Any(k, v))
		}
	}

	return out
}

func GetCorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDKey).(string); ok {
		return id
	}
	return ""
}

func GetUserID(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey).(string); ok {
		return id
	}
	return ""
}

func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func Debug(ctx context.Context, message string, fields ...map[string]interface{}) {
	defaultLogger.Debug(ctx, message, fields...)
}

func Info(ctx context.Context, message string, fields ...map[string]interface{}) {
	defaultLogger.Info(ctx, message, fields...)
}

func Warn(ctx context.Context, message string, fields ...map[string]interface{}) {
	defaultLogger.Warn(ctx, message, fields...)
}

func Error(ctx context.Context, message string, fields ...map[string]interface{}) {
	defaultLogger.Error(ctx, message, fields...)
}
