// Package logger wraps zap with request-aware helpers. Services take the
// logger from the context, so request and actor fields follow every line.
package logger

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	appctx "maintledger/internal/core/context"
	"maintledger/internal/core/security"
)

// Logger is a sugared zap logger.
type Logger struct {
	*zap.SugaredLogger
}

// Config selects level and encoding.
type Config struct {
	Level       string // debug, info, warn, error
	Development bool   // console encoder with colours
	OutputPaths []string
}

// New builds a logger. An unknown level falls back to info.
func New(cfg Config) (*Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	if len(cfg.OutputPaths) > 0 {
		zc.OutputPaths = cfg.OutputPaths
	}

	z, err := zc.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}
	return Wrap(z), nil
}

// Wrap adapts an existing zap logger, e.g. an observer core in tests.
func Wrap(z *zap.Logger) *Logger {
	return &Logger{z.Sugar()}
}

var (
	defaultOnce   sync.Once
	defaultLogger *Logger
)

// Default is the production logger used when the context carries none.
func Default() *Logger {
	defaultOnce.Do(func() {
		z, err := zap.NewProduction(zap.AddCallerSkip(1))
		if err != nil {
			z = zap.NewNop()
		}
		defaultLogger = Wrap(z)
	})
	return defaultLogger
}

// WithContext tags the logger with the request and the acting session.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	var fields []any
	if info, ok := appctx.Request(ctx); ok {
		fields = append(fields, "request_id", info.RequestID, "trace_id", info.TraceID)
	} else if traceID := appctx.SpanTraceID(ctx); traceID != "" {
		fields = append(fields, "trace_id", traceID)
	}
	if s := security.FromContext(ctx); s != nil {
		fields = append(fields, "actor_id", s.ActorID, "role", s.Role)
	}
	if len(fields) == 0 {
		return l
	}
	return &Logger{l.SugaredLogger.With(fields...)}
}

func (l *Logger) With(keysAndValues ...any) *Logger {
	return &Logger{l.SugaredLogger.With(keysAndValues...)}
}

func (l *Logger) WithComponent(name string) *Logger {
	return l.With("component", name)
}

type loggerKey struct{}

func WithLogger(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// FromContext returns the context logger, or Default, tagged via WithContext.
func FromContext(ctx context.Context) *Logger {
	l, ok := ctx.Value(loggerKey{}).(*Logger)
	if !ok {
		l = Default()
	}
	return l.WithContext(ctx)
}

func Debug(ctx context.Context, msg string, keysAndValues ...any) {
	FromContext(ctx).Debugw(msg, keysAndValues...)
}

func Info(ctx context.Context, msg string, keysAndValues ...any) {
	FromContext(ctx).Infow(msg, keysAndValues...)
}

func Warn(ctx context.Context, msg string, keysAndValues ...any) {
	FromContext(ctx).Warnw(msg, keysAndValues...)
}

func Error(ctx context.Context, msg string, keysAndValues ...any) {
	FromContext(ctx).Errorw(msg, keysAndValues...)
}
