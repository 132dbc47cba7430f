// Package logging builds the zap loggers used across the service.
package logging

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const defaultLogLevel = "info"

type ctxKey struct{}

// NewLogger builds a JSON logger. An empty level falls back to LOG_LEVEL, then info.
func NewLogger(level string) (*zap.Logger, error) {
	if strings.TrimSpace(level) == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	atom := zap.NewAtomicLevel()
	if err := atom.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(level)))); err != nil {
		_ = atom.UnmarshalText([]byte(defaultLogLevel))
	}

	encoderCfg := zapcore.EncoderConfig{
		MessageKey: "message",
		TimeKey:    "timestamp",
		LevelKey:   "severity",
		EncodeTime: zapcore.RFC3339NanoTimeEncoder,
		EncodeLevel: func(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(strings.ToUpper(level.String()))
		},
		CallerKey:      "caller",
		EncodeCaller:   zapcore.ShortCallerEncoder,
		StacktraceKey:  "stacktrace",
		EncodeDuration: zapcore.StringDurationEncoder,
	}

	cfg := zap.Config{
		Level:             atom,
		Encoding:          "json",
		EncoderConfig:     encoderCfg,
		OutputPaths:       []string{"stderr"},
		ErrorOutputPaths:  []string{"stderr"},
		DisableStacktrace: true,
	}
	return cfg.Build()
}

func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the request logger, or a no-op logger.
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok && logger != nil {
		return logger
	}
	return zap.NewNop()
}

// StdAdapter exposes a zap logger through the Print family, for libraries such
// as sarama that expect a standard logger.
type StdAdapter struct {
	logger *zap.SugaredLogger
}

func NewStdAdapter(logger *zap.Logger) StdAdapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return StdAdapter{logger: logger.WithOptions(zap.AddCallerSkip(1)).Sugar()}
}

func (a StdAdapter) Print(v ...interface{}) {
	a.logger.Debug(strings.TrimSpace(fmt.Sprint(v...)))
}

func (a StdAdapter) Printf(format string, v ...interface{}) {
	a.logger.Debugf(strings.TrimSpace(format), v...)
}

func (a StdAdapter) Println(v ...interface{}) {
	a.logger.Debug(strings.TrimSpace(fmt.Sprintln(v...)))
}
