package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the structured key/value logger shared by every component
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Fatal(msg string, keysAndValues ...interface{})
	With(keysAndValues ...interface{}) Logger
}

// ZapLogger implements Logger on top of a zap SugaredLogger
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

// NewLogger creates a production JSON logger at the given level ("debug", "info", ...).
// An unknown level falls back to info.
func NewLogger(level string) *ZapLogger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	config := zap.NewProductionConfig()
	config.EncoderConfig = encoderConfig

	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err == nil {
		config.Level = zap.NewAtomicLevelAt(lvl)
	}

	l, err := config.Build()
	if err != nil {
		l = zap.NewNop()
	}

	return &ZapLogger{sugar: l.Sugar()}
}

// NewNopLogger returns a logger that discards everything. Used in tests.
func NewNopLogger() *ZapLogger {
	return &ZapLogger{sugar: zap.NewNop().Sugar()}
}

func (l *ZapLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l *ZapLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Infow(msg, keysAndValues...)
}

func (l *ZapLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.sugar.Warnw(msg, keysAndValues...)
}

func (l *ZapLogger) Error(msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, keysAndValues...)
}

// Fatal logs a fatal message and exits
func (l *ZapLogger) Fatal(msg string, keysAndValues ...interface{}) {
	l.sugar.Fatalw(msg, keysAndValues...)
}

// With returns a logger with additional structured context
func (l *ZapLogger) With(keysAndValues ...interface{}) Logger {
	return &ZapLogger{sugar: l.sugar.With(keysAndValues...)}
}

// Sync flushes buffered entries
func (l *ZapLogger) Sync() error {
	return l.sugar.Sync()
}
