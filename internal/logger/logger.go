package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Field is re-exported so callers do not import zap directly.
type Field = zap.Field

type Logger interface {
	Info(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Debug(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
}

func StringField(key, value string) Field      { return zap.String(key, value) }
func Float64Field(key string, v float64) Field { return zap.Float64(key, v) }
func IntField(key string, v int) Field         { return zap.Int(key, v) }
func ErrorField(key string, err error) Field   { return zap.NamedError(key, err) }
func AnyField(key string, v interface{}) Field { return zap.Any(key, v) }

// NewLogger builds a JSON zap logger writing to stdout. The returned cleanup
// flushes buffered entries and must be deferred by the caller.
func NewLogger() (*zap.Logger, func()) {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(os.Stdout),
		zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
			return lvl >= zapcore.InfoLevel
		}),
	)

	logger := zap.New(core, zap.AddCaller())

	cleanup := func() {
		logger.Sync()
	}

	return logger, cleanup
}

// NewNop returns a logger that discards everything. Used in tests.
func NewNop() Logger {
	return zap.NewNop()
}
