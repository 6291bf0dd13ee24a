// Package logger builds the zap loggers the tools attach to their context.
// Code below the command layer logs through prefab's logging package, which
// finds the logger on the context.
package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/dpup/prefab/logging"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger adapts a sugared zap logger to logging.Logger. Unlike prefab's
// own adapter it can be built from any zap core.
type ZapLogger struct {
	*zap.SugaredLogger
}

var _ logging.Logger = (*ZapLogger)(nil)

// New builds a logger writing to stderr. format is "console" or "json".
func New(level, format string) (*ZapLogger, error) {
	return NewWithWriter(os.Stderr, level, format)
}

// NewWithWriter builds a logger writing to w
func NewWithWriter(w io.Writer, level, format string) (*ZapLogger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	switch format {
	case "json":
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	case "console", "":
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(w), lvl)
	return &ZapLogger{SugaredLogger: zap.New(core).Sugar()}, nil
}

// Nop discards everything
func Nop() *ZapLogger {
	return &ZapLogger{SugaredLogger: zap.NewNop().Sugar()}
}

func (l *ZapLogger) Named(name string) logging.Logger {
	return &ZapLogger{SugaredLogger: l.SugaredLogger.Named(name)}
}

func (l *ZapLogger) With(field string, value interface{}) logging.Logger {
	return &ZapLogger{SugaredLogger: l.SugaredLogger.With(field, value)}
}
