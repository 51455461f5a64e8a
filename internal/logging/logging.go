// Package logging builds the zap logger used for scan diagnostics.
package logging

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds logging configuration.
type Config struct {
	// Debug lowers the level from warn to debug.
	Debug bool
	// Writer receives log lines. Defaults to stderr.
	Writer io.Writer
}

// New returns a console-encoded logger. Diagnostics are logged at warn and
// are always shown; walk details need Debug.
func New(cfg Config) *zap.Logger {
	level := zapcore.WarnLevel
	if cfg.Debug {
		level = zapcore.DebugLevel
	}

	writer := cfg.Writer
	if writer == nil {
		writer = os.Stderr
	}

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.TimeKey = ""

	if !cfg.Debug {
		encoderConfig.CallerKey = ""
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.Lock(zapcore.AddSync(writer)),
		zap.NewAtomicLevelAt(level),
	)

	return zap.New(core, zap.AddCaller())
}
