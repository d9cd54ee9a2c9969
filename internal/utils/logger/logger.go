// Package logger carries the process-wide zap logger. Diagnostics go
// through it; report output never does.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var global *zap.SugaredLogger

// Init builds the process logger writing to stderr at the given level
// and installs it. An unparseable level falls back to warn.
func Init(level string) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.WarnLevel
	}
	enc := zap.NewDevelopmentEncoderConfig()
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.Lock(os.Stderr), lvl)
	global = zap.New(core).Sugar()
}

// Logger must return a non-nil *SugaredLogger, so before Init it hands
// out a no-op logger.
func Logger() *zap.SugaredLogger {
	if global == nil {
		return zap.NewNop().Sugar()
	}
	return global
}

// Sync flushes buffered entries. Safe to call before Init.
func Sync() {
	if global != nil {
		_ = global.Sync()
	}
}
