package obs

import (
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger atomic.Pointer[zap.Logger]

func init() {
	logger.Store(zap.NewNop())
}

// L returns the process logger. It is a no-op logger until Init is called.
func L() *zap.Logger {
	return logger.Load()
}

// Init builds a production JSON logger at the given level ("debug", "info", "warn", "error").
func Init(level string) (*zap.Logger, error) {
	lvl := zapcore.InfoLevel
	if level != "" {
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("init logger: level %q: %w", level, err)
		}
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(lvl)
	config.DisableStacktrace = true

	l, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	Set(l)
	return l, nil
}

// Set replaces the process logger, e.g. with zaptest or a development logger.
func Set(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger.Store(l)
}
