// Package logging configures the structured logger shared across the
// pipeline. The original threads every diagnostic through a global
// smip::log::system singleton with a bitflag severity level; this
// package replaces that with an ordinary *zap.SugaredLogger value that
// call sites receive explicitly, so tests can inject an observer logger
// instead of reaching into global state.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level mirrors the bitflag severities of the original's smip::log::Level,
// collapsed onto zap's ordered level scale.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelNotice
	LevelWarning
	LevelError
	LevelCritical
)

func (l Level) zapLevel() zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelInfo, LevelNotice:
		return zapcore.InfoLevel
	case LevelWarning:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	case LevelCritical:
		return zapcore.DPanicLevel
	default:
		return zapcore.InfoLevel
	}
}

// New builds a production-style JSON logger at the given level, or a
// human-readable console logger when development is true.
func New(level Level, development bool) (*zap.SugaredLogger, error) {
	var cfg zap.Config
	if development {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level.zapLevel())
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

// Nop returns a logger that discards everything, for tests and for
// library callers that don't want pipeline diagnostics on stderr.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
