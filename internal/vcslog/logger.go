// Package vcslog wraps zap for gitlet's CLI: one process-lifetime logger
// tagged with a session id, instead of the per-request id an HTTP server
// would attach.
package vcslog

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a *zap.Logger with a session id already attached.
type Logger struct {
	*zap.Logger
	SessionID string
}

// New builds a Logger at the given level ("debug", "info", "warn",
// "error"), tagged with sessionID for the lifetime of one CLI invocation.
func New(level, sessionID string) (*Logger, error) {
	config := zap.NewDevelopmentConfig()

	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}
	config.Level = zap.NewAtomicLevelAt(zapLevel)

	logger, err := config.Build()
	if err != nil {
		return nil, err
	}

	tagged := logger.With(zap.String("session_id", sessionID))
	return &Logger{Logger: tagged, SessionID: sessionID}, nil
}

// Noop returns a Logger that discards everything, for tests that drive
// internal/repo directly and don't care about log output.
func Noop() *Logger {
	return &Logger{Logger: zap.NewNop(), SessionID: "noop"}
}
