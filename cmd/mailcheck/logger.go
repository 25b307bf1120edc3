package main

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newLogger builds a stderr logger; verbose >= 1 enables debug output.
func newLogger(verbose int) (*zap.Logger, error) {
	logConfig := zap.NewDevelopmentConfig()
	logConfig.Development = false
	logConfig.DisableStacktrace = true
	logConfig.OutputPaths = []string{"stderr"}
	logConfig.ErrorOutputPaths = []string{"stderr"}

	level := zapcore.InfoLevel
	if verbose > 0 {
		level = zapcore.DebugLevel
	}
	logConfig.Level.SetLevel(level)

	return logConfig.Build()
}
