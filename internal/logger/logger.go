// Package logger builds the process-wide zap logger.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger returns a production logger writing to stderr and, if logFilePath
// is non-empty, to the given file as well.
func NewLogger(logFilePath string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stderr"}
	if logFilePath != "" {
		cfg.OutputPaths = append(cfg.OutputPaths, logFilePath)
	}
	return cfg.Build()
}

// NewDebugLogger is NewLogger with the level dropped to debug and a
// development-friendly console encoder.
func NewDebugLogger(logFilePath string) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	if logFilePath != "" {
		cfg.OutputPaths = append(cfg.OutputPaths, logFilePath)
	}
	return cfg.Build()
}

// FromSettings picks the logger variant the runtime settings ask for.
func FromSettings(debug bool, logFilePath string) (*zap.Logger, error) {
	if debug {
		return NewDebugLogger(logFilePath)
	}
	return NewLogger(logFilePath)
}
