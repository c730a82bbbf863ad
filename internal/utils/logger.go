// Package utils provides logging and CSV helpers for the EMI eligibility engine.
package utils

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the global logger instance.
var Logger *zap.Logger

// loggerMu guards Logger in InitLogger, GetLogger and Sync.
var loggerMu sync.Mutex

// ParseLevel maps a LOG_LEVEL string to a zap level, defaulting to info.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// NewLogger builds a logger without touching the global instance.
// Lambda gets JSON output on stdout; everything else gets the colored console encoder.
func NewLogger(level string) (*zap.Logger, error) {
	var cfg zap.Config
	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		cfg = zap.NewProductionConfig()
		cfg.OutputPaths = []string{"stdout"}
		cfg.ErrorOutputPaths = []string{"stderr"}
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(ParseLevel(level))

	return cfg.Build()
}

// InitLogger initializes the global logger.
func InitLogger(level string) error {
	l, err := NewLogger(level)
	if err != nil {
		return err
	}
	loggerMu.Lock()
	Logger = l
	loggerMu.Unlock()
	return nil
}

// GetLogger returns the global logger, initializing if necessary.
func GetLogger() *zap.Logger {
	loggerMu.Lock()
	defer loggerMu.Unlock()

	if Logger == nil {
		l, err := NewLogger("info")
		if err != nil {
			l = zap.NewNop()
		}
		Logger = l
	}
	return Logger
}

// Sync flushes any buffered log entries.
func Sync() {
	loggerMu.Lock()
	l := Logger
	loggerMu.Unlock()

	if l != nil {
		_ = l.Sync()
	}
}
