// Package logger provides leveled logging with support for debug, info, warn, and error levels.
// It wraps a zap sugared logger so the rest of the application can log with
// printf-style helpers while output stays structured.
package logger

import (
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global logger instance; a no-op logger until Init is called.
	defaultLogger = zap.NewNop().Sugar()
)

// Init initializes the default logger with the specified level and format.
// Format "text" selects the human-readable console encoder, anything else JSON.
func Init(level string, format string) error {
	var zapCfg zap.Config
	if strings.ToLower(format) == "text" {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	} else {
		zapCfg = zap.NewProductionConfig()
	}
	zapCfg.OutputPaths = []string{"stderr"}
	zapCfg.ErrorOutputPaths = []string{"stderr"}

	l, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		return eris.Wrap(err, "logger: parse level")
	}
	zapCfg.Level.SetLevel(l)

	built, err := zapCfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return eris.Wrap(err, "logger: build")
	}
	zap.ReplaceGlobals(built)
	defaultLogger = built.Sugar()

	return nil
}

// Sync flushes buffered log entries.
func Sync() {
	_ = defaultLogger.Sync()
}

// Debug logs a message at DebugLevel
func Debug(format string, args ...interface{}) {
	defaultLogger.Debugf(format, args...)
}

// Info logs a message at InfoLevel
func Info(format string, args ...interface{}) {
	defaultLogger.Infof(format, args...)
}

// Warn logs a message at WarnLevel
func Warn(format string, args ...interface{}) {
	defaultLogger.Warnf(format, args...)
}

// Error logs a message at ErrorLevel
func Error(format string, args ...interface{}) {
	defaultLogger.Errorf(format, args...)
}
