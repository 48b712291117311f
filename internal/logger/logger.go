package logger

import (
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var globalLogger *zap.Logger

// Config builds the zap configuration from DENTIX_LOG_LEVEL and DENTIX_ENV.
func Config() zap.Config {
	config := zap.NewProductionConfig()

	if lvl := os.Getenv("DENTIX_LOG_LEVEL"); lvl != "" {
		var level zapcore.Level
		if err := level.UnmarshalText([]byte(lvl)); err == nil {
			config.Level = zap.NewAtomicLevelAt(level)
		}
	}

	if os.Getenv("DENTIX_ENV") == "development" {
		config.Development = true
		config.Encoding = "console"
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	config.EncoderConfig.CallerKey = "caller"
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return config
}

// Init initializes the global logger.
func Init() {
	var err error
	globalLogger, err = Config().Build()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
}

// Get returns the global logger, initializing it on first use.
func Get() *zap.Logger {
	if globalLogger == nil {
		Init()
	}
	return globalLogger
}

// SetLevel raises or lowers the level of the global logger.
func SetLevel(level zapcore.Level) {
	cfg := Config()
	cfg.Level = zap.NewAtomicLevelAt(level)
	if l, err := cfg.Build(); err == nil {
		globalLogger = l
	}
}

// LogAPICall records one gateway round trip at debug level, or as a warning
// when it failed.
func LogAPICall(log *zap.Logger, method, path string, status int, err error, took time.Duration) {
	fields := []zap.Field{
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", status),
		zap.Duration("duration", took),
	}
	if err != nil {
		log.Warn("api call failed", append(fields, zap.Error(err))...)
		return
	}
	log.Debug("api call", fields...)
}

func Sync() {
	if globalLogger != nil {
		_ = globalLogger.Sync()
	}
}
