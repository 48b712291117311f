package logger

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestGet(t *testing.T) {
	globalLogger = nil

	l := Get()
	assert.NotNil(t, l)
	assert.Same(t, l, Get())
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("DENTIX_LOG_LEVEL", "debug")
	t.Setenv("DENTIX_ENV", "development")

	cfg := Config()
	assert.Equal(t, zapcore.DebugLevel, cfg.Level.Level())
	assert.True(t, cfg.Development)
	assert.Equal(t, "console", cfg.Encoding)
}

func TestConfigIgnoresBadLevel(t *testing.T) {
	t.Setenv("DENTIX_LOG_LEVEL", "loud")
	assert.Equal(t, zapcore.InfoLevel, Config().Level.Level())
}

func TestLogAPICall(t *testing.T) {
	core, obs := observer.New(zap.DebugLevel)
	l := zap.New(core)

	LogAPICall(l, "GET", "/users/me", 200, nil, 15*time.Millisecond)
	LogAPICall(l, "PUT", "/admin/dates/x/complete", 401, errors.New("unauthorized"), time.Millisecond)

	assert.Equal(t, 2, obs.Len())

	ok := obs.All()[0]
	assert.Equal(t, zap.DebugLevel, ok.Level)
	assert.Equal(t, "/users/me", ok.ContextMap()["path"])
	assert.Equal(t, int64(200), ok.ContextMap()["status"])

	failed := obs.All()[1]
	assert.Equal(t, zap.WarnLevel, failed.Level)
	assert.Equal(t, "unauthorized", failed.ContextMap()["error"])
}
