package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("bogus"))
}

func TestFromContext_Fallbacks(t *testing.T) {
	fallback := zap.NewExample()
	assert.Same(t, fallback, FromContext(context.Background(), fallback))
	assert.NotNil(t, FromContext(context.Background(), nil))
}

func TestWithRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	ctx, log := WithRequestID(context.Background(), base, "req-1")
	log.Info("hello")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Same(t, log, FromContext(ctx, base))
	entries := logs.All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "req-1", entries[0].ContextMap()["request_id"])
	}
}

func TestNewForEnvironment(t *testing.T) {
	assert.NotNil(t, NewForEnvironment("production", "info"))
	assert.NotNil(t, NewForEnvironment("development", "debug"))
}

func TestNew_DevelopmentPanicsOnDPanic(t *testing.T) {
	dev := New(Config{Level: "error", Format: "json", Development: true})
	assert.Panics(t, func() { dev.DPanic("broken invariant") })

	prod := New(Config{Level: "error", Format: "json"})
	assert.NotPanics(t, func() { prod.DPanic("broken invariant") })
}
