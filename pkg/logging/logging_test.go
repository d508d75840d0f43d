package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"WARN":    zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"bogus":   zapcore.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, parseLevel(in), "level %q", in)
	}
}

func TestLoggerKeyValues(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := FromZap(zap.New(core)).Named("posting").With("posting_id", "p-1")

	l.Info("draft staged", "fields", 13)

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		e := entries[0]
		assert.Equal(t, "draft staged", e.Message)
		assert.Equal(t, "posting", e.LoggerName)
		ctx := e.ContextMap()
		assert.Equal(t, "p-1", ctx["posting_id"])
		assert.EqualValues(t, 13, ctx["fields"])
	}
}

func TestNopLogger(t *testing.T) {
	l := NewNop()
	assert.NotPanics(t, func() { l.Error("ignored", "err", "x") })
}
